package middleware

import (
	"EstateHub/utils"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": message})
}

// bearerToken pulls the token out of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// JWTMiddleware validates the bearer token and exposes its claims as
// user_id, user_email, user_name and user_role on the echo context.
func JWTMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorized(c, "Authorization header is required")
			}
			token, ok := bearerToken(authHeader)
			if !ok {
				return unauthorized(c, "Invalid authorization header format")
			}

			claims, err := utils.ValidateJWT(token)
			if err != nil {
				if errors.Is(err, utils.ErrMissingSecret) {
					return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Authentication is not configured"})
				}
				return unauthorized(c, "Invalid token")
			}

			c.Set("user_id", claims.UserID)
			c.Set("user_email", claims.Email)
			c.Set("user_name", claims.Name)
			c.Set("user_role", claims.Role)
			return next(c)
		}
	}
}
