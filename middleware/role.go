package middleware

import (
	"EstateHub/models"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RoleLookup returns the current role stored for a user. Token claims can be
// stale after an admin changes someone's role, so RequireRoles asks the
// store when one is configured.
type RoleLookup func(ctx context.Context, userID primitive.ObjectID) (string, error)

// ErrUserGone is returned by a RoleLookup when the account was deleted or
// deactivated after its token was issued.
var ErrUserGone = errors.New("user no longer exists")

// MongoRoleLookup reads the role from the users collection.
func MongoRoleLookup(users *mongo.Collection) RoleLookup {
	return func(ctx context.Context, userID primitive.ObjectID) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		var user models.User
		if err := users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return "", ErrUserGone
			}
			return "", err
		}
		if !user.IsActive {
			return "", ErrUserGone
		}
		return user.Role, nil
	}
}

// RequireRoles must run after JWTMiddleware. When the lookup fails for
// any reason other than a missing user, the token's role is used.
func RequireRoles(lookup RoleLookup, roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("user_role").(string)
			if lookup != nil {
				if userID, ok := c.Get("user_id").(primitive.ObjectID); ok {
					current, err := lookup(c.Request().Context(), userID)
					switch {
					case err == nil:
						role = current
						c.Set("user_role", current)
					case errors.Is(err, ErrUserGone), errors.Is(err, mongo.ErrNoDocuments):
						return c.JSON(http.StatusForbidden, map[string]string{
							"error": "Access denied",
						})
					}
				}
			}
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "Access denied",
				})
			}
			return next(c)
		}
	}
}
