package handlers

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func currentUserID(c echo.Context) primitive.ObjectID {
	id, _ := c.Get("user_id").(primitive.ObjectID)
	return id
}

func currentRole(c echo.Context) string {
	role, _ := c.Get("user_role").(string)
	return role
}

func currentEmail(c echo.Context) string {
	email, _ := c.Get("user_email").(string)
	return email
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// bindAndValidate answers 400 itself; a non-nil return means the handler
// must stop and return it.
func bindAndValidate(c echo.Context, dest interface{}) (bool, error) {
	if err := c.Bind(dest); err != nil {
		return false, errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(dest); err != nil {
		msg := "Invalid request body"
		if he, ok := err.(*echo.HTTPError); ok {
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		return false, errorJSON(c, http.StatusBadRequest, msg)
	}
	return true, nil
}

// pathParam returns a decoded path parameter. Echo routes on the raw path
// only when the request carried one, and only then is the value still
// escaped.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
