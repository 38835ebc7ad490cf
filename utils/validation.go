package utils

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

func IsValidExternalID(id string) bool {
	if !strings.HasPrefix(id, "PROP") {
		return false
	}
	numStr := strings.TrimPrefix(id, "PROP")
	num, err := strconv.Atoi(numStr)
	if err != nil || num < 1000 {
		return false
	}
	return true
}

// RequestValidator plugs go-playground/validator into echo.Echo.Validator.
type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validator: validator.New()}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
