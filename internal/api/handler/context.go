package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/palavraviva/study-platform/internal/api/middleware"
)

// ctxUserID extracts the caller id injected by the Auth middleware. Its
// absence means the route was wired without Auth; reject with 401.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.ContextUserID).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}

// optionalUserID returns the caller id, or "" for anonymous requests.
func optionalUserID(c echo.Context) string {
	userID, _ := c.Get(middleware.ContextUserID).(string)
	return userID
}

// bindAndValidate decodes the body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
