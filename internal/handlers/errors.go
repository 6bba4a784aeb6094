package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/rating-notify/backend/internal/middleware"
	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps service and repository errors onto HTTP responses
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, models.ErrPermission):
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, models.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Resource not found")
	case errors.Is(err, models.ErrStorage):
		return echo.NewHTTPError(http.StatusInternalServerError, "Storage unavailable").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// requireProfile returns the authenticated profile id, or a 401 when there is none
func requireProfile(c echo.Context) (uint, error) {
	profileID := middleware.CurrentProfileID(c)
	if profileID == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return profileID, nil
}
