package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// profileIDKey is where the authentication middleware stores the caller's profile ID
const profileIDKey = "profileID"

// CurrentProfileID returns the authenticated caller's profile ID, or 0 when the
// request carries no resolved identity
func CurrentProfileID(c echo.Context) uint {
	id, _ := c.Get(profileIDKey).(uint)
	return id
}

// SetProfileID records the caller's profile ID on the request context
func SetProfileID(c echo.Context, id uint) {
	c.Set(profileIDKey, id)
}

// bearerToken extracts the token from "Authorization: Bearer <token>". Browsers cannot set
// headers on websocket upgrades, so a "token" query parameter is accepted as a fallback.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" && c.IsWebSocket() {
			return token, nil
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}
