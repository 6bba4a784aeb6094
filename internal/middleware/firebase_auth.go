package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// TokenVerifier verifies Firebase ID tokens; *auth.Client implements it
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type profileByFirebaseUID interface {
	GetProfileByFirebaseUID(ctx context.Context, firebaseUID string) (*models.Profile, error)
}

// FirebaseAuthMiddleware creates an Echo middleware that verifies Firebase ID tokens
// and maps the Firebase UID to the caller's profile
func FirebaseAuthMiddleware(verifier TokenVerifier, profiles profileByFirebaseUID) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("Invalid or expired ID token: %v", err))
			}

			profile, err := profiles.GetProfileByFirebaseUID(ctx, token.UID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "No profile linked to this account")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve profile")
			}

			// Store the Firebase UID in the context for later use
			c.Set("firebaseUID", token.UID)
			SetProfileID(c, profile.ID)

			return next(c)
		}
	}
}
