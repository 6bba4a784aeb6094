package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	uid, ok := f[idToken]
	if !ok {
		return nil, errors.New("token expired")
	}
	return &auth.Token{UID: uid}, nil
}

type fakeProfiles struct {
	byUID map[string]uint
	err   error
}

func (f fakeProfiles) GetProfileByFirebaseUID(_ context.Context, uid string) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	id, ok := f.byUID[uid]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &models.Profile{ID: id}, nil
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	verifier := fakeVerifier{"good": "uid-1", "orphan": "uid-2"}
	profiles := fakeProfiles{byUID: map[string]uint{"uid-1": 5}}

	tests := []struct {
		name       string
		profiles   fakeProfiles
		token      string
		wantStatus int
		wantID     uint
	}{
		{"linked profile", profiles, "good", http.StatusOK, 5},
		{"invalid token", profiles, "bad", http.StatusUnauthorized, 0},
		{"no linked profile", profiles, "orphan", http.StatusUnauthorized, 0},
		{"profile store down", fakeProfiles{err: models.NewStorageError("get profile", errors.New("down"))}, "good", http.StatusInternalServerError, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)

			rec, id := serve(t, FirebaseAuthMiddleware(verifier, tt.profiles), req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
