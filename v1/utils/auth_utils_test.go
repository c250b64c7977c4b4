package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orgdir/identity-backend/v1/models"
)

func TestExtractBearerToken(t *testing.T) {
	t.Run("Valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")

		token, err := ExtractBearerToken(req)
		assert.NoError(t, err)
		assert.Equal(t, "abc.def.ghi", token)
	})

	t.Run("Missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		_, err := ExtractBearerToken(req)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "authorization header is missing")
	})

	t.Run("Wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		_, err := ExtractBearerToken(req)
		assert.Error(t, err)
	})

	t.Run("Empty token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer   ")

		_, err := ExtractBearerToken(req)
		assert.Error(t, err)
	})
}

func TestAuthenticatedUserContext(t *testing.T) {
	user := &models.AuthenticatedUser{UserID: "user_123", Email: "john@example.com"}

	ctx := SetAuthenticatedUser(context.Background(), user)
	got, err := GetAuthenticatedUser(ctx)
	assert.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = GetAuthenticatedUser(context.Background())
	assert.Error(t, err)
}

func TestRequireAuthentication(t *testing.T) {
	user := &models.AuthenticatedUser{UserID: "user_123", Email: "john@example.com"}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(SetAuthenticatedUser(req.Context(), user))

	got, err := RequireAuthentication(req)
	assert.NoError(t, err)
	assert.Equal(t, user, got)
}
