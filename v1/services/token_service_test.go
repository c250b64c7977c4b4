package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestNewTokenService_EmptySecret(t *testing.T) {
	service, err := NewTokenService("")
	assert.Error(t, err)
	assert.Nil(t, service)
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	// Arrange
	service, err := NewTokenService("test-secret")
	assert.NoError(t, err)

	// Act
	token, err := service.Issue("user_123", "john@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.Verify(token)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "user_123", claims.UserID)
	assert.Equal(t, "john@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestVerify_WrongSecret(t *testing.T) {
	// Arrange
	issuer, err := NewTokenService("secret-one")
	assert.NoError(t, err)
	verifier, err := NewTokenService("secret-two")
	assert.NoError(t, err)

	token, err := issuer.Issue("user_123", "john@example.com")
	assert.NoError(t, err)

	// Act
	claims, err := verifier.Verify(token)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestVerify_ExpiredToken(t *testing.T) {
	// Arrange
	service, err := NewTokenService("test-secret")
	assert.NoError(t, err)
	service.ttl = -time.Hour

	token, err := service.Issue("user_123", "john@example.com")
	assert.NoError(t, err)

	// Act
	claims, err := service.Verify(token)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestVerify_RejectsNonHMACMethod(t *testing.T) {
	// Arrange
	service, err := NewTokenService("test-secret")
	assert.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, TokenClaims{
		UserID: "user_123",
		Email:  "john@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	// Act
	claims, err := service.Verify(token)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestVerify_MissingUserIDClaim(t *testing.T) {
	// Arrange
	service, err := NewTokenService("test-secret")
	assert.NoError(t, err)

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := anonymous.SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	// Act
	claims, err := service.Verify(token)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, claims)
}
