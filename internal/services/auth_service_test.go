package services_test

import (
	"io"
	"log"
	"os"
	"testing"
	"time"

	"productcatalog/internal/apperror"
	"productcatalog/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func TestAuthService_IssueToken(t *testing.T) {
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(testJWTSecret)
	require.True(t, authService.Enabled())

	token, err := authService.IssueToken("catalog-admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "catalog-admin", claims["sub"])
	assert.Contains(t, claims, "exp")

	_, err = authService.IssueToken("")
	assert.Error(t, err)
}

func TestAuthService_Disabled(t *testing.T) {
	authService := services.NewAuthService("")
	assert.False(t, authService.Enabled())

	_, err := authService.IssueToken("someone")
	assert.Error(t, err)

	claims, err := authService.Authorize("")
	assert.NoError(t, err)
	assert.Nil(t, claims)
}

func TestAuthService_ValidateToken(t *testing.T) {
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(testJWTSecret)

	// Generate a valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "catalog-admin",
		"exp": jwt.TimeFunc().Add(time.Hour).Unix(), // Expires in 1 hour
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	// Test valid token
	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "catalog-admin", claims["sub"])

	// Test malformed token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Test wrong secret
	otherToken, _ := token.SignedString([]byte("other_secret"))
	_, err = authService.ValidateToken(otherToken)
	assert.Error(t, err)

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "catalog-admin",
		"exp": jwt.TimeFunc().Add(-time.Hour).Unix(), // Expired 1 hour ago
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestAuthService_Authorize(t *testing.T) {
	authService := services.NewAuthService("test_jwt_secret")
	token, err := authService.IssueToken("catalog-admin")
	require.NoError(t, err)

	claims, err := authService.Authorize("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "catalog-admin", claims["sub"])

	_, err = authService.Authorize("")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	assert.EqualError(t, err, "Authorization header is required")

	_, err = authService.Authorize("Token " + token)
	assert.EqualError(t, err, "Authorization header format must be 'Bearer <token>'")

	_, err = authService.Authorize("Bearer nope")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	assert.Equal(t, "Invalid or expired token", apperror.Body(err)["error"])
}
