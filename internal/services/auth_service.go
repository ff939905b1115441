package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"productcatalog/internal/apperror"

	"github.com/dgrijalva/jwt-go"
)

// AuthService issues and checks the bearer tokens that guard mutating routes.
// With an empty secret auth is disabled and every request is allowed.
type AuthService struct {
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(jwtSecret string) *AuthService {
	return &AuthService{
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// Enabled reports whether a signing secret is configured.
func (s *AuthService) Enabled() bool {
	return s != nil && len(s.jwtSecret) > 0
}

// IssueToken signs a token for subject.
func (s *AuthService) IssueToken(subject string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("JWT_SECRET is not configured")
	}
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(s.tokenDurat).Unix(),
		"iat": time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// Authorize checks an Authorization header value. It returns nil claims and no
// error when auth is disabled.
func (s *AuthService) Authorize(authHeader string) (jwt.MapClaims, error) {
	if !s.Enabled() {
		return nil, nil
	}
	if authHeader == "" {
		return nil, apperror.Unauthorized("Authorization header is required")
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return nil, apperror.Unauthorized("Authorization header format must be 'Bearer <token>'")
	}

	claims, err := s.ValidateToken(parts[1])
	if err != nil {
		return nil, &apperror.Error{Kind: apperror.KindUnauthorized, Message: "Invalid or expired token", Detail: err.Error(), Err: err}
	}
	return claims, nil
}
