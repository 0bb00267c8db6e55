package utils

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTokenTTL = 24 * time.Hour
	tokenIssuer           = "workforce-backend"
)

var (
	jwtMu          sync.RWMutex
	jwtSecretKey   []byte
	accessTokenTTL = DefaultAccessTokenTTL

	ErrJWTNotConfigured = errors.New("jwt secret is not configured")
)

// Claims carries the account identity. Type is Employee or Admin.
type Claims struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ConfigureJWT sets the signing secret and token lifetime. Call once at startup.
func ConfigureJWT(secret string, ttl time.Duration) {
	jwtMu.Lock()
	defer jwtMu.Unlock()
	jwtSecretKey = []byte(secret)
	if ttl > 0 {
		accessTokenTTL = ttl
	} else {
		accessTokenTTL = DefaultAccessTokenTTL
	}
}

// AccessTokenTTL returns the configured access token lifetime.
func AccessTokenTTL() time.Duration {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	return accessTokenTTL
}

func signingKey() ([]byte, error) {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	if len(jwtSecretKey) == 0 {
		return nil, ErrJWTNotConfigured
	}
	return jwtSecretKey, nil
}

// GenerateAccessToken creates a new JWT access token for an account.
func GenerateAccessToken(id, accountType, role string) (string, error) {
	key, err := signingKey()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := &Claims{
		ID:   id,
		Type: accountType,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string) (*Claims, error) {
	key, err := signingKey()
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("token has no account id")
	}

	return claims, nil
}
