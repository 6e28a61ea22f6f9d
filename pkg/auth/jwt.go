package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tiffinbox/tiffin/config"
)

// ErrInvalidToken covers malformed, expired and wrongly signed tokens.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims holds the typed payload of access and refresh tokens.
type Claims struct {
	UserID uint64 `json:"user_id,string"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenPair is what sign-in and refresh hand back to the client.
type TokenPair struct {
	Access  string
	Refresh string
}

func issue(userID uint64, role string, ttl time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// GenerateToken creates a signed access token (ACCESS_TOKEN_EXPIRE hours).
func GenerateToken(userID uint64, role string) (string, error) {
	return issue(userID, role, config.AccessTokenTTL(), config.AccessTokenSecret())
}

// GenerateRefreshToken creates a refresh token (REFRESH_TOKEN_EXPIRE days).
// Every token carries a fresh jti so two refreshes in the same second differ.
func GenerateRefreshToken(userID uint64, role string) (string, error) {
	return issue(userID, role, config.RefreshTokenTTL(), config.RefreshTokenSecret())
}

// GeneratePair issues an access and a refresh token together.
func GeneratePair(userID uint64, role string) (TokenPair, error) {
	access, err := GenerateToken(userID, role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: access token: %w", err)
	}
	refresh, err := GenerateRefreshToken(userID, role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: refresh token: %w", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// ValidateToken parses and validates an access token.
func ValidateToken(t string) (*Claims, error) {
	return parse(t, config.AccessTokenSecret())
}

// ValidateRefreshToken parses and validates a refresh token.
func ValidateRefreshToken(t string) (*Claims, error) {
	return parse(t, config.RefreshTokenSecret())
}

func parse(t, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
