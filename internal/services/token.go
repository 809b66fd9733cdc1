package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired and ErrTokenInvalid are the only verification failures.
// Callers treat both as unauthenticated but report different messages.
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is not valid")
)

// TokenClaims carries the authenticated user identifier.
type TokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

var (
	tokenSecret []byte
	tokenExpiry = 7 * 24 * time.Hour
)

// InitTokenService sets the signing secret and token lifetime. Must be called
// before IssueToken or VerifyToken. Any non-zero expiry is honored as given;
// zero keeps the 7-day default.
func InitTokenService(secret string, expiry time.Duration) {
	tokenSecret = []byte(secret)
	if expiry != 0 {
		tokenExpiry = expiry
	}
}

// IssueToken signs a token embedding the user identifier.
func IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tokenSecret)
}

// VerifyToken checks signature and expiry and returns the embedded user ID.
// Verification is a pure function of the token and the shared secret.
func VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return tokenSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}
