package server

import (
	"fmt"
	"time"

	"taskdeck/internal/domain/errors"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenCookie = "token"
	sessionTTL  = 24 * time.Hour
	rememberTTL = 30 * 24 * time.Hour
	tokenIssuer = "taskdeck"
)

// TokenClaims carries the session identity: the user id and email, plus the
// standard registered claims for expiry handling.
type TokenClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// issueToken signs an HS256 session token. The lifetime is one day, or
// thirty days when the caller asked to be remembered.
func issueToken(secret, userID, email string, rememberMe bool) (string, time.Duration, error) {
	ttl := sessionTTL
	if rememberMe {
		ttl = rememberTTL
	}
	claims := &TokenClaims{
		ID:    userID,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, ttl, err
}

func parseToken(secret, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.ErrUnauthorized
	}
	if claims.ID == "" {
		return nil, errors.ErrUnauthorized
	}
	return claims, nil
}
