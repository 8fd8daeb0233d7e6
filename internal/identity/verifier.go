// Package identity implements the token side of the identity collaborator:
// minting access tokens at login and resolving a presented token back to a
// user id for HTTP middleware and live connections.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
)

// Verifier resolves a bearer token to the authenticated user id.
type Verifier interface {
	VerifyIdentity(token string) (uuid.UUID, error)
}

type JWTVerifier struct {
	secret     []byte
	expiration time.Duration
}

func NewJWTVerifier(secret string, expiration time.Duration) *JWTVerifier {
	return &JWTVerifier{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

func (v *JWTVerifier) Mint(userID uuid.UUID, displayName string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"name": displayName,
		"exp":  time.Now().Add(v.expiration).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

func (v *JWTVerifier) VerifyIdentity(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", domain.ErrAuth)
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: missing subject claim", domain.ErrAuth)
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed subject claim", domain.ErrAuth)
	}
	return userID, nil
}
