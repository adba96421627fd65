package api

import (
	crand "crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims identify the calling player. The hosting platform signs
// them with the shared session secret.
type SessionClaims struct {
	Name  string `json:"name"`
	Admin bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// TokenAuthority signs and verifies HS256 session tokens.
type TokenAuthority struct {
	secret []byte
}

// NewTokenAuthority uses secret as the signing key. An empty secret gets a
// random in-memory key, which is only useful for local development.
func NewTokenAuthority(secret string) (*TokenAuthority, error) {
	if secret != "" {
		return &TokenAuthority{secret: []byte(secret)}, nil
	}
	dev := make([]byte, 32)
	if _, err := crand.Read(dev); err != nil {
		return nil, errors.New("failed to generate dev session secret")
	}
	return &TokenAuthority{secret: dev}, nil
}

// Issue creates a token for playerID valid for ttl.
func (a *TokenAuthority) Issue(playerID, name string, admin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Name:  name,
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates the signature and expiry of token.
func (a *TokenAuthority) Parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
