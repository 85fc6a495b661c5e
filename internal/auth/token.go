// Package auth issues and verifies the bearer tokens that identify API
// callers.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
)

const issuer = "taskboard"

// Claims carried by a taskboard token. The subject holds the user id.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and parses HS256 tokens with a shared secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a token manager. A zero ttl issues tokens that never
// expire.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the user.
func (t *Tokens) Issue(user models.User) (string, time.Time, error) {
	now := t.now()
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  strconv.FormatInt(user.ID, 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	var expires time.Time
	if t.ttl > 0 {
		expires = now.Add(t.ttl)
		claims.ExpiresAt = jwt.NewNumericDate(expires)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies raw and returns the user id it was issued for. Any
// failure is reported as unauthorized.
func (t *Tokens) Parse(raw string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperr.Unauthorized("token expired")
		}
		return 0, apperr.Unauthorized("invalid token")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Unauthorized("invalid token subject")
	}
	return id, nil
}
