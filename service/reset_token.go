package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultResetTokenMaxAge is how long a password reset link stays valid.
const DefaultResetTokenMaxAge = 1800 * time.Second

const resetTokenAudience = "password-reset"

// ErrInvalidResetToken covers bad signatures, malformed payloads and expired tokens alike.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// ResetTokens issues and verifies signed, time-limited password reset tokens.
// Changing the secret invalidates every outstanding token.
type ResetTokens struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewResetTokens(secret []byte, maxAge time.Duration) (*ResetTokens, error) {
	if len(secret) == 0 {
		return nil, errors.New("reset token secret is empty")
	}
	if maxAge <= 0 {
		maxAge = DefaultResetTokenMaxAge
	}
	return &ResetTokens{secret: secret, maxAge: maxAge, now: time.Now}, nil
}

// Issue returns a token binding userID and the issuance time.
func (r *ResetTokens) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("reset token: empty user id")
	}
	now := r.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Audience:  jwt.ClaimStrings{resetTokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(r.maxAge)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// Verify returns the user id carried by token, or ErrInvalidResetToken.
func (r *ResetTokens) Verify(token string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(resetTokenAudience),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(r.now),
	)
	var claims jwt.RegisteredClaims
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return r.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidResetToken
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return "", ErrInvalidResetToken
	}
	if r.now().Sub(claims.IssuedAt.Time) > r.maxAge {
		return "", ErrInvalidResetToken
	}
	return claims.Subject, nil
}
