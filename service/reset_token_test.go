package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResetTokens(t *testing.T, secret string, now *time.Time) *ResetTokens {
	t.Helper()
	rt, err := NewResetTokens([]byte(secret), 0)
	require.NoError(t, err)
	rt.now = func() time.Time { return *now }
	return rt
}

func TestResetTokenRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rt := newTestResetTokens(t, "test-secret", &now)

	token, err := rt.Issue("user-123")
	require.NoError(t, err)

	userID, err := rt.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestResetTokenExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rt := newTestResetTokens(t, "test-secret", &now)

	token, err := rt.Issue("user-123")
	require.NoError(t, err)

	now = now.Add(DefaultResetTokenMaxAge - time.Second)
	_, err = rt.Verify(token)
	assert.NoError(t, err, "token should be valid just before max age")

	now = now.Add(2 * time.Second)
	_, err = rt.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetTokenTampered(t *testing.T) {
	now := time.Now()
	rt := newTestResetTokens(t, "test-secret", &now)

	token, err := rt.Issue("user-123")
	require.NoError(t, err)

	i := len(token) - 10
	replacement := byte('A')
	if token[i] == 'A' {
		replacement = 'B'
	}
	tampered := token[:i] + string(replacement) + token[i+1:]

	_, err = rt.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetTokenRejects(t *testing.T) {
	now := time.Now()
	rt := newTestResetTokens(t, "test-secret", &now)

	other := newTestResetTokens(t, "rotated-secret", &now)
	fromOther, err := other.Issue("user-123")
	require.NoError(t, err)

	wrongAudience, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-123",
		Audience:  jwt.ClaimStrings{"session"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{resetTokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-123",
		Audience:  jwt.ClaimStrings{resetTokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"rotated secret": fromOther,
		"wrong audience": wrongAudience,
		"no subject":     noSubject,
		"alg none":       unsigned,
		"garbage":        "not-a-token",
		"empty":          "",
		"two segments":   strings.Join(strings.Split(fromOther, ".")[:2], "."),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := rt.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidResetToken)
		})
	}
}

func TestNewResetTokensRequiresSecret(t *testing.T) {
	_, err := NewResetTokens(nil, time.Minute)
	assert.Error(t, err)

	rt, err := NewResetTokens([]byte("s"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultResetTokenMaxAge, rt.maxAge)

	_, err = rt.Issue("")
	assert.Error(t, err)
}
