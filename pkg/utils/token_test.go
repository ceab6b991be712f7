package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager(JWTConfig{Secret: "s3cret", ExpiryHours: 1})
	id := uuid.New()

	token, expiresAt, err := m.Generate(id, "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	gotID, claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokenRejected(t *testing.T) {
	m := NewTokenManager(JWTConfig{Secret: "s3cret", ExpiryHours: 1})
	other := NewTokenManager(JWTConfig{Secret: "different", ExpiryHours: 1})

	foreign, _, err := other.Generate(uuid.New(), "mallory")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":     "abc.def.ghi",
		"foreign key": foreign,
		"expired":     expired,
		"bad subject": badSubject,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := m.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
