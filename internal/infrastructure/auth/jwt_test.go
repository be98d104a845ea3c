package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func newService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "storefront-backend",
		Expiration: expiration,
	})
}

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := newService(time.Hour)

	token, expiresAt, err := svc.GenerateToken("ops@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Operator)
	assert.Equal(t, "storefront-backend", claims.Issuer)
}

func TestJWTServiceRejectsEmptyOperator(t *testing.T) {
	svc := newService(time.Hour)

	_, _, err := svc.GenerateToken("")
	assert.ErrorIs(t, err, ErrMissingOperator)
}

func TestJWTServiceRejectsExpiredToken(t *testing.T) {
	svc := newService(-time.Minute)

	token, _, err := svc.GenerateToken("ops@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTServiceRejectsWrongSecret(t *testing.T) {
	token, _, err := newService(time.Hour).GenerateToken("ops@example.com")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:     "different-secret",
		Issuer:     "storefront-backend",
		Expiration: time.Hour,
	})

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTServiceRejectsGarbage(t *testing.T) {
	svc := newService(time.Hour)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
