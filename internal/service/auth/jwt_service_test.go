package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/config"
)

const testSecret = "test-secret-key-that-is-long-enough"

func newTestJWTService(t *testing.T, secret string) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(config.AuthConfig{
		JWTSecret:            secret,
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	return svc.(*hmacJWTService)
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{
		JWTSecret:            "too-short",
		TokenLifetimeMinutes: 60,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, testSecret)
	userID := uuid.New()
	issuedAt := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	svc.timeFunc = func() time.Time { return issuedAt }

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.IssuedAt.Equal(issuedAt))
	assert.True(t, claims.ExpiresAt.Equal(issuedAt.Add(time.Hour)))
}

func TestValidateTokenExpired(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, testSecret)
	issuedAt := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	svc.timeFunc = func() time.Time { return issuedAt }

	token, err := svc.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	// Past the lifetime plus the clock-skew allowance.
	svc.timeFunc = func() time.Time { return issuedAt.Add(time.Hour + 3*time.Minute) }
	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenToleratesClockSkew(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, testSecret)
	issuedAt := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	svc.timeFunc = func() time.Time { return issuedAt }

	token, err := svc.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	// One minute past expiry is still within the two-minute leeway.
	svc.timeFunc = func() time.Time { return issuedAt.Add(time.Hour + time.Minute) }
	_, err = svc.ValidateToken(context.Background(), token)
	assert.NoError(t, err)
}

func TestValidateTokenWrongKey(t *testing.T) {
	t.Parallel()

	issuer := newTestJWTService(t, testSecret)
	token, err := issuer.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	verifier := newTestJWTService(t, "another-secret-key-also-long-enough!")
	_, err = verifier.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenMalformed(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, testSecret)

	for _, token := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		_, err := svc.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestBcryptVerifierRoundTrip(t *testing.T) {
	t.Parallel()

	verifier := NewBcryptVerifier()

	hash, err := verifier.Hash("s3cret-password")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-password", hash)

	assert.NoError(t, verifier.Compare(hash, "s3cret-password"))
	assert.Error(t, verifier.Compare(hash, "wrong-password"))
}
