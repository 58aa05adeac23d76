package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/smallbiznis/launchpad/internal/auth/domain"
	"github.com/smallbiznis/launchpad/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func newVerifier() *Verifier {
	return NewVerifier(config.Config{Supabase: config.SupabaseConfig{JWTSecret: testSecret}})
}

func TestVerifyValidToken(t *testing.T) {
	user := uuid.NewString()
	raw := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":   user,
		"aud":   "authenticated",
		"email": "ada@example.com",
		"role":  "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	claims, err := newVerifier().Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, user, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestVerifyExpiredToken(t *testing.T) {
	raw := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": uuid.NewString(),
		"aud": "authenticated",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	_, err := newVerifier().Verify(raw)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerifyRejectsWrongSecretAndAudience(t *testing.T) {
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("another-secret"), jwt.MapClaims{
		"sub": uuid.NewString(),
		"aud": "authenticated",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err := newVerifier().Verify(wrongKey)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	wrongAudience := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": uuid.NewString(),
		"aud": "anon",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = newVerifier().Verify(wrongAudience)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	raw := sign(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{
		"sub": uuid.NewString(),
		"aud": "authenticated",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := newVerifier().Verify(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyWithoutSecret(t *testing.T) {
	_, err := NewVerifier(config.Config{}).Verify("anything")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
