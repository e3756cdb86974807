package auth_test

import (
	"testing"
	"time"

	"lipa/config"
	"lipa/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "lipa-test",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := auth.GenerateAccessToken(cfg, 42, "a@b.cd", "CUSTOMER")
	require.NoError(t, err)

	claims, err := auth.ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "a@b.cd", claims.Email)
	assert.Equal(t, "CUSTOMER", claims.Role)
	assert.Equal(t, "lipa-test", claims.Issuer)
}

func TestAccessTokenWrongSecretRejected(t *testing.T) {
	cfg := testJWTConfig()
	token, err := auth.GenerateAccessToken(cfg, 42, "a@b.cd", "CUSTOMER")
	require.NoError(t, err)

	other := testJWTConfig()
	other.AccessSecret = "different"
	_, err = auth.ParseAccessToken(other, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := auth.GenerateRefreshToken(cfg, 99)
	require.NoError(t, err)

	id, err := auth.ParseRefreshToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(99), id)
}

func TestRefreshTokenNotValidAsAccess(t *testing.T) {
	cfg := testJWTConfig()
	token, err := auth.GenerateRefreshToken(cfg, 99)
	require.NoError(t, err)

	_, err = auth.ParseAccessToken(cfg, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
