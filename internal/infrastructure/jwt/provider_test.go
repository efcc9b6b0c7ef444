package jwtinfra

import (
	"errors"
	"testing"
	"time"

	"github.com/campus-market-api/internal/config"
	"github.com/campus-market-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, accessExpiry time.Duration) *Provider {
	t.Helper()
	p, err := NewProvider(&config.Config{
		AccessTokenSecret:  "access-secret-for-tests",
		RefreshTokenSecret: "refresh-secret-for-tests",
		AccessTokenExpiry:  accessExpiry,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_MissingSecrets(t *testing.T) {
	_, err := NewProvider(&config.Config{})
	assert.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	p := newTestProvider(t, 15*time.Minute)

	token, err := p.SignAccess("u1")
	require.NoError(t, err)

	userID, err := p.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestAccessToken_Expired(t *testing.T) {
	p := newTestProvider(t, -time.Minute) // already expired on issue

	token, err := p.SignAccess("u1")
	require.NoError(t, err)

	_, err = p.VerifyAccess(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefreshToken_NotValidAsAccess(t *testing.T) {
	p := newTestProvider(t, 15*time.Minute)

	refresh, err := p.SignRefresh("u1")
	require.NoError(t, err)

	_, err = p.VerifyAccess(refresh)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerify_Garbage(t *testing.T) {
	p := newTestProvider(t, 15*time.Minute)

	_, err := p.VerifyAccess("not-a-token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	p := newTestProvider(t, 15*time.Minute)

	token, err := p.SignRefresh("u42")
	require.NoError(t, err)

	userID, err := p.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, "u42", userID)
}
