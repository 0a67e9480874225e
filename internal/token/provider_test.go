package token

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/contribhub/contrib-insights/internal/errors"
	"github.com/contribhub/contrib-insights/internal/models"
)

func newTestProvider(t *testing.T, now time.Time) *OAuthProvider {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	provider, err := NewOAuthProvider("client-id", "client-secret", logger)
	require.NoError(t, err)
	provider.now = func() time.Time { return now }
	return provider
}

func TestNewOAuthProviderRequiresCredentials(t *testing.T) {
	logger := logrus.New()

	_, err := NewOAuthProvider("", "secret", logger)
	assert.True(t, apperrors.IsConfiguration(err))

	_, err = NewOAuthProvider("id", "", logger)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestGetValidAccessToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("nil account", func(t *testing.T) {
		provider := newTestProvider(t, now)

		_, err := provider.GetValidAccessToken(ctx, nil)
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("token without expiry passes through", func(t *testing.T) {
		provider := newTestProvider(t, now)
		account := &models.GithubAccount{UserID: "u1", AccessToken: "tok"}

		token, err := provider.GetValidAccessToken(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
	})

	t.Run("token valid beyond the refresh skew passes through", func(t *testing.T) {
		provider := newTestProvider(t, now)
		expiresAt := now.Add(time.Hour)
		account := &models.GithubAccount{UserID: "u1", AccessToken: "tok", TokenExpiresAt: &expiresAt}

		token, err := provider.GetValidAccessToken(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
	})

	t.Run("token inside the skew window counts as expired", func(t *testing.T) {
		provider := newTestProvider(t, now)
		expiresAt := now.Add(time.Minute) // within the two-minute skew
		account := &models.GithubAccount{UserID: "u1", AccessToken: "tok", TokenExpiresAt: &expiresAt}

		_, err := provider.GetValidAccessToken(ctx, account)
		assert.True(t, apperrors.IsUnauthorized(err), "no refresh token available")
	})

	t.Run("expired token without refresh token", func(t *testing.T) {
		provider := newTestProvider(t, now)
		expiresAt := now.Add(-time.Hour)
		account := &models.GithubAccount{UserID: "u1", AccessToken: "tok", TokenExpiresAt: &expiresAt}

		_, err := provider.GetValidAccessToken(ctx, account)
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("expired refresh token requires re-linking", func(t *testing.T) {
		provider := newTestProvider(t, now)
		expiresAt := now.Add(-time.Hour)
		refreshExpiresAt := now.Add(-time.Minute)
		account := &models.GithubAccount{
			UserID:           "u1",
			AccessToken:      "tok",
			TokenExpiresAt:   &expiresAt,
			RefreshToken:     "refresh",
			RefreshExpiresAt: &refreshExpiresAt,
		}

		_, err := provider.GetValidAccessToken(ctx, account)
		assert.True(t, apperrors.IsUnauthorized(err))
	})
}
