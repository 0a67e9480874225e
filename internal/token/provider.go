package token

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	apperrors "github.com/contribhub/contrib-insights/internal/errors"
	"github.com/contribhub/contrib-insights/internal/models"
)

// refreshSkew makes tokens count as expired slightly before their expiry so a
// request started now cannot outlive the token mid-flight.
const refreshSkew = 2 * time.Minute

// Provider resolves a usable GitHub access token for a linked account.
type Provider interface {
	GetValidAccessToken(ctx context.Context, account *models.GithubAccount) (string, error)
}

// OAuthProvider refreshes expiring access tokens through the GitHub OAuth
// token endpoint.
type OAuthProvider struct {
	conf   *oauth2.Config
	logger *logrus.Logger
	now    func() time.Time
}

// NewOAuthProvider creates a provider for the configured OAuth app.
func NewOAuthProvider(clientID, clientSecret string, logger *logrus.Logger) (*OAuthProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, apperrors.NewConfigurationError("github oauth app credentials are not configured", nil)
	}
	return &OAuthProvider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     githuboauth.Endpoint,
		},
		logger: logger,
		now:    time.Now,
	}, nil
}

// GetValidAccessToken returns the account's access token, refreshing it first
// when it is missing or near expiry. Fails with Unauthorized when the refresh
// token is absent or itself expired.
func (p *OAuthProvider) GetValidAccessToken(ctx context.Context, account *models.GithubAccount) (string, error) {
	if account == nil {
		return "", apperrors.NewUnauthorizedError("no linked github account", nil)
	}

	if account.AccessToken != "" {
		if account.TokenExpiresAt == nil || account.TokenExpiresAt.After(p.now().Add(refreshSkew)) {
			return account.AccessToken, nil
		}
	}

	if account.RefreshToken == "" {
		return "", apperrors.NewUnauthorizedError("github access token expired and no refresh token available", nil)
	}
	if account.RefreshExpiresAt != nil && !account.RefreshExpiresAt.After(p.now()) {
		return "", apperrors.NewUnauthorizedError("github refresh token expired, account must be re-linked", nil)
	}

	expired := &oauth2.Token{
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
		Expiry:       p.now().Add(-time.Minute),
	}
	refreshed, err := p.conf.TokenSource(ctx, expired).Token()
	if err != nil {
		return "", apperrors.NewUnauthorizedError("failed to refresh github access token", err)
	}

	p.logger.WithField("user_id", account.UserID).Debug("Refreshed github access token")
	return refreshed.AccessToken, nil
}
