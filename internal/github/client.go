package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/contribhub/contrib-insights/internal/config"
)

const acceptHeader = "application/vnd.github+json"

// Client is a rate-limit-aware client for one GitHub repository. It wraps the
// versioned REST API with paginated fetchers and owns the diff-stat cache.
type Client struct {
	httpClient *http.Client
	baseURL    string
	fullName   string
	logger     *logrus.Logger
	cfg        *config.GitHubConfig
	statsCache *StatsCache
}

// ClientOption allows configuring the GitHub client
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithStatsCache sets a shared diff-stat cache. Without it each client owns a
// private cache, so passing the process-wide one is what production does.
func WithStatsCache(cache *StatsCache) ClientOption {
	return func(c *Client) {
		c.statsCache = cache
	}
}

// NewClient creates a new GitHub client for the repository identified by
// fullName ("owner/name") using the given bearer token.
func NewClient(token, fullName string, logger *logrus.Logger, cfg *config.GitHubConfig, opts ...ClientOption) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = cfg.RequestTimeout

	client := &Client{
		httpClient: httpClient,
		baseURL:    cfg.APIBaseURL,
		fullName:   fullName,
		logger:     logger,
		cfg:        cfg,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.statsCache == nil {
		client.statsCache = NewStatsCache(cfg.StatsCache.MaxEntries, cfg.StatsCache.TTL)
	}

	return client
}

// getJSON performs a GET against the API and decodes a 2xx JSON body into
// out. It returns the HTTP status code; a non-2xx status is not an error
// here, callers map it per endpoint.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) (int, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", c.cfg.APIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, newTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, nil
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, newDecodeError(err)
		}
	}

	return resp.StatusCode, nil
}
