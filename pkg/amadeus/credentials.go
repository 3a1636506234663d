package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "tripchat/pkg/errors"
)

const (
	tokenPath       = "/v1/security/oauth2/token"
	exchangeTimeout = 15 * time.Second

	// Amadeus grants tokens for 30 minutes; cache for 25 to absorb clock
	// skew and in-flight request latency.
	cachedTokenLifetime = 25 * time.Minute
)

// CredentialsConfig holds everything needed to obtain Amadeus bearer tokens
type CredentialsConfig struct {
	ClientID     string
	ClientSecret string
	StaticToken  string
	BaseURL      string
}

// Credentials produces valid bearer tokens for the Amadeus API with minimal
// round-trips. It holds a single cached token plus its expiry. The slot is
// deliberately unguarded: two concurrent cache misses may both exchange, and
// the last writer wins. Amadeus tolerates multiple live tokens, so the race
// costs a round-trip, not correctness.
type Credentials struct {
	clientID     string
	clientSecret string
	staticToken  string
	baseURL      string
	httpClient   *http.Client
	logger       *zap.Logger

	token     string
	expiresAt time.Time
}

// NewCredentials creates a credential cache. The cache starts empty and is
// rebuilt on process restart.
func NewCredentials(cfg CredentialsConfig, logger *zap.Logger) *Credentials {
	return &Credentials{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		staticToken:  cfg.StaticToken,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:   &http.Client{},
		logger:       logger,
	}
}

// Token returns a valid bearer token. Cached tokens are served without a
// network call while unexpired; otherwise a client-credentials exchange is
// performed, falling back to the statically configured token on failure.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	if c.token != "" && time.Now().Before(c.expiresAt) {
		c.logger.Debug("Using cached Amadeus token")
		return c.token, nil
	}

	if c.clientID != "" && c.clientSecret != "" {
		token, err := c.exchange(ctx)
		if err == nil {
			c.token = token
			c.expiresAt = time.Now().Add(cachedTokenLifetime)
			c.logger.Info("Amadeus token obtained and cached")
			return token, nil
		}

		c.logger.Warn("Amadeus token exchange failed", zap.Error(err))
		if c.staticToken != "" {
			c.logger.Info("Falling back to configured static Amadeus token")
			return c.staticToken, nil
		}
		return "", err
	}

	if c.staticToken != "" {
		return c.staticToken, nil
	}

	return "", apperrors.NewConfigError(
		"missing Amadeus credentials: set client ID and secret, or a static bearer token")
}

// exchange performs the OAuth2 client-credentials grant
func (c *Credentials) exchange(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewExternalError("amadeus", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewExternalError("amadeus",
			fmt.Errorf("token exchange failed (%d): %s", resp.StatusCode, string(body)))
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", apperrors.NewExternalError("amadeus",
			fmt.Errorf("malformed token response: %w", err))
	}
	if result.AccessToken == "" {
		return "", apperrors.NewExternalError("amadeus",
			fmt.Errorf("no access_token in response"))
	}

	return result.AccessToken, nil
}
