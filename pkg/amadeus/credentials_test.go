package amadeus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "tripchat/pkg/errors"
)

func newTokenServer(t *testing.T, calls *int, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, tokenPath, r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestToken_ExchangeAndCache(t *testing.T) {
	calls := 0
	server := newTokenServer(t, &calls, http.StatusOK, `{"access_token":"fresh-token","expires_in":1799}`)
	defer server.Close()

	creds := NewCredentials(CredentialsConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      server.URL,
	}, zap.NewNop())

	token, err := creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, 1, calls)

	// Second call is served from the cache without a network round-trip.
	token, err = creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, 1, calls)
}

func TestToken_ExpiredCacheTriggersNewExchange(t *testing.T) {
	calls := 0
	server := newTokenServer(t, &calls, http.StatusOK, `{"access_token":"fresh-token"}`)
	defer server.Close()

	creds := NewCredentials(CredentialsConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      server.URL,
	}, zap.NewNop())

	_, err := creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Force the cached token past its expiry.
	creds.expiresAt = creds.expiresAt.Add(-2 * cachedTokenLifetime)

	_, err = creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestToken_FallsBackToStaticTokenOnExchangeFailure(t *testing.T) {
	calls := 0
	server := newTokenServer(t, &calls, http.StatusUnauthorized, `{"error":"invalid_client"}`)
	defer server.Close()

	creds := NewCredentials(CredentialsConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		StaticToken:  "static-token",
		BaseURL:      server.URL,
	}, zap.NewNop())

	token, err := creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static-token", token)
	assert.Equal(t, 1, calls)
}

func TestToken_ExchangeFailureWithoutFallback(t *testing.T) {
	calls := 0
	server := newTokenServer(t, &calls, http.StatusInternalServerError, `{}`)
	defer server.Close()

	creds := NewCredentials(CredentialsConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      server.URL,
	}, zap.NewNop())

	_, err := creds.Token(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestToken_StaticTokenWithoutClientCredentials(t *testing.T) {
	creds := NewCredentials(CredentialsConfig{
		StaticToken: "static-token",
	}, zap.NewNop())

	token, err := creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static-token", token)
}

func TestToken_NoCredentialsConfigured(t *testing.T) {
	creds := NewCredentials(CredentialsConfig{}, zap.NewNop())

	_, err := creds.Token(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfig))
}
