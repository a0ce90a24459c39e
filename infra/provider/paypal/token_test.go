package paypal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/paygate/internal/sandbox"
	"github.com/amirasaad/paygate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSandbox(t *testing.T, opts sandbox.Options) (*sandbox.Server, *httptest.Server) {
	t.Helper()
	opts.ClientID, opts.ClientSecret = "client-id", "client-secret"
	sb := sandbox.New(opts, nil)
	srv := httptest.NewServer(sb.Handler())
	t.Cleanup(srv.Close)
	return sb, srv
}

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		HTTPClient:   &http.Client{Timeout: 5 * time.Second},
	}
}

func TestTokenStore_CachesWithinBuffer(t *testing.T) {
	sb, srv := newSandbox(t, sandbox.Options{TokenTTL: time.Hour})
	store := NewTokenStore(testConfig(srv.URL), nil)

	first, err := store.Token(context.Background())
	require.NoError(t, err)
	second, err := store.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, sb.TokenExchanges())
}

func TestTokenStore_RefreshesInsideBuffer(t *testing.T) {
	sb, srv := newSandbox(t, sandbox.Options{TokenTTL: time.Hour})
	store := NewTokenStore(testConfig(srv.URL), nil)

	clock := time.Now()
	store.now = func() time.Time { return clock }

	first, err := store.Token(context.Background())
	require.NoError(t, err)

	clock = clock.Add(50 * time.Minute)
	_, err = store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sb.TokenExchanges())

	// less than five minutes left
	clock = clock.Add(6 * time.Minute)
	second, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sb.TokenExchanges())
	assert.NotEqual(t, first.Value, second.Value)
}

func TestTokenStore_Invalidate(t *testing.T) {
	sb, srv := newSandbox(t, sandbox.Options{})
	store := NewTokenStore(testConfig(srv.URL), nil)

	_, err := store.Token(context.Background())
	require.NoError(t, err)
	store.Invalidate()
	_, err = store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sb.TokenExchanges())
}

func TestTokenStore_ConcurrentCallersShareExchange(t *testing.T) {
	var hits atomic.Int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123456789","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	store := NewTokenStore(testConfig(srv.URL), nil)

	var wg sync.WaitGroup
	results := make([]AccessToken, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := store.Token(context.Background())
			assert.NoError(t, err)
			results[i] = tok
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), hits.Load())
	for _, r := range results {
		assert.Equal(t, "tok-123456789", r.Value)
	}
}

func TestTokenStore_AuthFailure(t *testing.T) {
	_, srv := newSandbox(t, sandbox.Options{})
	cfg := testConfig(srv.URL)
	cfg.ClientSecret = "wrong"
	store := NewTokenStore(cfg, nil)

	_, err := store.Token(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthFailure)

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Contains(t, authErr.Body, "invalid_client")
	assert.NotContains(t, err.Error(), "wrong")
}

func TestTokenStore_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := NewTokenStore(testConfig(url), nil)
	_, err := store.Token(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthFailure)

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Zero(t, authErr.Status)
}

func TestTokenStore_MissingCredentials(t *testing.T) {
	store := NewTokenStore(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := store.Token(context.Background())
	assert.ErrorIs(t, err, domain.ErrCredentialsMissing)
}

func TestTokenStore_NoExpiryIsNotCached(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-no-expiry","token_type":"Bearer"}`))
	}))
	t.Cleanup(srv.Close)
	store := NewTokenStore(testConfig(srv.URL), nil)

	for range 2 {
		tok, err := store.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-no-expiry", tok.Value)
	}
	assert.Equal(t, int64(2), hits.Load())
}

func TestBaseURLFor(t *testing.T) {
	assert.Equal(t, SandboxBaseURL, BaseURLFor("sandbox", ""))
	assert.Equal(t, SandboxBaseURL, BaseURLFor("", ""))
	assert.Equal(t, ProductionBaseURL, BaseURLFor("PRODUCTION", ""))
	assert.Equal(t, "http://localhost:4010", BaseURLFor("production", "http://localhost:4010/"))
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", maskToken("short"))
	assert.Equal(t, "A21AAa****", maskToken("A21AAabcdefghijkl"))
}
