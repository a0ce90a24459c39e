package paypal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/amirasaad/paygate/pkg/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// AccessToken is a bearer token and the instant it stops being accepted.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// fresh reports whether t can still be used at now, keeping buffer in reserve.
func (t *AccessToken) fresh(now time.Time, buffer time.Duration) bool {
	return t != nil && now.Before(t.ExpiresAt.Add(-buffer))
}

// TokenProvider hands out bearer tokens for API calls.
type TokenProvider interface {
	Token(ctx context.Context) (AccessToken, error)
	Invalidate()
}

// TokenStore caches a single client-credentials access token.
// Refreshes are collapsed so concurrent callers share one exchange.
type TokenStore struct {
	cfg     clientcredentials.Config
	client  *http.Client
	buffer  time.Duration
	logger  *slog.Logger
	now     func() time.Time
	current atomic.Pointer[AccessToken]
	group   singleflight.Group
}

// NewTokenStore creates a token store for the given provider config.
func NewTokenStore(cfg Config, logger *slog.Logger) *TokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStore{
		cfg: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     BaseURLFor("", cfg.BaseURL) + tokenPath,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		client: cfg.httpClient(),
		buffer: cfg.buffer(),
		logger: logger.With("component", "paypal.tokens"),
		now:    time.Now,
	}
}

// Token returns the cached token while it is fresh, otherwise exchanges the
// client credentials for a new one.
func (s *TokenStore) Token(ctx context.Context) (AccessToken, error) {
	if tok := s.current.Load(); tok.fresh(s.now(), s.buffer) {
		return *tok, nil
	}
	if s.cfg.ClientID == "" || s.cfg.ClientSecret == "" {
		return AccessToken{}, domain.ErrCredentialsMissing
	}

	ch := s.group.DoChan("token", func() (any, error) {
		// Another caller may have refreshed while we waited.
		if tok := s.current.Load(); tok.fresh(s.now(), s.buffer) {
			return tok, nil
		}
		return s.exchange(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return AccessToken{}, &domain.AuthError{Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return AccessToken{}, res.Err
		}
		return *res.Val.(*AccessToken), nil
	}
}

// Invalidate drops the cached token so the next call exchanges again.
func (s *TokenStore) Invalidate() {
	s.current.Store(nil)
}

func (s *TokenStore) exchange(ctx context.Context) (*AccessToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	start := s.now()

	tok, err := s.cfg.Token(ctx)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			s.logger.Error("Token exchange rejected", "status", re.Response.StatusCode)
			return nil, &domain.AuthError{Status: re.Response.StatusCode, Body: string(re.Body)}
		}
		s.logger.Error("Token exchange failed", "error", err)
		return nil, &domain.AuthError{Err: err}
	}

	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		// no expires_in: usable for this call only
		expiresAt = start
	}
	at := &AccessToken{Value: tok.AccessToken, ExpiresAt: expiresAt}
	s.current.Store(at)

	s.logger.Info("Access token refreshed",
		"token", maskToken(at.Value),
		"expires_at", at.ExpiresAt.Format(time.RFC3339),
	)
	return at, nil
}

func maskToken(v string) string {
	if len(v) <= 8 {
		return "****"
	}
	return v[:6] + "****"
}
