// Package auth exchanges the long-lived OAuth2 refresh token for short-lived
// bearer tokens and caches the result in process memory.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenEndpoint is the fixed Google OAuth2 token exchange endpoint.
const TokenEndpoint = "https://oauth2.googleapis.com/token"

// refreshSafetyMargin is how long before expiry a cached token stops being
// reused.
const refreshSafetyMargin = 60 * time.Second

// Credentials holds the static OAuth2 client credentials, immutable for the
// process lifetime.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// cachedToken is replaced, never mutated in place, on every refresh.
type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

// TokenSource acquires and caches bearer tokens. The HTTP client, clock and
// endpoint are injectable so tests can substitute fakes without touching
// process-wide state.
type TokenSource struct {
	creds    Credentials
	client   *http.Client
	endpoint string
	now      func() time.Time

	mu     sync.Mutex
	cached *cachedToken
}

// Option configures a TokenSource.
type Option func(*TokenSource)

// WithHTTPClient overrides the HTTP client used for the token exchange.
func WithHTTPClient(c *http.Client) Option {
	return func(s *TokenSource) { s.client = c }
}

// WithEndpoint overrides the token endpoint URL.
func WithEndpoint(u string) Option {
	return func(s *TokenSource) { s.endpoint = u }
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(s *TokenSource) { s.now = now }
}

// NewTokenSource creates a token source for the given credentials.
func NewTokenSource(creds Credentials, opts ...Option) *TokenSource {
	s := &TokenSource{
		creds:    creds,
		client:   &http.Client{Timeout: 30 * time.Second},
		endpoint: TokenEndpoint,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns a bearer token, reusing the cached one while it is more than
// the safety margin from expiry. Concurrent callers may each trigger a
// redundant refresh; that is harmless since tokens are not consumed
// destructively, but the cache swap itself is guarded.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if err := s.creds.check(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.cached != nil && s.now().Before(s.cached.expiresAt.Add(-refreshSafetyMargin)) {
		token := s.cached.accessToken
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()

	refreshed, err := s.refresh(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cached = refreshed
	s.mu.Unlock()
	return refreshed.accessToken, nil
}

// check fails with a configuration error naming the first missing credential.
func (c Credentials) check() error {
	switch {
	case c.ClientID == "":
		return fmt.Errorf("CWS_CLIENT_ID is not set: OAuth client credentials are required")
	case c.ClientSecret == "":
		return fmt.Errorf("CWS_CLIENT_SECRET is not set: OAuth client credentials are required")
	case c.RefreshToken == "":
		return fmt.Errorf("CWS_REFRESH_TOKEN is not set: OAuth client credentials are required")
	}
	return nil
}

// refresh performs the synchronous token exchange. No retries; a failure
// propagates immediately to the caller.
func (s *TokenSource) refresh(ctx context.Context) (*cachedToken, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", s.creds.ClientID)
	data.Set("client_secret", s.creds.ClientSecret)
	data.Set("refresh_token", s.creds.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token refresh failed: status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response contained no access_token")
	}

	return &cachedToken{
		accessToken: tokenResp.AccessToken,
		expiresAt:   s.now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}, nil
}
