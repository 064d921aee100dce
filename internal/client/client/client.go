package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/dmitrijs2005/siteadmin/internal/querycache"
)

// Client talks to the siteadmin HTTP API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	session *SessionContext
	cache   *querycache.Cache
	now     func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithSessionContext shares an existing session between clients.
func WithSessionContext(s *SessionContext) Option {
	return func(c *Client) { c.session = s }
}

// WithCacheTTL sets how long list results are reused. Zero keeps them until
// a write invalidates them.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = querycache.New(ttl) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: NewSessionContext(),
		cache:   querycache.New(time.Minute),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SessionContext exposes the session state for subscription.
func (c *Client) SessionContext() *SessionContext {
	return c.session
}

type authResponse struct {
	Tokens
	User *Session `json:"user"`
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email string, password []byte) (*Session, error) {
	in := map[string]string{"email": email, "password": string(password)}

	var out authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", in, &out, false); err != nil {
		return nil, err
	}

	c.cache.InvalidatePrefix("")
	c.session.set(SignedIn, out.Tokens, out.User)
	return out.User, nil
}

// Refresh exchanges the refresh token for a new token pair. A rejected
// refresh token ends the session.
func (c *Client) Refresh(ctx context.Context) error {
	tokens, ok := c.session.tokenPair()
	if !ok {
		return ErrNotSignedIn
	}

	var out authResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{"refresh_token": tokens.RefreshToken}, &out, false)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			c.session.clear()
		}
		return err
	}

	c.session.set(TokenRefreshed, out.Tokens, out.User)
	return nil
}

// Logout revokes the refresh token on the server and clears the local
// session. The local session is cleared even when the request fails.
func (c *Client) Logout(ctx context.Context) error {
	tokens, ok := c.session.tokenPair()
	if !ok {
		return nil
	}
	defer func() {
		c.session.clear()
		c.cache.InvalidatePrefix("")
	}()

	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", map[string]string{"refresh_token": tokens.RefreshToken}, nil, true)
}

// Session asks the server for the current session.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	var out Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/session", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks the server health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, "", nil, false)
}

// accessToken returns a usable access token, refreshing an expired one
// first.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	tokens, ok := c.session.tokenPair()
	if !ok {
		return "", ErrNotSignedIn
	}
	if !tokens.ExpiresAt.IsZero() && !c.now().Before(tokens.ExpiresAt) {
		if err := c.Refresh(ctx); err != nil {
			return "", err
		}
		tokens, ok = c.session.tokenPair()
		if !ok {
			return "", ErrNotSignedIn
		}
	}
	return tokens.AccessToken, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out, auth)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any, auth bool) error {
	raw, err := c.send(ctx, method, path, body, contentType, auth)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send performs the request and returns the body of a 2xx response.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, auth bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if auth {
		token, err := c.accessToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
			apiErr.Fields = eb.Fields
		}
		return nil, apiErr
	}
	return raw, nil
}
