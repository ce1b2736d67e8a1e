package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTokenTTL    = 45 * time.Minute
	tokenRefreshBuffer = 30 * time.Second
	maxReadAttempts    = 3
)

// APIError carries the gateway's own message for a rejected call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("courier gateway: %s (status %d)", e.Message, e.StatusCode)
}

// Client is an authenticated HTTP client for the courier gateway. The
// client-credentials token is cached and refreshed under an internal lock
// so concurrent checkouts share one token.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a new courier gateway client.
func NewClient(baseURL, clientID, clientSecret string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		logger: logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// getToken returns the cached token, fetching a fresh one when missing or
// within the refresh buffer of expiry.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenRefreshBuffer)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("courier token request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "token request rejected"}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		return "", fmt.Errorf("courier token response malformed")
	}

	ttl := defaultTokenTTL
	if tr.ExpiresIn > 0 {
		ttl = time.Duration(tr.ExpiresIn) * time.Second
	}
	c.token = tr.AccessToken
	c.tokenExpiry = time.Now().Add(ttl)
	c.logger.Debug("courier token refreshed", zap.Duration("ttl", ttl))
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// do performs one authenticated call. A 401 invalidates the cached token and
// retries once with a fresh one. The decoded body is returned as a generic
// map for the normalize layer.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (map[string]interface{}, error) {
	out, err := c.doOnce(ctx, method, path, body)
	if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusUnauthorized {
		c.invalidateToken()
		out, err = c.doOnce(ctx, method, path, body)
	}
	return out, err
}

// doWithRetry wraps do with a bounded backoff retry. Only safe for
// idempotent reads; write calls go through do and are attempted once.
func (c *Client) doWithRetry(ctx context.Context, method, path string, body interface{}) (map[string]interface{}, error) {
	var out map[string]interface{}
	var err error
	for attempt := 1; attempt <= maxReadAttempts; attempt++ {
		out, err = c.do(ctx, method, path, body)
		if err == nil {
			return out, nil
		}
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode < 500 {
			return nil, err
		}
		if attempt < maxReadAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
	}
	return nil, err
}

func (c *Client) doOnce(ctx context.Context, method, path string, body interface{}) (map[string]interface{}, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("courier request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var decoded map[string]interface{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := pickString(decoded, "message", "error", "msg")
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return decoded, nil
}
