package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// APIError carries the gateway's own message for a rejected call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment gateway: %s (status %d)", e.Message, e.StatusCode)
}

// Client talks to the payment gateway REST API with a static API token.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new payment gateway client.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// envelope is the gateway's uniform response wrapper.
type envelope struct {
	IsSuccess        bool            `json:"IsSuccess"`
	Message          string          `json:"Message"`
	ValidationErrors []struct {
		Name  string `json:"Name"`
		Error string `json:"Error"`
	} `json:"ValidationErrors"`
	Data json.RawMessage `json:"Data"`
}

// post performs one call and unwraps the envelope into out. A response with
// IsSuccess=false becomes an *APIError joining the validation messages.
func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "unreadable gateway response"}
	}

	if !env.IsSuccess {
		msg := env.Message
		if len(env.ValidationErrors) > 0 {
			parts := make([]string, 0, len(env.ValidationErrors))
			for _, v := range env.ValidationErrors {
				parts = append(parts, v.Error)
			}
			msg = strings.Join(parts, "; ")
		}
		if msg == "" {
			msg = "payment request rejected"
		}
		c.logger.Warn("payment gateway rejected call",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("payment response decode: %w", err)
		}
	}
	return nil
}
