// Package botapi is a minimal Telegram Bot API client covering the webhook
// lifecycle methods. It implements webhook.Registrar; anything beyond
// registration and deregistration is out of its scope.
package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Veetaha/teloxide/webhook"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Config configures a Client.
type Config struct {
	// Token is the bot token issued by BotFather. Required.
	Token string

	// BaseURL overrides the API endpoint, e.g. for a local Bot API server.
	// Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient overrides the HTTP client. Defaults to a client with a
	// 30 second timeout.
	HTTPClient *http.Client
}

// Client talks to the Bot API over HTTPS.
type Client struct {
	token   string
	baseURL string
	httpc   *http.Client
}

var _ webhook.Registrar = (*Client)(nil)

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("bot api: token is empty")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{token: cfg.Token, baseURL: baseURL, httpc: httpc}, nil
}

// APIError is an ok=false response envelope from the Bot API.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bot api: %d %s", e.Code, e.Description)
}

type setWebhookRequest struct {
	URL                string   `json:"url"`
	SecretToken        string   `json:"secret_token,omitempty"`
	AllowedUpdates     []string `json:"allowed_updates,omitempty"`
	MaxConnections     int      `json:"max_connections,omitempty"`
	DropPendingUpdates bool     `json:"drop_pending_updates,omitempty"`
}

// SetWebhook registers the public URL with the Bot API.
func (c *Client) SetWebhook(ctx context.Context, params webhook.SetWebhookParams) error {
	return c.call(ctx, "setWebhook", setWebhookRequest{
		URL:                params.URL,
		SecretToken:        params.SecretToken,
		AllowedUpdates:     params.AllowedUpdates,
		MaxConnections:     params.MaxConnections,
		DropPendingUpdates: params.DropPendingUpdates,
	})
}

// DeleteWebhook removes the registered URL.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", struct{}{})
}

type envelope struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (c *Client) call(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("bot api: encode %s: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("bot api: %s: %w", method, c.redact(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("bot api: %s: %w", method, c.redact(err))
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("bot api: decode %s response: %w", method, err)
	}
	if !env.OK {
		return &APIError{Code: env.ErrorCode, Description: env.Description}
	}
	return nil
}

// redact strips the bot token from transport errors, whose messages embed
// the request URL.
func (c *Client) redact(err error) error {
	msg := strings.ReplaceAll(err.Error(), c.token, "<token>")
	return fmt.Errorf("%s", msg)
}
