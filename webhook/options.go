package webhook

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/Veetaha/teloxide/internal/metrics"
)

// SecretTokenHeader is the request header carrying the configured secret
// token. It is stripped from the request before the body is processed.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// DefaultMaxBodySize caps webhook request bodies at 1 MiB.
const DefaultMaxBodySize = 1 << 20

// Options configures one webhook listener instance.
type Options struct {
	// Address is the local address the HTTP surface binds to. Only used by
	// Listen; the lower layers leave running the server to the caller.
	Address string

	// URL is the public HTTPS URL the remote API will push updates to. Its
	// path is the single route the HTTP surface serves.
	URL string

	// SecretToken, when non-empty, is sent to the remote API during
	// registration and required byte-for-byte in SecretTokenHeader on every
	// request. 1-256 characters of [A-Za-z0-9_-].
	SecretToken string

	// AllowedUpdates restricts the update kinds the remote API delivers.
	// Empty means the API default.
	AllowedUpdates []string

	// MaxConnections is the remote API's maximum number of simultaneous
	// webhook connections. Zero means the API default.
	MaxConnections int

	// DropPendingUpdates asks the remote API to discard updates queued
	// before registration.
	DropPendingUpdates bool

	// MaxBodySize bounds the request body in bytes. Oversized bodies are
	// dropped like malformed ones. Defaults to DefaultMaxBodySize.
	MaxBodySize int64

	// Logger receives request and shutdown diagnostics. Defaults to the
	// process logger with component=webhook.
	Logger *slog.Logger

	// Metrics, when set, receives per-request outcome counters.
	Metrics *metrics.Metrics
}

// Path returns the route derived from the public URL.
func (o Options) Path() string {
	u, err := url.Parse(o.URL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

func (o *Options) normalize() error {
	u, err := url.Parse(o.URL)
	if err != nil {
		return fmt.Errorf("webhook url %q: %w", o.URL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("webhook url %q: must be absolute", o.URL)
	}
	if o.SecretToken != "" {
		if err := CheckSecretToken(o.SecretToken); err != nil {
			return err
		}
	}
	if o.MaxBodySize < 0 {
		return fmt.Errorf("max body size must not be negative")
	}
	if o.MaxBodySize == 0 {
		o.MaxBodySize = DefaultMaxBodySize
	}
	if o.Logger == nil {
		o.Logger = slog.Default().With(slog.String("component", "webhook"))
	}
	return nil
}

// CheckSecretToken reports whether s is a well-formed secret token: 1-256
// characters, each of [A-Za-z0-9_-].
func CheckSecretToken(s string) error {
	if len(s) == 0 || len(s) > 256 {
		return fmt.Errorf("secret token must be 1-256 characters, got %d", len(s))
	}
	for _, c := range []byte(s) {
		ok := c == '_' || c == '-' ||
			(c >= '0' && c <= '9') ||
			(c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z')
		if !ok {
			return fmt.Errorf("secret token contains forbidden character %q", c)
		}
	}
	return nil
}

// GenerateSecretToken returns a random token suitable for
// Options.SecretToken.
func GenerateSecretToken() string {
	raw := uuid.NewString() + uuid.NewString()
	return strings.ReplaceAll(raw, "-", "")
}
