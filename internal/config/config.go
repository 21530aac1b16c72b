// Package config loads the webhookd YAML configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veetaha/teloxide/webhook"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// DefaultMaxBodySize mirrors webhook.DefaultMaxBodySize for configs that
// leave the field empty.
const DefaultMaxBodySize = webhook.DefaultMaxBodySize

// Config is the daemon configuration.
type Config struct {
	// Listen is the local bind address for the HTTP surface.
	Listen string `yaml:"listen"`

	// URL is the public webhook URL registered with the Bot API.
	URL string `yaml:"url"`

	// SecretToken protects the webhook route. Usually provided via
	// environment expansion, e.g. "${WEBHOOK_SECRET}".
	SecretToken string `yaml:"secret_token,omitempty"`

	// BotToken authenticates against the Bot API.
	BotToken string `yaml:"bot_token"`

	// APIBase overrides the Bot API endpoint (local Bot API servers).
	APIBase string `yaml:"api_base,omitempty"`

	// AllowedUpdates restricts which update kinds the API delivers.
	AllowedUpdates []string `yaml:"allowed_updates,omitempty"`

	// DropPendingUpdates discards updates queued before startup.
	DropPendingUpdates bool `yaml:"drop_pending_updates,omitempty"`

	// MaxBodySize caps request bodies, e.g. "1MB" or "262144".
	MaxBodySize string `yaml:"max_body_size,omitempty"`

	// Journal, when set, is the path of the SQLite update journal.
	Journal string `yaml:"journal,omitempty"`

	// Metrics exposes Prometheus counters on /metrics when true.
	Metrics bool `yaml:"metrics,omitempty"`

	// LogLevel is DEBUG, INFO, WARN or ERROR. Defaults to INFO.
	LogLevel string `yaml:"log_level,omitempty"`

	// Fingerprint is the BLAKE3 hash of the loaded file, recorded at load
	// time for integrity logging. Not part of the file itself.
	Fingerprint string `yaml:"-"`
}

// Load reads, env-expands and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", path)
	}

	expanded, err := expandEnv(string(data))
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Fingerprint, err = FileFingerprint(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.URL == "" {
		return fmt.Errorf("webhook url is required")
	}
	if c.BotToken == "" {
		return fmt.Errorf("bot_token is required")
	}
	if c.SecretToken != "" {
		if err := webhook.CheckSecretToken(c.SecretToken); err != nil {
			return err
		}
	}
	if _, err := c.MaxBodyBytes(); err != nil {
		return err
	}
	return nil
}

// MaxBodyBytes parses MaxBodySize into bytes. Empty means the default.
func (c *Config) MaxBodyBytes() (int64, error) {
	return parseSize(c.MaxBodySize)
}

// expandEnv substitutes ${VAR} references. Referencing an unset variable is
// an error rather than a silent empty string.
func expandEnv(s string) (string, error) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		val, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
			return match
		}
		return val
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unset environment variables referenced in config: %s",
			strings.Join(missing, ", "))
	}
	return out, nil
}

// parseSize parses size strings like "1MB", "512KB" or "262144" to bytes.
func parseSize(size string) (int64, error) {
	if size == "" {
		return DefaultMaxBodySize, nil
	}

	upper := strings.ToUpper(strings.TrimSpace(size))
	multiplier := int64(1)
	switch {
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1024
		upper = strings.TrimSuffix(upper, "KB")
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1024 * 1024
		upper = strings.TrimSuffix(upper, "MB")
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1024 * 1024 * 1024
		upper = strings.TrimSuffix(upper, "GB")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(upper), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid max_body_size %q: %w", size, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("max_body_size must be positive")
	}
	result := value * multiplier
	if result < 0 {
		return 0, fmt.Errorf("max_body_size too large")
	}
	return result, nil
}
