package webhook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Path(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/webhook", "/webhook"},
		{"https://example.com/bot/updates", "/bot/updates"},
		{"https://example.com", "/"},
		{"", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Options{URL: tt.url}.Path(), "url %q", tt.url)
	}
}

func TestOptions_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "valid", opts: Options{URL: "https://example.com/hook"}},
		{name: "relative url", opts: Options{URL: "/hook"}, wantErr: true},
		{name: "empty url", opts: Options{}, wantErr: true},
		{name: "bad secret", opts: Options{URL: "https://example.com/h", SecretToken: "no spaces allowed"}, wantErr: true},
		{name: "negative body size", opts: Options{URL: "https://example.com/h", MaxBodySize: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.normalize()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(DefaultMaxBodySize), tt.opts.MaxBodySize)
			assert.NotNil(t, tt.opts.Logger)
		})
	}
}

func TestCheckSecretToken(t *testing.T) {
	assert.NoError(t, CheckSecretToken("abc_DEF-123"))
	assert.Error(t, CheckSecretToken(""))
	assert.Error(t, CheckSecretToken(strings.Repeat("a", 257)))
	assert.Error(t, CheckSecretToken("with space"))
	assert.Error(t, CheckSecretToken("ünïcode"))
}

func TestGenerateSecretToken(t *testing.T) {
	a := GenerateSecretToken()
	b := GenerateSecretToken()

	assert.NoError(t, CheckSecretToken(a))
	assert.NotEqual(t, a, b)
}
