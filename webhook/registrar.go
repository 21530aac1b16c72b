package webhook

import "context"

// SetWebhookParams is the registration payload sent to the remote API.
type SetWebhookParams struct {
	URL                string
	SecretToken        string
	AllowedUpdates     []string
	MaxConnections     int
	DropPendingUpdates bool
}

// Registrar is the remote API's webhook lifecycle surface. Registration
// errors are the client's own error type; this package introduces none of
// its own.
type Registrar interface {
	// SetWebhook registers the public URL, so the remote API starts pushing
	// updates our way.
	SetWebhook(ctx context.Context, params SetWebhookParams) error

	// DeleteWebhook deregisters the URL, switching the remote API back to
	// its passive mode.
	DeleteWebhook(ctx context.Context) error
}
