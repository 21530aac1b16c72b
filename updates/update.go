// Package updates defines the inbound update payload and the listener
// abstraction that exposes ingested updates as a cancellable stream.
package updates

import (
	"encoding/json"
	"fmt"
)

// Update is one event pushed by the bot API. The payload is kept opaque
// beyond the identifier; consumers that care about the contents decode Raw
// themselves.
type Update struct {
	// ID is the update_id assigned by the remote API. IDs of updates
	// delivered over one webhook are strictly increasing.
	ID int64

	// Kind names the single payload field carried by this update
	// ("message", "callback_query", ...). Empty when the payload carries
	// nothing besides update_id.
	Kind string

	// Raw is the update exactly as received.
	Raw json.RawMessage
}

// Parse decodes an update from a webhook request body. The body must be a
// JSON object carrying a numeric update_id; everything else is preserved
// verbatim in Raw.
func Parse(body []byte) (Update, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Update{}, fmt.Errorf("decode update: %w", err)
	}

	rawID, ok := fields["update_id"]
	if !ok {
		return Update{}, fmt.Errorf("decode update: missing update_id")
	}

	var id int64
	if err := json.Unmarshal(rawID, &id); err != nil {
		return Update{}, fmt.Errorf("decode update_id: %w", err)
	}

	kind := ""
	for name := range fields {
		if name != "update_id" {
			kind = name
			break
		}
	}

	raw := make(json.RawMessage, len(body))
	copy(raw, body)

	return Update{ID: id, Kind: kind, Raw: raw}, nil
}
