package updates

import "github.com/Veetaha/teloxide/stop"

// Listener exposes a stream of ingested updates together with the stop token
// that cancels it.
//
// The stream suspends until an update is available and ends naturally once
// the producer side has been closed and every buffered update has been
// consumed. Calling Stop does not truncate the stream: updates already
// accepted are still delivered.
type Listener struct {
	updates <-chan Update
	token   stop.Token
}

// NewListener wraps a consumer channel and its stop token.
func NewListener(updates <-chan Update, token stop.Token) *Listener {
	return &Listener{updates: updates, token: token}
}

// Updates returns the consumer half of the update queue. The channel is
// closed once the listener has stopped and drained.
func (l *Listener) Updates() <-chan Update {
	return l.updates
}

// Stop cancels the listener. Idempotent.
func (l *Listener) Stop() {
	l.token.Stop()
}

// StopToken returns a copy of the listener's stop token, for callers that
// hand cancellation authority to another component.
func (l *Listener) StopToken() stop.Token {
	return l.token
}
