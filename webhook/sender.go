package webhook

import "sync"

// ClosableSender wraps the producer half of the update queue so it can be
// invalidated from outside the request handlers that use it. The underlying
// channel has no remote-close operation of its own; this wrapper adds one,
// letting ingestion be shut off even while the HTTP surface is still
// reachable.
//
// Share a ClosableSender by copying the pointer; once Close is called, every
// holder observes closure.
type ClosableSender[T any] struct {
	mu sync.RWMutex
	ch chan<- T
}

// NewClosableSender wraps one open producer handle.
func NewClosableSender[T any](ch chan<- T) *ClosableSender[T] {
	return &ClosableSender[T]{ch: ch}
}

// Get returns the producer handle, or false if the sender has been closed.
// Concurrent Gets never block each other.
func (s *ClosableSender[T]) Get() (chan<- T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ch, s.ch != nil
}

// Send enqueues v if the sender is still open and reports whether it did.
// The send happens under the read lock, so a concurrent Close waits for it
// to finish before sealing the channel.
func (s *ClosableSender[T]) Send(v T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ch == nil {
		return false
	}
	s.ch <- v
	return true
}

// Close seals the sender and closes the underlying channel. No send can be
// in flight once the write lock is held, so closing here is safe. Closing an
// already-closed sender is a no-op.
func (s *ClosableSender[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil {
		close(s.ch)
		s.ch = nil
	}
}
