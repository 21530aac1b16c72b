// Package stop provides a single-fire, multi-observer cancellation primitive
// used to stop update listeners and coordinate graceful shutdown.
//
// A Token/Flag pair shares one latch: the Token side fires it, any number of
// Flag copies observe it. The transition happens at most once; every call to
// Stop after the first is a no-op.
package stop

import (
	"sync"
	"sync/atomic"
)

type latch struct {
	once    sync.Once
	stopped atomic.Bool
	done    chan struct{}
}

// Token is the trigger half of a stop pair. Copies share the same latch.
type Token struct {
	l *latch
}

// Flag is the observer half of a stop pair. Copies share the same latch.
type Flag struct {
	l *latch
}

// NewPair creates a connected Token/Flag pair.
func NewPair() (Token, Flag) {
	l := &latch{done: make(chan struct{})}
	return Token{l: l}, Flag{l: l}
}

// Stop fires the latch. It is safe to call from any goroutine and safe to
// call repeatedly; only the first call has an effect.
func (t Token) Stop() {
	t.l.once.Do(func() {
		t.l.stopped.Store(true)
		close(t.l.done)
	})
}

// Flag returns an observer for this token's latch.
func (t Token) Flag() Flag {
	return Flag{l: t.l}
}

// IsStopped reports whether Stop has been called. It never blocks.
func (f Flag) IsStopped() bool {
	return f.l.stopped.Load()
}

// Done returns a channel that is closed once Stop is called. Waiting on it is
// the mechanism used for graceful-shutdown coordination.
func (f Flag) Done() <-chan struct{} {
	return f.l.done
}
