package webhook

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosableSender_GetAndSendWhileOpen(t *testing.T) {
	ch := make(chan int, 1)
	s := NewClosableSender[int](ch)

	got, open := s.Get()
	require.True(t, open)
	require.NotNil(t, got)

	require.True(t, s.Send(42))
	assert.Equal(t, 42, <-ch)
}

func TestClosableSender_CloseVisibleToAllHolders(t *testing.T) {
	ch := make(chan int)
	s := NewClosableSender[int](ch)
	holder := s // shared before the close

	s.Close()

	_, open := s.Get()
	assert.False(t, open)
	_, open = holder.Get()
	assert.False(t, open)
	assert.False(t, holder.Send(1))

	// The underlying channel is sealed too.
	_, more := <-ch
	assert.False(t, more)
}

func TestClosableSender_CloseIdempotent(t *testing.T) {
	s := NewClosableSender[int](make(chan int))
	s.Close()
	assert.NotPanics(t, func() { s.Close() })
}

func TestClosableSender_ConcurrentGetsAndClose(t *testing.T) {
	ch := make(chan int, 16)
	s := NewClosableSender[int](ch)
	go func() {
		for range ch {
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.Send(1)
				s.Get()
			}
		}()
	}

	time.Sleep(time.Millisecond)
	s.Close()
	wg.Wait()

	_, open := s.Get()
	assert.False(t, open)
}
