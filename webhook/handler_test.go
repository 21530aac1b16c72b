package webhook

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veetaha/teloxide/updates"
)

// newTestLogger returns a logger writing JSON lines into the returned buffer.
func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), &buf
}

func testOptions(secret string) (Options, *bytes.Buffer) {
	logger, buf := newTestLogger()
	return Options{
		Address:     "127.0.0.1:0",
		URL:         "https://example.com/webhook",
		SecretToken: secret,
		Logger:      logger,
	}, buf
}

func postUpdate(t *testing.T, router http.Handler, secret, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(SecretTokenHeader, secret)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func receiveUpdate(t *testing.T, l *updates.Listener) updates.Update {
	t.Helper()
	select {
	case upd, ok := <-l.Updates():
		require.True(t, ok, "update channel closed early")
		return upd
	case <-time.After(2 * time.Second):
		t.Fatal("no update produced")
		return updates.Update{}
	}
}

func TestHandle_AcceptsValidUpdate(t *testing.T) {
	opts, _ := testOptions("")
	listener, _, router := NoSetup(opts)
	defer listener.Stop()

	rec := postUpdate(t, router, "", `{"update_id":1,"message":{"text":"hi"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	upd := receiveUpdate(t, listener)
	assert.Equal(t, int64(1), upd.ID)
	assert.Equal(t, "message", upd.Kind)
}

func TestHandle_PreservesArrivalOrder(t *testing.T) {
	opts, _ := testOptions("")
	listener, _, router := NoSetup(opts)
	defer listener.Stop()

	// Valid and malformed interleaved; only the parsed subset survives.
	for i := 1; i <= 5; i++ {
		rec := postUpdate(t, router, "", fmt.Sprintf(`{"update_id":%d}`, i))
		require.Equal(t, http.StatusOK, rec.Code)
		if i%2 == 0 {
			rec := postUpdate(t, router, "", `{"broken`)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	}

	for i := 1; i <= 5; i++ {
		assert.Equal(t, int64(i), receiveUpdate(t, listener).ID)
	}
}

func TestHandle_SecretMismatchIs401(t *testing.T) {
	opts, _ := testOptions("abc")
	listener, _, router := NoSetup(opts)
	defer listener.Stop()

	rec := postUpdate(t, router, "xyz", `{"update_id":1}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	select {
	case upd := <-listener.Updates():
		t.Fatalf("unauthorized request reached the queue: %+v", upd)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandle_SecretRequiredButAbsentIs401(t *testing.T) {
	opts, _ := testOptions("abc")
	listener, _, router := NoSetup(opts)
	defer listener.Stop()

	rec := postUpdate(t, router, "", `{"update_id":1}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandle_UnexpectedSecretHeaderIs401(t *testing.T) {
	opts, _ := testOptions("")
	listener, _, router := NoSetup(opts)
	defer listener.Stop()

	rec := postUpdate(t, router, "abc", `{"update_id":1}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandle_MatchingSecretIs200(t *testing.T) {
	opts, _ := testOptions("abc")
	listener, _, router := NoSetup(opts)
	defer listener.Stop()

	rec := postUpdate(t, router, "abc", `{"update_id":9}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(9), receiveUpdate(t, listener).ID)
}

func TestHandle_MalformedBodyIs200AndLoggedOnce(t *testing.T) {
	opts, buf := testOptions("")
	listener, _, router := NoSetup(opts)
	defer listener.Stop()

	rec := postUpdate(t, router, "", `{"not json`)
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case upd := <-listener.Updates():
		t.Fatalf("malformed body reached the queue: %+v", upd)
	case <-time.After(50 * time.Millisecond):
	}

	logged := buf.String()
	assert.Equal(t, 1, strings.Count(logged, "cannot parse an update"))
	assert.Contains(t, logged, `{\"not json`)
}

func TestHandle_AfterStopIs503AndChannelCloses(t *testing.T) {
	opts, _ := testOptions("")
	listener, _, router := NoSetup(opts)

	listener.Stop()

	rec := postUpdate(t, router, "", `{"update_id":1}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// The producer side is sealed, so the stream ends once drained.
	select {
	case upd, more := <-listener.Updates():
		assert.False(t, more, "unexpected update after stop: %+v", upd)
	case <-time.After(2 * time.Second):
		t.Fatal("update channel never closed after stop")
	}
}

func TestHandle_DeliversBufferedUpdatesAfterStop(t *testing.T) {
	opts, _ := testOptions("")
	listener, _, router := NoSetup(opts)

	for i := 1; i <= 3; i++ {
		rec := postUpdate(t, router, "", fmt.Sprintf(`{"update_id":%d}`, i))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	listener.Stop()

	// Already-accepted updates survive the stop.
	for i := 1; i <= 3; i++ {
		assert.Equal(t, int64(i), receiveUpdate(t, listener).ID)
	}
	_, more := <-listener.Updates()
	assert.False(t, more)
}

func TestHandle_OversizedBodyIsDropped(t *testing.T) {
	opts, buf := testOptions("")
	opts.MaxBodySize = 64
	listener, _, router := NoSetup(opts)
	defer listener.Stop()

	big := `{"update_id":1,"message":{"text":"` + strings.Repeat("x", 256) + `"}}`
	rec := postUpdate(t, router, "", big)
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-listener.Updates():
		t.Fatal("oversized body reached the queue")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Contains(t, buf.String(), "dropping unreadable update body")
}

func TestNoSetup_PanicsOnInvalidOptions(t *testing.T) {
	assert.Panics(t, func() {
		NoSetup(Options{URL: "not an absolute url"})
	})
}

func TestNoSetup_StopFlagResolves(t *testing.T) {
	opts, _ := testOptions("")
	listener, flag, _ := NoSetup(opts)

	assert.False(t, flag.IsStopped())
	listener.Stop()
	assert.True(t, flag.IsStopped())

	select {
	case <-flag.Done():
	case <-time.After(time.Second):
		t.Fatal("stop flag never resolved")
	}
}
