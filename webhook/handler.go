package webhook

import (
	"crypto/subtle"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Veetaha/teloxide/internal/metrics"
	"github.com/Veetaha/teloxide/stop"
	"github.com/Veetaha/teloxide/updates"
)

// NoSetup builds the webhook surface without performing any remote-API
// calls: the update listener, the stop flag that resolves once the listener
// is stopped, and the router serving the single POST route.
//
// The caller is responsible for running the router and for registering the
// webhook with the remote API. Note that even if the returned flag is never
// awaited, the listener stops producing updates as soon as its stop token
// fires.
//
// Panics if opts is invalid; ToRouter and Listen validate first and return
// the error instead.
func NoSetup(opts Options) (*updates.Listener, stop.Flag, chi.Router) {
	if err := opts.normalize(); err != nil {
		panic("webhook: invalid options: " + err.Error())
	}

	in, out := newUnbounded[updates.Update]()
	sender := NewClosableSender(in)
	token, flag := stop.NewPair()

	// Seal the producer as soon as the listener is stopped. Requests still
	// holding the read lock finish their sends; everything after gets 503.
	go func() {
		<-flag.Done()
		sender.Close()
	}()

	h := &ingestHandler{
		secret:  opts.SecretToken,
		maxBody: opts.MaxBodySize,
		sender:  sender,
		flag:    flag,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Post(opts.Path(), h.handle)

	return updates.NewListener(out, token), flag, r
}

// ingestHandler is the per-request ingestion state machine: secret check,
// availability check, parse-and-enqueue.
type ingestHandler struct {
	secret  string
	maxBody int64
	sender  *ClosableSender[updates.Update]
	flag    stop.Flag
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func (h *ingestHandler) handle(w http.ResponseWriter, r *http.Request) {
	// The secret header never travels further than this check.
	header := r.Header.Get(SecretTokenHeader)
	r.Header.Del(SecretTokenHeader)

	if !secretMatches(h.secret, header) {
		h.metrics.ObserveRequest(metrics.OutcomeUnauthorized)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if _, open := h.sender.Get(); !open {
		h.metrics.ObserveRequest(metrics.OutcomeUnavailable)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if h.flag.IsStopped() {
		// The server may still be reachable after the listener stopped;
		// make sure no later request can slip an update through.
		h.sender.Close()
		h.metrics.ObserveRequest(metrics.OutcomeUnavailable)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody+1))
	if err != nil || int64(len(body)) > h.maxBody {
		// A broken or oversized body is dropped like a malformed one: a
		// failure status would make the remote API retry and storm the
		// endpoint.
		h.logger.Warn("dropping unreadable update body",
			"error", err,
			"bytes", len(body),
			"request_id", middleware.GetReqID(r.Context()),
		)
		h.metrics.ObserveRequest(metrics.OutcomeMalformed)
		w.WriteHeader(http.StatusOK)
		return
	}

	upd, err := updates.Parse(body)
	if err != nil {
		h.logger.Error("cannot parse an update",
			"error", err,
			"body", string(body),
			"request_id", middleware.GetReqID(r.Context()),
		)
		h.metrics.ObserveRequest(metrics.OutcomeMalformed)
		w.WriteHeader(http.StatusOK)
		return
	}

	if !h.sender.Send(upd) {
		// Sender was sealed between the availability check and the send.
		h.metrics.ObserveRequest(metrics.OutcomeUnavailable)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	h.metrics.ObserveRequest(metrics.OutcomeAccepted)
	w.WriteHeader(http.StatusOK)
}

// secretMatches compares the configured secret against the request header in
// constant time. Both sides empty is a valid "no authentication" setup.
func secretMatches(configured, header string) bool {
	return subtle.ConstantTimeCompare([]byte(configured), []byte(header)) == 1
}

// requestLogger logs each request after it completes. Bodies are never
// logged here; only the parse failure path records payloads.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Debug("webhook request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}
