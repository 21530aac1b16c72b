package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Veetaha/teloxide/stop"
	"github.com/Veetaha/teloxide/updates"
)

const (
	shutdownTimeout   = 5 * time.Second
	deregisterTimeout = 10 * time.Second
)

// ToRouter builds the webhook surface and coordinates it with the remote
// API: it registers the webhook before returning and schedules
// deregistration to run once the listener is stopped.
//
// The returned done channel closes after deregistration has been attempted;
// deregistration failures are logged, never escalated. The caller runs the
// returned router on a server bound to opts.Address, ideally with graceful
// shutdown tied to the listener's stop flag. This is the layer to use when
// the webhook route shares a server with other routes.
func ToRouter(ctx context.Context, reg Registrar, opts Options) (*updates.Listener, <-chan struct{}, chi.Router, error) {
	if err := opts.normalize(); err != nil {
		return nil, nil, nil, err
	}

	err := reg.SetWebhook(ctx, SetWebhookParams{
		URL:                opts.URL,
		SecretToken:        opts.SecretToken,
		AllowedUpdates:     opts.AllowedUpdates,
		MaxConnections:     opts.MaxConnections,
		DropPendingUpdates: opts.DropPendingUpdates,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("set webhook: %w", err)
	}

	listener, flag, router := NoSetup(opts)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-flag.Done()

		dctx, cancel := context.WithTimeout(context.Background(), deregisterTimeout)
		defer cancel()
		if err := reg.DeleteWebhook(dctx); err != nil {
			// Best effort: the listener has already settled, the consumer
			// has received whatever it will receive.
			opts.Logger.Error("couldn't delete webhook", "error", err)
		}
	}()

	return listener, done, router, nil
}

// Listen is the fully managed entry point. It does everything needed for a
// webhook to work:
//
//   - registers the webhook, so the remote API starts pushing updates our way
//   - binds opts.Address and serves the router on a background goroutine
//   - shuts the server down gracefully and deregisters once the listener is
//     stopped
//
// Registration failure is returned before any server is started. A server
// bind or run failure after that stops the listener and panics: the server
// is load-bearing for the whole process and is not restarted.
func Listen(ctx context.Context, reg Registrar, opts Options) (*updates.Listener, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	listener, done, router, err := ToRouter(ctx, reg, opts)
	if err != nil {
		return nil, err
	}

	token := listener.StopToken()
	runServer(opts, router, token, done)
	return listener, nil
}

// runServer serves the router until the stop flag resolves, then drains
// in-flight requests and waits for the deregistration attempt.
func runServer(opts Options, router chi.Router, token stop.Token, deregistered <-chan struct{}) {
	srv := &http.Server{
		Addr:         opts.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	flag := token.Flag()

	go func() {
		<-flag.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			opts.Logger.Error("webhook server shutdown failed", "error", err)
		}
		<-deregistered
	}()

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			token.Stop()
			opts.Logger.Error("webhook server failed", "error", err)
			panic(fmt.Sprintf("webhook server: %v", err))
		}
	}()
}
