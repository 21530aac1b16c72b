package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Veetaha/teloxide/botapi"
	"github.com/Veetaha/teloxide/internal/config"
	"github.com/Veetaha/teloxide/internal/journal"
	"github.com/Veetaha/teloxide/internal/log"
	"github.com/Veetaha/teloxide/internal/metrics"
	"github.com/Veetaha/teloxide/webhook"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "webhookd.yaml", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := config.VerifyChecksumFile(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: config integrity check failed: %v\n", err)
		return 1
	}

	log.Setup(cfg.LogLevel)
	logger := log.WithComponent("webhookd")
	logger.Info("starting", "version", version, "config", *configPath, "fingerprint", cfg.Fingerprint)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("webhookd failed", "error", err)
		return 1
	}
	logger.Info("webhookd stopped")
	return 0
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client, err := botapi.New(botapi.Config{Token: cfg.BotToken, BaseURL: cfg.APIBase})
	if err != nil {
		return err
	}

	opts, m, err := webhookOptions(cfg)
	if err != nil {
		return err
	}

	var j *journal.Journal
	if cfg.Journal != "" {
		j, err = journal.Open(ctx, cfg.Journal)
		if err != nil {
			return err
		}
		defer j.Close()
		logger.Info("journal enabled", "path", cfg.Journal)
	}

	// The reusable layer, so health and metrics routes can share the
	// webhook's server.
	listener, deregistered, router, err := webhook.ToRouter(ctx, client, opts)
	if err != nil {
		return err
	}
	logger.Info("webhook registered", "url", cfg.URL)

	root := chi.NewRouter()
	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if m != nil {
		root.Method(http.MethodGet, "/metrics", m.Handler())
	}
	root.Mount("/", router)

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      root,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stopFlag := listener.StopToken().Flag()
	go func() {
		<-stopFlag.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			listener.Stop()
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		listener.Stop()
	}()

	logger.Info("listening for updates", "addr", cfg.Listen, "path", opts.Path())
	for upd := range listener.Updates() {
		log.WithUpdate(upd.ID).Info("update received", "kind", upd.Kind, "bytes", len(upd.Raw))
		if j != nil {
			if err := j.Record(context.Background(), upd); err != nil {
				logger.Error("journal write failed", "error", err)
			}
		}
	}

	// Wait for the deregistration attempt before exiting.
	<-deregistered

	select {
	case err := <-serveErr:
		return fmt.Errorf("webhook server: %w", err)
	default:
		return nil
	}
}

func webhookOptions(cfg *config.Config) (webhook.Options, *metrics.Metrics, error) {
	maxBody, err := cfg.MaxBodyBytes()
	if err != nil {
		return webhook.Options{}, nil, err
	}

	var m *metrics.Metrics
	if cfg.Metrics {
		m = metrics.New()
	}

	return webhook.Options{
		Address:            cfg.Listen,
		URL:                cfg.URL,
		SecretToken:        cfg.SecretToken,
		AllowedUpdates:     cfg.AllowedUpdates,
		DropPendingUpdates: cfg.DropPendingUpdates,
		MaxBodySize:        maxBody,
		Logger:             log.WithComponent("webhook"),
		Metrics:            m,
	}, m, nil
}
