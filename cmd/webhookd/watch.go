package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veetaha/teloxide/botapi"
	"github.com/Veetaha/teloxide/internal/config"
	"github.com/Veetaha/teloxide/internal/tui/watch"
	"github.com/Veetaha/teloxide/webhook"
)

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "webhookd.yaml", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	client, err := botapi.New(botapi.Config{Token: cfg.BotToken, BaseURL: cfg.APIBase})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	opts, _, err := webhookOptions(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	// The TUI owns the terminal; keep request logs out of it.
	opts.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	opts.Metrics = nil

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Fully managed: register, serve in the background, deregister on stop.
	listener, err := webhook.Listen(ctx, client, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	go func() {
		<-ctx.Done()
		listener.Stop()
	}()

	program := tea.NewProgram(watch.New(listener, cfg.URL))
	if _, err := program.Run(); err != nil {
		listener.Stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	listener.Stop()
	return 0
}
