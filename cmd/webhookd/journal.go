package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Veetaha/teloxide/internal/config"
	"github.com/Veetaha/teloxide/internal/journal"
)

func runJournal(args []string) int {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	configPath := fs.String("config", "webhookd.yaml", "path to config file")
	limit := fs.Int("limit", 20, "number of entries to show")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if cfg.Journal == "" {
		fmt.Fprintln(os.Stderr, "Error: no journal configured")
		return 1
	}

	ctx := context.Background()
	j, err := journal.Open(ctx, cfg.Journal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer j.Close()

	entries, err := j.Recent(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if len(entries) == 0 {
		fmt.Println("journal is empty")
		return 0
	}

	for _, e := range entries {
		kind := e.Kind
		if kind == "" {
			kind = "-"
		}
		fmt.Printf("%s  update=%d  kind=%-16s  %d bytes\n",
			e.ReceivedAt.Format("2006-01-02 15:04:05"), e.UpdateID, kind, len(e.Body))
	}
	return 0
}
