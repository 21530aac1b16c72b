package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "serve":
		os.Exit(runServe(args))
	case "watch":
		os.Exit(runWatch(args))
	case "journal":
		os.Exit(runJournal(args))
	case "version":
		fmt.Println(versionString())
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func versionString() string {
	return fmt.Sprintf("webhookd version %s", version)
}

func printUsage() {
	fmt.Print(`webhookd - Telegram webhook update listener daemon

Usage:
  webhookd <command> [flags]

Commands:
  serve             Register the webhook and ingest updates in foreground
  watch             Like serve, but tail incoming updates in a TUI
  journal           Show recently journaled updates
  version           Show version information
  help              Show this help message

Flags (serve, watch):
  --config PATH     Path to the YAML config file (default: webhookd.yaml)

Flags (journal):
  --config PATH     Path to the YAML config file (default: webhookd.yaml)
  --limit N         Number of entries to show (default: 20)
`)
}
