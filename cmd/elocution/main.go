// Command elocution is the entry point for the Elocution pronunciation
// assessment service.
//
// Usage:
//
//	elocution serve  [-config path] [-listen addr]
//	elocution assess [-config path] [-pretty] [file|-]
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrWong99/elocution/internal/config"
)

const usage = `usage: elocution <command> [flags]

commands:
  serve    run the HTTP assessment API
  assess   score a JSON request (or array of requests) from a file or stdin

run "elocution <command> -h" for command flags
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "serve":
		return runServe(ctx, args[1:], stderr)
	case "assess":
		return runAssess(ctx, args[1:], stdin, stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "elocution: unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

// slogLevel maps a configured level to its slog equivalent. Unset means info.
func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger returns a text logger on w whose level follows lvl, so a config
// reload can change verbosity without replacing the logger.
func newLogger(w io.Writer, lvl slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
