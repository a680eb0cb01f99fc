package cli

// logger.go - Structured logger construction for commands.

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// newCommandLogger creates the logger commands hand down the stack.
// When stderr is a terminal, text lines keep the output readable; when
// it is piped or redirected (CI, cron), JSON keeps it machine-parseable.
func newCommandLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
