// Package logging builds the slog loggers the rest of the module shares.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger on Stderr at the given level. Stdout stays
// free for chat prompts and JSON-RPC. Error values logged under the
// "error" key are renamed to "err" so every component reports failures
// under one attribute name.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a logger that discards everything. Library components
// default to it so logging is strictly opt-in.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
