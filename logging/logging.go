// Package logging builds the slog logger used by the wikigame commands.
// Debug records may contain spoilers (article titles), so they are only
// emitted in verbose mode.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w. Verbose lowers the level from Info
// to Debug.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
