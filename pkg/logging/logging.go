// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
)

// Setup installs the default logger. Interactive runs (stderr is a terminal)
// get human-readable text on stderr; otherwise logs go as JSON lines to a
// rotating file under dir so they never interleave with the UI stream. The
// returned closer is non-nil when a file was opened.
func Setup(dir string, debug bool) (io.Closer, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil, nil
	}

	w, err := NewRotatingWriter(filepath.Join(dir, "kimi.log"), defaultMaxBytes, defaultBackups)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
	return w, nil
}

// Discard silences all logging. Used by commands whose stdout is a data
// stream that must stay clean.
func Discard() {
	slog.SetDefault(slog.New(slog.DiscardHandler))
}
