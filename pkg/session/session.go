// Package session tracks per-workdir sessions and where their wire logs
// live on disk.
package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Session binds a work directory to the files recording one conversation.
type Session struct {
	// ID is the session's uuid.
	ID string
	// WorkDir is the canonical absolute path of the work directory.
	WorkDir string
	// WireFile is the JSONL file the wire recorder appends to.
	WireFile string
}

// Create starts a fresh session for workDir and records it as the
// directory's latest. An existing wire file at the computed path is
// truncated so the new session never replays stale history.
func Create(dataDir, workDir string) (*Session, error) {
	workDir, err := canonical(workDir)
	if err != nil {
		return nil, err
	}
	slog.Debug("Creating new session", "work_dir", workDir)

	meta, err := loadMetadata(dataDir)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	sessionDir := filepath.Join(meta.workDirSessions(dataDir, workDir), id)
	if err := os.MkdirAll(sessionDir, 0o700); err != nil {
		return nil, err
	}

	wireFile := filepath.Join(sessionDir, "wire.jsonl")
	if _, err := os.Stat(wireFile); err == nil {
		slog.Warn("Wire file already exists, truncating", "path", wireFile)
		if err := os.Truncate(wireFile, 0); err != nil {
			return nil, err
		}
	}

	meta.setLastSession(workDir, id)
	if err := saveMetadata(dataDir, meta); err != nil {
		return nil, err
	}

	return &Session{ID: id, WorkDir: workDir, WireFile: wireFile}, nil
}

// Continue returns the latest session of workDir, or nil when the directory
// has no session history.
func Continue(dataDir, workDir string) (*Session, error) {
	workDir, err := canonical(workDir)
	if err != nil {
		return nil, err
	}
	slog.Debug("Continuing session", "work_dir", workDir)

	meta, err := loadMetadata(dataDir)
	if err != nil {
		return nil, err
	}
	id := meta.lastSession(workDir)
	if id == "" {
		slog.Debug("Work directory has no previous session", "work_dir", workDir)
		return nil, nil
	}

	wireFile := filepath.Join(meta.workDirSessions(dataDir, workDir), id, "wire.jsonl")
	return &Session{ID: id, WorkDir: workDir, WireFile: wireFile}, nil
}

func canonical(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("work directory %q: %w", dir, err)
	}
	return resolved, nil
}
