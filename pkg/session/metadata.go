package session

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// metadata is the on-disk index of work directories. It lives at
// <dataDir>/metadata.json and maps each canonical work directory to its
// bookkeeping entry.
type metadata struct {
	WorkDirs map[string]*workDirMeta `json:"workDirs"`
}

type workDirMeta struct {
	LastSessionID string `json:"lastSessionId,omitempty"`
}

func metadataPath(dataDir string) string {
	return filepath.Join(dataDir, "metadata.json")
}

func loadMetadata(dataDir string) (*metadata, error) {
	data, err := os.ReadFile(metadataPath(dataDir))
	if os.IsNotExist(err) {
		return &metadata{WorkDirs: map[string]*workDirMeta{}}, nil
	}
	if err != nil {
		return nil, err
	}
	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	if meta.WorkDirs == nil {
		meta.WorkDirs = map[string]*workDirMeta{}
	}
	return &meta, nil
}

// saveMetadata writes the index atomically so a crash mid-write never
// leaves a truncated metadata.json behind.
func saveMetadata(dataDir string, meta *metadata) error {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(metadataPath(dataDir), bytes.NewReader(data))
}

func (m *metadata) lastSession(workDir string) string {
	entry, ok := m.WorkDirs[workDir]
	if !ok {
		return ""
	}
	return entry.LastSessionID
}

func (m *metadata) setLastSession(workDir, sessionID string) {
	entry, ok := m.WorkDirs[workDir]
	if !ok {
		entry = &workDirMeta{}
		m.WorkDirs[workDir] = entry
	}
	entry.LastSessionID = sessionID
}

// workDirSessions returns the directory holding all sessions of a work
// directory. The path segment is a digest of the canonical path, which
// keeps arbitrary workdir paths out of the filesystem layout.
func (m *metadata) workDirSessions(dataDir, workDir string) string {
	sum := sha256.Sum256([]byte(workDir))
	return filepath.Join(dataDir, "sessions", hex.EncodeToString(sum[:8]))
}
