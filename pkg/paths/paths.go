// Package paths resolves the directories kimi keeps state in.
package paths

import (
	"os"
	"path/filepath"
)

// DataDir returns the directory holding sessions, metadata and logs.
// KIMI_DATA_DIR overrides the default ~/.kimi.
func DataDir() string {
	if dir := os.Getenv("KIMI_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kimi"
	}
	return filepath.Join(home, ".kimi")
}
