package toolset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kimi-cli/kimi/pkg/approval"
)

func TestWatchMCPConfigStartAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers":{}}`), 0o600))

	ts := New()
	r, err := WatchMCPConfig(t.Context(), path, ts, approval.NewGate(approval.WithYOLO(true)))
	require.NoError(t, err)
	require.NoError(t, r.Close())
}

func TestWatchMCPConfigRejectsBrokenConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers":{"x":{}}}`), 0o600))

	ts := New()
	_, err := WatchMCPConfig(t.Context(), path, ts, approval.NewGate(approval.WithYOLO(true)))
	require.Error(t, err)
}
