package toolset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kimi-cli/kimi/pkg/approval"
	"github.com/kimi-cli/kimi/pkg/mcp"
)

// MCPError wraps a failure to bring up the servers of one MCP config file.
type MCPError struct {
	Path string
	Err  error
}

func (e MCPError) Error() string {
	return fmt.Sprintf("loading MCP config %q: %v", e.Path, e.Err)
}

func (e MCPError) Unwrap() error { return e.Err }

// LoadMCPConfig connects the servers declared in the config file at path and
// registers their tools under `<server>__<tool>` names. A config with no
// servers is skipped. Tool calls proxied to these servers are gated through
// the given approval gate.
func (s *Toolset) LoadMCPConfig(ctx context.Context, path string, gate *approval.Gate) error {
	cfg, err := mcp.LoadConfig(path)
	if err != nil {
		return MCPError{Path: path, Err: err}
	}
	if len(cfg.Servers) == 0 {
		slog.Debug("MCP config has no servers", "path", path)
		return nil
	}
	tools, clients, err := mcp.LoadTools(ctx, cfg, gate)
	if err != nil {
		return MCPError{Path: path, Err: err}
	}
	for _, client := range clients {
		// A server already connected from an earlier load is replaced,
		// together with its tools.
		if _, ok := s.clients.Load(client.Server()); ok {
			s.RemoveServerTools(client.Server())
		}
		s.clients.Store(client.Server(), client)
	}
	for _, tool := range tools {
		s.Add(tool)
	}
	slog.Info("Loaded MCP tools", "path", path, "servers", len(cfg.Servers), "tools", len(tools))
	return nil
}
