package toolset

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kimi-cli/kimi/pkg/approval"
	"github.com/kimi-cli/kimi/pkg/mcp"
)

const reloadDebounce = 200 * time.Millisecond

// MCPReloader re-applies an MCP config file whenever it changes on disk.
// Servers present in the new config are reconnected and their tools
// re-registered; tools of servers that disappeared are removed.
type MCPReloader struct {
	path    string
	toolset *Toolset
	gate    *approval.Gate
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchMCPConfig loads the config at path and starts watching it for
// changes. The watcher stops when ctx is cancelled or Close is called.
func WatchMCPConfig(ctx context.Context, path string, ts *Toolset, gate *approval.Gate) (*MCPReloader, error) {
	if err := ts.LoadMCPConfig(ctx, path, gate); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory instead of the file: editors replace files by
	// rename, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	r := &MCPReloader{
		path:    path,
		toolset: ts,
		gate:    gate,
		watcher: watcher,
		done:    make(chan struct{}),
	}
	go r.run(ctx)
	return r, nil
}

func (r *MCPReloader) run(ctx context.Context) {
	defer close(r.done)
	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(r.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(reloadDebounce)
			} else {
				debounce.Reset(reloadDebounce)
			}
			fire = debounce.C
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("MCP config watch error", "path", r.path, "error", err)
		case <-fire:
			fire = nil
			r.reload(ctx)
		}
	}
}

func (r *MCPReloader) reload(ctx context.Context) {
	slog.Info("MCP config changed, reloading", "path", r.path)
	before := r.toolset.clients.Keys()
	if err := r.toolset.LoadMCPConfig(ctx, r.path, r.gate); err != nil {
		slog.Error("MCP reload failed, keeping previous tools", "path", r.path, "error", err)
		return
	}
	cfg, err := mcp.LoadConfig(r.path)
	if err != nil {
		return
	}
	for _, server := range before {
		if _, ok := cfg.Servers[server]; !ok {
			removed := r.toolset.RemoveServerTools(server)
			slog.Info("Removed MCP server tools", "server", server, "tools", removed)
		}
	}
}

// Close stops the watcher and waits for the reload loop to exit.
func (r *MCPReloader) Close() error {
	err := r.watcher.Close()
	<-r.done
	return err
}
