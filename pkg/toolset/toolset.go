// Package toolset maps tool names to executable tools and turns tool-call
// events into isolated concurrent executions that always produce a result.
package toolset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kimi-cli/kimi/pkg/concurrent"
	"github.com/kimi-cli/kimi/pkg/mcp"
	"github.com/kimi-cli/kimi/pkg/message"
	"github.com/kimi-cli/kimi/pkg/tooling"
)

// Toolset owns the name→tool registry. Registration is last-write-wins per
// name, which MCP hot reload relies on; lookups of unrelated names are never
// blocked or corrupted by a concurrent reload.
type Toolset struct {
	tools   *concurrent.Map[string, tooling.Tool]
	clients *concurrent.Map[string, *mcp.Client]
}

func New() *Toolset {
	return &Toolset{
		tools:   concurrent.NewMap[string, tooling.Tool](),
		clients: concurrent.NewMap[string, *mcp.Client](),
	}
}

// Add registers a tool, replacing any prior entry with the same name.
func (s *Toolset) Add(tool tooling.Tool) {
	s.tools.Store(tool.Name(), tool)
}

// Remove drops a tool by name.
func (s *Toolset) Remove(name string) {
	s.tools.Delete(name)
}

// Descriptors returns the model-facing declarations of all registered tools.
func (s *Toolset) Descriptors() []tooling.Descriptor {
	tools := s.tools.Values()
	descriptors := make([]tooling.Descriptor, 0, len(tools))
	for _, tool := range tools {
		descriptors = append(descriptors, tooling.Describe(tool))
	}
	return descriptors
}

// Handle dispatches one tool call. It never blocks the caller: the returned
// channel delivers exactly one result once execution completes. Unknown
// names and malformed arguments resolve immediately without invoking
// anything; calls issued back-to-back run concurrently. No failure inside a
// tool escapes the channel: errors and panics become a RuntimeError result.
func (s *Toolset) Handle(ctx context.Context, call *message.ToolCall) <-chan tooling.Result {
	result := make(chan tooling.Result, 1)

	tool, ok := s.tools.Load(call.Function.Name)
	if !ok {
		result <- tooling.Result{
			ToolCallID:  call.ID,
			ReturnValue: tooling.NotFoundError{Name: call.Function.Name},
		}
		return result
	}

	args := call.Function.Arguments
	if args == "" {
		args = "{}"
	}
	if !json.Valid([]byte(args)) {
		result <- tooling.Result{
			ToolCallID:  call.ID,
			ReturnValue: tooling.ParseError{Message: fmt.Sprintf("invalid JSON arguments for tool %q", call.Function.Name)},
		}
		return result
	}

	go func() {
		result <- s.invoke(ctx, tool, call, json.RawMessage(args))
	}()
	return result
}

func (s *Toolset) invoke(ctx context.Context, tool tooling.Tool, call *message.ToolCall, args json.RawMessage) (res tooling.Result) {
	res.ToolCallID = call.ID
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Tool panicked", "tool", call.Function.Name, "panic", r)
			res.ReturnValue = tooling.RuntimeError{Message: fmt.Sprintf("%v", r)}
		}
	}()

	ret, err := tool.Call(ctx, call, args)
	if err != nil {
		slog.Error("Tool failed", "tool", call.Function.Name, "error", err)
		res.ReturnValue = tooling.RuntimeError{Message: err.Error()}
		return res
	}
	res.ReturnValue = ret
	return res
}

// RemoveServerTools drops every tool registered under the given MCP server
// identity and closes its client. It reports how many tools were removed.
func (s *Toolset) RemoveServerTools(server string) int {
	prefix := server + mcp.Separator
	removed := 0
	for _, name := range s.tools.Keys() {
		if strings.HasPrefix(name, prefix) {
			s.tools.Delete(name)
			removed++
		}
	}
	if client, ok := s.clients.Load(server); ok {
		s.clients.Delete(server)
		if err := client.Close(); err != nil {
			slog.Warn("Failed to close MCP client", "server", server, "error", err)
		}
	}
	return removed
}

// Close shuts down all MCP clients owned by the toolset.
func (s *Toolset) Close() {
	for _, server := range s.clients.Keys() {
		s.RemoveServerTools(server)
	}
}
