package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/kimi-cli/kimi/pkg/approval"
	"github.com/kimi-cli/kimi/pkg/message"
	"github.com/kimi-cli/kimi/pkg/tooling"
)

// callTimeout bounds one remote tool invocation. Timeouts surface as an
// ordinary error result, not a special exception path.
const callTimeout = 60 * time.Second

// ProxiedTool exposes one remote MCP tool as a local Tool. Every call first
// passes the approval gate; on rejection the remote server is never
// contacted.
type ProxiedTool struct {
	client *Client
	tool   *mcp.Tool
	gate   *approval.Gate
}

func NewProxiedTool(client *Client, tool *mcp.Tool, gate *approval.Gate) *ProxiedTool {
	return &ProxiedTool{client: client, tool: tool, gate: gate}
}

func (t *ProxiedTool) Name() string {
	return Namespaced(t.client.Server(), t.tool.Name)
}

func (t *ProxiedTool) Description() string {
	return t.tool.Description
}

func (t *ProxiedTool) Parameters() *jsonschema.Schema {
	switch s := t.tool.InputSchema.(type) {
	case *jsonschema.Schema:
		return s
	case nil:
		return nil
	default:
		// The SDK delivers client-side schemas as unstructured JSON
		// (typically map[string]any); round-trip into a typed schema.
		data, err := json.Marshal(s)
		if err != nil {
			return nil
		}
		var schema jsonschema.Schema
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil
		}
		return &schema
	}
}

func (t *ProxiedTool) Call(ctx context.Context, call *message.ToolCall, args json.RawMessage) (tooling.ReturnValue, error) {
	action := "mcp:" + t.tool.Name
	description := fmt.Sprintf("Call MCP tool `%s`.", t.tool.Name)
	approved, err := t.gate.Request(ctx, call.ID, t.Name(), action, description)
	if err != nil {
		return nil, err
	}
	if !approved {
		return tooling.Rejected(), nil
	}

	var arguments map[string]any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &arguments); err != nil {
			return tooling.ParseError{Message: err.Error()}, nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	result, err := t.client.CallTool(callCtx, t.tool.Name, arguments)
	if err != nil {
		// Transport failures and timeouts are reported to the model as
		// an ordinary unsuccessful result.
		return tooling.RuntimeError{Message: err.Error()}, nil
	}
	return ConvertResult(result)
}

// LoadTools connects to every server in cfg concurrently and wraps each
// remote tool. Returned clients stay connected for the lifetime of the
// tools; the caller owns closing them.
func LoadTools(ctx context.Context, cfg Config, gate *approval.Gate) ([]tooling.Tool, []*Client, error) {
	var (
		mu      sync.Mutex
		tools   []tooling.Tool
		clients []*Client
	)

	g, ctx := errgroup.WithContext(ctx)
	for server, serverCfg := range cfg.Servers {
		g.Go(func() error {
			client, err := Connect(ctx, server, serverCfg)
			if err != nil {
				return err
			}
			remote, err := client.Tools(ctx)
			if err != nil {
				client.Close()
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			clients = append(clients, client)
			for _, tool := range remote {
				tools = append(tools, NewProxiedTool(client, tool, gate))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, client := range clients {
			client.Close()
		}
		return nil, nil, err
	}
	return tools, clients, nil
}
