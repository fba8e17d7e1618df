package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Client is an initialized session with one MCP server.
type Client struct {
	server  string
	session *mcp.ClientSession
}

// Connect spawns or dials the configured server and completes the MCP
// handshake.
func Connect(ctx context.Context, server string, cfg ServerConfig) (*Client, error) {
	slog.Debug("Connecting MCP server", "server", server)

	transport, err := buildTransport(ctx, cfg)
	if err != nil {
		return nil, err
	}

	impl := &mcp.Implementation{
		Name:    "kimi",
		Version: "1.0.0",
	}
	session, err := mcp.NewClient(impl, nil).Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to MCP server %q: %w", server, err)
	}

	slog.Debug("Connected MCP server", "server", server)
	return &Client{server: server, session: session}, nil
}

func buildTransport(ctx context.Context, cfg ServerConfig) (mcp.Transport, error) {
	if cfg.Command != "" {
		cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
		cmd.Env = append(os.Environ(), cfg.Env...)
		return &mcp.CommandTransport{Command: cmd}, nil
	}

	httpClient := &http.Client{}
	if len(cfg.Headers) > 0 {
		httpClient.Transport = &headerRoundTripper{headers: cfg.Headers}
	}

	switch cfg.Transport {
	case "sse":
		return &mcp.SSEClientTransport{
			Endpoint:   cfg.URL,
			HTTPClient: httpClient,
		}, nil
	case "", "streamable", "streamable-http":
		return &mcp.StreamableClientTransport{
			Endpoint:   cfg.URL,
			HTTPClient: httpClient,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", cfg.Transport)
	}
}

// Server returns the server identity used for tool namespacing.
func (c *Client) Server() string { return c.server }

// Tools enumerates the tools the server currently exposes.
func (c *Client) Tools(ctx context.Context) ([]*mcp.Tool, error) {
	var tools []*mcp.Tool
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("list tools from MCP server %q: %w", c.server, err)
		}
		tools = append(tools, tool)
	}
	slog.Debug("Listed MCP tools", "server", c.server, "count", len(tools))
	return tools, nil
}

// CallTool invokes a remote tool by its unprefixed name.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	return c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
}

func (c *Client) Close() error {
	slog.Debug("Closing MCP client", "server", c.server)
	return c.session.Close()
}

type headerRoundTripper struct {
	headers map[string]string
}

func (t *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return http.DefaultTransport.RoundTrip(clone)
}
