// Package mcp proxies tools exposed by remote MCP servers into the local
// Tool model. Remote tool names are namespaced by server identity so that
// two servers exposing the same tool name never collide in the registry.
package mcp

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Separator joins server identity and remote tool name in registry keys.
// Locally registered tools do not use it by convention, though nothing
// structurally prevents a collision.
const Separator = "__"

// Namespaced builds the registry name for a remote tool.
func Namespaced(server, tool string) string {
	return server + Separator + tool
}

// ServerConfig describes one MCP server: either a local command to spawn
// (stdio transport) or a remote endpoint.
type ServerConfig struct {
	Command string   `yaml:"command,omitempty" json:"command,omitempty"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
	Env     []string `yaml:"env,omitempty" json:"env,omitempty"`

	URL       string            `yaml:"url,omitempty" json:"url,omitempty"`
	Transport string            `yaml:"transport,omitempty" json:"transport,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// Config is one MCP configuration file. A config with no servers is valid
// and means "nothing to load".
type Config struct {
	Servers map[string]ServerConfig `yaml:"mcpServers" json:"mcpServers"`
}

// LoadConfig reads a YAML (or JSON) MCP config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read MCP config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse MCP config %s: %w", path, err)
	}
	for name, server := range cfg.Servers {
		if err := server.validate(); err != nil {
			return Config{}, fmt.Errorf("MCP server %q in %s: %w", name, path, err)
		}
	}
	return cfg, nil
}

func (sc ServerConfig) validate() error {
	if sc.Command == "" && sc.URL == "" {
		return fmt.Errorf("either command or url must be set")
	}
	if sc.Command != "" && sc.URL != "" {
		return fmt.Errorf("command and url are mutually exclusive")
	}
	return nil
}
