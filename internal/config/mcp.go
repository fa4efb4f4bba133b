package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/firebase/genkit/go/plugins/mcp"
)

// MCPConfig represents configuration for a single MCP server connection.
type MCPConfig struct {
	Name          string
	ClientOptions mcp.MCPClientOptions
}

// mcpServerEntry is one server definition inside the "mcpServers" map.
// Stdio servers carry a command; remote servers carry a URL.
type mcpServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
	URL     string            `json:"url"`
}

// mcpDocument is the top-level MCP configuration schema:
// {"mcpServers": {"<name>": {...}}}.
type mcpDocument struct {
	MCPServers map[string]mcpServerEntry `json:"mcpServers"`
}

// LoadMCPConfigs reads MCP server definitions from MCP_SERVERS_JSON (inline)
// or MCP_CONFIG_PATH (file). Inline takes precedence. Any parse or IO failure
// is logged as a warning and yields no servers; MCP is strictly optional.
func LoadMCPConfigs(cfg *Config, logger *slog.Logger) []MCPConfig {
	var data []byte

	switch {
	case cfg.MCPInlineConfig != "":
		data = []byte(cfg.MCPInlineConfig)
	case cfg.MCPConfigPath != "":
		path := cfg.MCPConfigPath
		if !filepath.IsAbs(path) {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to load MCP config file", "path", path, "error", err)
			return nil
		}
		data = raw
	default:
		return nil
	}

	var doc mcpDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("invalid MCP server configuration", "error", err)
		return nil
	}
	if len(doc.MCPServers) == 0 {
		return nil
	}

	configs := make([]MCPConfig, 0, len(doc.MCPServers))
	for name, entry := range doc.MCPServers {
		opts, err := clientOptions(name, entry)
		if err != nil {
			logger.Warn("skipping MCP server", "name", name, "error", err)
			continue
		}
		configs = append(configs, MCPConfig{Name: name, ClientOptions: opts})
	}
	return configs
}

// clientOptions converts one server entry into Genkit MCP client options.
func clientOptions(name string, entry mcpServerEntry) (mcp.MCPClientOptions, error) {
	switch {
	case entry.Command != "":
		return mcp.MCPClientOptions{
			Name: name,
			Stdio: &mcp.StdioConfig{
				Command: entry.Command,
				Args:    entry.Args,
				Env:     envMapToSlice(entry.Env),
			},
		}, nil
	case entry.URL != "":
		return mcp.MCPClientOptions{
			Name: name,
			StreamableHTTP: &mcp.StreamableHTTPConfig{
				BaseURL: entry.URL,
			},
		}, nil
	default:
		return mcp.MCPClientOptions{}, fmt.Errorf("server %q has neither command nor url", name)
	}
}

// envMapToSlice converts environment variables to the KEY=VALUE slice
// format required by Genkit's StdioConfig.Env field.
func envMapToSlice(m map[string]string) []string {
	if m == nil {
		return nil
	}
	result := make([]string, 0, len(m))
	for k, v := range m {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}
