package research

import (
	"fmt"
	"net/url"

	"github.com/nhle/research-cli/internal/gemini"
	"github.com/nhle/research-cli/internal/model"
)

// BuildTools assembles the grounding tools for a request: search first,
// then URL context, then one entry per MCP server in configured order.
func BuildTools(cfg model.ToolsConfig, mcpServers []string) []gemini.Tool {
	var tools []gemini.Tool

	if cfg.GoogleSearch {
		tools = append(tools, gemini.Tool{Type: gemini.ToolGoogleSearch})
	}
	if cfg.URLContext {
		tools = append(tools, gemini.Tool{Type: gemini.ToolURLContext})
	}

	for i, server := range mcpServers {
		tools = append(tools, gemini.Tool{
			Type: gemini.ToolMCPServer,
			Name: mcpServerName(server, i),
			URL:  server,
		})
	}

	return tools
}

// mcpServerName derives a stable label from the server host.
func mcpServerName(server string, index int) string {
	if u, err := url.Parse(server); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return fmt.Sprintf("mcp-%d", index+1)
}
