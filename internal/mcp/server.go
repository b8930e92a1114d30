// Package mcp exposes the tool operations over the Model Context
// Protocol's stdio transport.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/PassKeyRa/suisource-mcp/internal/ops"
)

var healthCheckToolDef = mcp.NewTool("health_check",
	mcp.WithDescription(
		"Check server health: decompiler availability and the configured Sui RPC endpoint.",
	),
)

var getSourceCodeToolDef = mcp.NewTool("get_source_code",
	mcp.WithDescription(
		"Fetch a Sui package's bytecode and decompile every module to Move source. "+
			"Sources are written under the configured workdir, one directory per package.",
	),
	mcp.WithString("package_id",
		mcp.Required(),
		mcp.Description("Package object id, 0x-prefixed hex"),
	),
)

var getProjectInfoToolDef = mcp.NewTool("get_project_info",
	mcp.WithDescription(
		"Resolve a package's upgrade family and return every version with its decompiled "+
			"modules and last-changed timestamp, most recently changed first.",
	),
	mcp.WithString("package_id",
		mcp.Required(),
		mcp.Description("Package object id of any version in the family, 0x-prefixed hex"),
	),
)

var listRunsToolDef = mcp.NewTool("list_runs",
	mcp.WithDescription("List recent tool runs recorded in the local catalog, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum entries to return (default 20, max 100)"),
	),
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"health_check": {
		def:     healthCheckToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHealthCheck },
	},
	"get_source_code": {
		def:     getSourceCodeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGetSourceCode },
	},
	"get_project_info": {
		def:     getProjectInfoToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGetProjectInfo },
	},
	"list_runs": {
		def:     listRunsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListRuns },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates the MCP server with all tools registered. Tools
// listed in the config's disabled_tools are excluded.
func NewServer(env *ops.Env, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ops.ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(env)

	disabled := make(map[string]bool)
	for _, name := range env.Cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server on stdio.
func Run(env *ops.Env, version string) error {
	s := NewServer(env, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
