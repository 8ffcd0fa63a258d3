package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// NewFixie2NUnitMCPServer creates an MCP server with the migration tools and
// resources registered. projectPath is the default descriptor: a solution,
// a project file or a directory holding one.
func NewFixie2NUnitMCPServer(projectPath string, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"fixie2nunit",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, logger)
	registerResources(s, projectPath)

	return s
}
