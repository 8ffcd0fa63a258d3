package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/abdidvp/fixie2nunit/internal/adapters/inbound/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the fixie2nunit MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start fixie2nunit MCP server (stdio)",
		Long:  "Start the fixie2nunit MCP server using stdio transport. This lets coding assistants preview and run migrations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectPath == "" {
				projectPath = "."
			}
			// stdout carries the protocol; logs go to stderr.
			s := mcpadapter.NewFixie2NUnitMCPServer(projectPath, newLogger(cmd.ErrOrStderr(), false))
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Solution, project or directory (defaults to current working directory)")

	return cmd
}
