package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/cache"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/config"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/differ"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/filestore"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/formatter"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/history"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/parser"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/workspace"
	"github.com/abdidvp/fixie2nunit/internal/application"
	"github.com/abdidvp/fixie2nunit/internal/domain"
)

// registerTools registers all fixie2nunit MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, logger *slog.Logger) {
	// 1. fixie2nunit_migrate
	s.AddTool(
		mcplib.NewTool("fixie2nunit_migrate",
			mcplib.WithDescription("Migrate a solution or project from Fixie naming conventions to NUnit attributes. Returns the migration report as JSON."),
			mcplib.WithString("descriptor", mcplib.Description("Path to a .sln, .slnx or .csproj file, or a directory holding one (default: the server's project path)")),
			mcplib.WithBoolean("dry_run", mcplib.Description("Compute the result without writing any file")),
			mcplib.WithBoolean("diff", mcplib.Description("Include unified diffs of changed files")),
			mcplib.WithBoolean("no_format", mcplib.Description("Skip the formatting pass")),
		),
		handleMigrate(projectPath, logger),
	)

	// 2. fixie2nunit_preview
	s.AddTool(
		mcplib.NewTool("fixie2nunit_preview",
			mcplib.WithDescription("Show what the migration would add to a single C# file without writing it"),
			mcplib.WithString("file",
				mcplib.Required(),
				mcplib.Description("Path to the .cs file, relative to the project path"),
			),
			mcplib.WithString("source", mcplib.Description("Source text to use instead of the file's content")),
		),
		handlePreview(projectPath, logger),
	)

	// 3. fixie2nunit_history
	s.AddTool(
		mcplib.NewTool("fixie2nunit_history",
			mcplib.WithDescription("Returns the recorded migration runs for the project"),
		),
		handleHistory(projectPath),
	)
}

// newService wires the migration service with the standard adapters.
func newService(logger *slog.Logger) *application.MigrateService {
	return application.NewMigrateService(
		workspace.New(),
		parser.New(),
		filestore.New(),
		formatter.New(),
		config.New(),
		cache.New(),
		history.New(),
		gitinfo.New(),
		differ.New(),
		logger,
	)
}

func handleMigrate(projectPath string, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()
		descriptor, _ := args["descriptor"].(string)
		if descriptor == "" {
			descriptor = projectPath
		} else if !filepath.IsAbs(descriptor) {
			descriptor = filepath.Join(projectPath, descriptor)
		}
		opts := domain.MigrateOptions{}
		opts.DryRun, _ = args["dry_run"].(bool)
		opts.Diff, _ = args["diff"].(bool)
		opts.NoFormat, _ = args["no_format"].(bool)

		report, err := newService(logger).Migrate(ctx, descriptor, opts)
		if err != nil {
			return errorResult(fmt.Sprintf("migration failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handlePreview(projectPath string, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		file, err := request.RequireString("file")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectPath, file)
		}

		var src []byte
		if text, ok := request.GetArguments()["source"].(string); ok && text != "" {
			src = []byte(text)
		} else {
			src, err = os.ReadFile(path)
			if err != nil {
				return errorResult(fmt.Sprintf("reading file failed: %v", err)), nil
			}
		}

		res, err := newService(logger).MigrateSource(ctx, path, src)
		if err != nil {
			return errorResult(fmt.Sprintf("preview failed: %v", err)), nil
		}
		return jsonResult(res)
	}
}

func handleHistory(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		root, err := historyRoot(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		entries, err := history.New().Load(root)
		if err != nil {
			return errorResult(fmt.Sprintf("loading history failed: %v", err)), nil
		}
		if entries == nil {
			entries = []domain.RunEntry{}
		}
		return jsonResult(entries)
	}
}

// historyRoot returns the directory runs are recorded in: the directory of
// the resolved descriptor, or projectPath itself when it holds none.
func historyRoot(projectPath string) (string, error) {
	if path, err := workspace.Resolve(projectPath); err == nil {
		return filepath.Dir(path), nil
	}
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
