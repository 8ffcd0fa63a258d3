package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/config"
)

// registerResources registers all fixie2nunit MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// fixie2nunit://config - effective configuration
	s.AddResource(
		mcplib.NewResource(
			"fixie2nunit://config",
			"Configuration",
			mcplib.WithResourceDescription("Effective .fixie2nunit.yaml configuration with target defaults applied"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(projectPath),
	)
}

// effectiveConfig is the configuration as the rules see it.
type effectiveConfig struct {
	Target             string   `json:"target"`
	ClassSuffix        string   `json:"class_suffix"`
	FixtureAttribute   string   `json:"fixture_attribute"`
	TestAttribute      string   `json:"test_attribute"`
	Namespace          string   `json:"namespace"`
	MethodScope        string   `json:"method_scope"`
	TestProjectSegment string   `json:"test_project_segment"`
	ExcludePaths       []string `json:"exclude_paths,omitempty"`
	FormatterDisabled  bool     `json:"formatter_disabled"`
	FormatterCommand   []string `json:"formatter_command,omitempty"`
}

func handleConfigResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		root, err := historyRoot(projectPath)
		if err != nil {
			return nil, err
		}
		cfg, err := config.New().Load(root)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		conv := cfg.Conventions()

		data, err := json.MarshalIndent(effectiveConfig{
			Target:             string(cfg.Target),
			ClassSuffix:        conv.ClassSuffix,
			FixtureAttribute:   conv.FixtureAttribute,
			TestAttribute:      conv.TestAttribute,
			Namespace:          conv.Namespace.String(),
			MethodScope:        string(conv.Scope),
			TestProjectSegment: cfg.TestProjectSegment,
			ExcludePaths:       cfg.ExcludePaths,
			FormatterDisabled:  cfg.Formatter.Disabled,
			FormatterCommand:   cfg.Formatter.Command,
		}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling config: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "fixie2nunit://config",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
