package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/abdidvp/fixie2nunit/internal/adapters/outbound/config"
	"github.com/abdidvp/fixie2nunit/internal/domain"
	"github.com/abdidvp/fixie2nunit/internal/domain/migrate"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".fixie2nunit.yaml"), []byte(content), 0644))
}

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
target: mstest
test_project_segment: Specs
method_scope: all
exclude_paths:
  - Generated
conventions:
  class_suffix: Specs
formatter:
  command: ["dotnet", "csharpier", "--write-stdout"]
`)
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.TargetMSTest, cfg.Target)
	assert.Equal(t, "Specs", cfg.TestProjectSegment)
	assert.Equal(t, migrate.ScopeAll, cfg.MethodScope)
	assert.Equal(t, []string{"Generated"}, cfg.ExcludePaths)
	assert.Equal(t, []string{"dotnet", "csharpier", "--write-stdout"}, cfg.Formatter.Command)

	conv := cfg.Conventions()
	assert.Equal(t, "Specs", conv.ClassSuffix)
	assert.Equal(t, "TestClass", conv.FixtureAttribute)
	assert.Equal(t, "Microsoft.VisualStudio.TestTools.UnitTesting", conv.Namespace.String())
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{{{invalid yaml`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .fixie2nunit.yaml")
}

func TestYAMLLoader_EmptyFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_PartialConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
conventions:
  test_attribute: Fact
`)
	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)

	assert.Equal(t, domain.TargetNUnit, cfg.Target)
	assert.Equal(t, domain.DefaultTestProjectSegment, cfg.TestProjectSegment)
	assert.Equal(t, migrate.ScopeFixtures, cfg.MethodScope)

	conv := cfg.Conventions()
	assert.Equal(t, "Fact", conv.TestAttribute)
	assert.Equal(t, "TestFixture", conv.FixtureAttribute)
}

func TestYAMLLoader_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"unknown target", "target: xunit", "unknown target"},
		{"unknown scope", "method_scope: some", "unknown method_scope"},
		{"dotted segment", "test_project_segment: Unit.Tests", "single name segment"},
		{"bad identifier", "conventions:\n  class_suffix: \"Te sts\"", "not an identifier"},
		{"bad namespace", "conventions:\n  namespace: \"NUnit..Framework\"", "not a dotted name"},
		{"disabled with command", "formatter:\n  disabled: true\n  command: [x]", "formatter.disabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := appconfig.New().Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid .fixie2nunit.yaml")
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestYAMLLoader_UnreadableConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".fixie2nunit.yaml"), 0o755))

	_, err := appconfig.New().Load(dir)
	assert.Error(t, err)
}
