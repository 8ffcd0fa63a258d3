package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/fixie2nunit/internal/adapters/inbound/cli"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/config"
	"github.com/abdidvp/fixie2nunit/internal/domain"
)

func TestInitCmd_CreatesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(tmpDir, ".fixie2nunit.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "target: nunit")
	assert.Contains(t, string(data), "test_project_segment: Tests")
	assert.Contains(t, string(data), "#   fixture_attribute: TestFixture")
}

func TestInitCmd_GeneratedConfigLoads(t *testing.T) {
	tmpDir := t.TempDir()

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir, "--target", "mstest"})
	require.NoError(t, root.Execute())

	cfg, err := config.New().Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, domain.TargetMSTest, cfg.Target)
	assert.Equal(t, "TestClass", cfg.Conventions().FixtureAttribute)
}

func TestInitCmd_UnknownTarget(t *testing.T) {
	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", t.TempDir(), "--target", "xunit"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target")
}

func TestInitCmd_FailsIfExists(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".fixie2nunit.yaml"), []byte("existing"), 0644))

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir})
	err := root.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".fixie2nunit.yaml"), []byte("old"), 0644))

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir, "--force"})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(tmpDir, ".fixie2nunit.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "old")
}
