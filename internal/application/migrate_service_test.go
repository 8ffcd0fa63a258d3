package application_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	"github.com/abdidvp/fixie2nunit/internal/domain/migrate"
)

const (
	shopFixture     = "../../testdata/csharp/shop"
	expectedFixture = "../../testdata/csharp/expected"
)

const sdkProject = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
</Project>
`

func newMigrateService() *application.MigrateService {
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
		nil,
	)
}

// copyShop copies the shop fixture into a temp dir so runs can write to it.
func copyShop(t *testing.T) string {
	t.Helper()
	dst := t.TempDir()
	err := filepath.WalkDir(shopFixture, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(shopFixture, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
	require.NoError(t, err)
	return dst
}

// writeProject creates an SDK-style project named App.Tests holding files.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "App.Tests.csproj"), []byte(sdkProject), 0644))
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func resultFor(t *testing.T, r *domain.MigrationReport, rel string) domain.FileResult {
	t.Helper()
	for _, f := range r.Files {
		if f.Path == rel {
			return f
		}
	}
	require.Failf(t, "missing file result", "%s not in report", rel)
	return domain.FileResult{}
}

func TestMigrateService_Solution(t *testing.T) {
	root := copyShop(t)
	svc := newMigrateService()

	report, err := svc.Migrate(context.Background(), filepath.Join(root, "Shop.sln"), domain.MigrateOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.DescriptorSolution, report.Kind)
	assert.Equal(t, domain.TargetNUnit, report.Target)
	assert.Equal(t, []string{"Shop.Orders.Tests", "Shop.Legacy.Tests"}, report.Projects)
	assert.NotEmpty(t, report.RunID)

	var paths []string
	for _, f := range report.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"tests/Shop.Orders.Tests/CheckoutTests.cs",
		"tests/Shop.Orders.Tests/OrderTests.cs",
		"tests/Shop.Orders.Tests/PricingTests.cs",
		"tests/Shop.Orders.Tests/TestData.cs",
		"tests/Shop.Legacy.Tests/Broken.cs",
		"tests/Shop.Legacy.Tests/LegacyTests.cs",
	}, paths)

	for rel, want := range map[string]string{
		"tests/Shop.Orders.Tests/OrderTests.cs":    "OrderTests.cs",
		"tests/Shop.Orders.Tests/CheckoutTests.cs": "CheckoutTests.cs",
		"tests/Shop.Legacy.Tests/LegacyTests.cs":   "LegacyTests.cs",
	} {
		assert.Equal(t,
			readFile(t, filepath.Join(expectedFixture, want)),
			readFile(t, filepath.Join(root, filepath.FromSlash(rel))),
			rel)
		assert.Equal(t, domain.StatusChanged, resultFor(t, report, rel).Status, rel)
	}

	// Files without test declarations stay byte-identical.
	for _, rel := range []string{
		"tests/Shop.Orders.Tests/PricingTests.cs",
		"tests/Shop.Orders.Tests/TestData.cs",
		"src/Shop.Orders/SelfTests.cs",
		"src/Shop.Orders/Order.cs",
	} {
		assert.Equal(t,
			readFile(t, filepath.Join(shopFixture, filepath.FromSlash(rel))),
			readFile(t, filepath.Join(root, filepath.FromSlash(rel))),
			rel)
	}

	broken := resultFor(t, report, "tests/Shop.Legacy.Tests/Broken.cs")
	assert.Equal(t, domain.StatusFailed, broken.Status)
	assert.Contains(t, broken.Error, "syntax error")

	order := resultFor(t, report, "tests/Shop.Orders.Tests/OrderTests.cs")
	assert.True(t, order.UsingAdded)
	assert.Contains(t, order.Changes, migrate.Change{
		Kind:      migrate.ChangeFixture,
		Class:     "OrderTests.NestedTests",
		Attribute: "TestFixture",
		Line:      30,
	})

	assert.Equal(t, domain.Summary{
		Files:    6,
		Changed:  3,
		Failed:   1,
		Fixtures: 4,
		Tests:    6,
	}, report.Summary)
}

func TestMigrateService_SecondRunChangesNothing(t *testing.T) {
	root := copyShop(t)
	svc := newMigrateService()
	descriptor := filepath.Join(root, "Shop.sln")

	_, err := svc.Migrate(context.Background(), descriptor, domain.MigrateOptions{})
	require.NoError(t, err)

	report, err := svc.Migrate(context.Background(), descriptor, domain.MigrateOptions{NoCache: true})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Summary.Changed)
	assert.Equal(t, 0, report.Summary.Formatted)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t,
		readFile(t, filepath.Join(expectedFixture, "OrderTests.cs")),
		readFile(t, filepath.Join(root, "tests", "Shop.Orders.Tests", "OrderTests.cs")))
}

func TestMigrateService_CacheSkipsSettledFiles(t *testing.T) {
	root := copyShop(t)
	svc := newMigrateService()
	descriptor := filepath.Join(root, "Shop.sln")

	_, err := svc.Migrate(context.Background(), descriptor, domain.MigrateOptions{})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, ".fixie2nunit", "cache", "files.json"))

	report, err := svc.Migrate(context.Background(), descriptor, domain.MigrateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, report.Summary.Cached)
	assert.Equal(t, 1, report.Summary.Failed, "failed files are never cached")

	// Touching a file takes it out of the cache.
	checkout := filepath.Join(root, "tests", "Shop.Orders.Tests", "CheckoutTests.cs")
	require.NoError(t, os.WriteFile(checkout, []byte("public class CheckoutTests\n{\n    public void A() { }\n}\n"), 0644))

	report, err = svc.Migrate(context.Background(), descriptor, domain.MigrateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, report.Summary.Cached)
	assert.Equal(t, domain.StatusChanged, resultFor(t, report, "tests/Shop.Orders.Tests/CheckoutTests.cs").Status)
}

func TestMigrateService_DryRunLeavesDiskAlone(t *testing.T) {
	root := copyShop(t)
	svc := newMigrateService()

	report, err := svc.Migrate(context.Background(), filepath.Join(root, "Shop.sln"),
		domain.MigrateOptions{DryRun: true, Diff: true})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 3, report.Summary.Changed)

	order := resultFor(t, report, "tests/Shop.Orders.Tests/OrderTests.cs")
	assert.Contains(t, order.Diff, "--- a/tests/Shop.Orders.Tests/OrderTests.cs")
	assert.Contains(t, order.Diff, "+    [TestFixture]\n")
	assert.Contains(t, order.Diff, "+using NUnit.Framework;\n")
	assert.Empty(t, resultFor(t, report, "tests/Shop.Orders.Tests/TestData.cs").Diff)

	assert.Equal(t,
		readFile(t, filepath.Join(shopFixture, "tests", "Shop.Orders.Tests", "OrderTests.cs")),
		readFile(t, filepath.Join(root, "tests", "Shop.Orders.Tests", "OrderTests.cs")))
	assert.NoFileExists(t, filepath.Join(root, ".fixie2nunit", "cache", "files.json"))
}

func TestMigrateService_ProjectModeDoesNotFilterByName(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"SmokeTests.cs": "public class SmokeTests\n{\n    public void Boots() { }\n}\n",
	})
	require.NoError(t, os.Rename(filepath.Join(dir, "App.Tests.csproj"), filepath.Join(dir, "App.csproj")))

	report, err := newMigrateService().Migrate(context.Background(), dir, domain.MigrateOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.DescriptorProject, report.Kind)
	assert.Equal(t, []string{"App"}, report.Projects)
	assert.Equal(t, 1, report.Summary.Changed)
	assert.Equal(t,
		"using NUnit.Framework;\n\n[TestFixture]\npublic class SmokeTests\n{\n    [Test]\n    public void Boots() { }\n}\n",
		readFile(t, filepath.Join(dir, "SmokeTests.cs")))
}

func TestMigrateService_ProjectModeIsolatesFailures(t *testing.T) {
	root := copyShop(t)

	report, err := newMigrateService().Migrate(context.Background(),
		filepath.Join(root, "tests", "Shop.Legacy.Tests"), domain.MigrateOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, 1, report.Summary.Changed)
	assert.Equal(t,
		readFile(t, filepath.Join(expectedFixture, "LegacyTests.cs")),
		readFile(t, filepath.Join(root, "tests", "Shop.Legacy.Tests", "LegacyTests.cs")))
}

func TestMigrateService_FormatPass(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"FormatTests.cs": "using NUnit.Framework;   \n\n[TestFixture]\npublic class FormatTests\n{\n    [Test]\n    public void A() { }  \n}\n",
		"MessyTests.cs":  "public class MessyTests  \n{\n    public void A() { }\n}",
		"Plain.cs":       "public class Plain  \n{\n}\n",
	})

	report, err := newMigrateService().Migrate(context.Background(), dir, domain.MigrateOptions{})
	require.NoError(t, err)

	format := resultFor(t, report, "FormatTests.cs")
	assert.Equal(t, domain.StatusChanged, format.Status)
	assert.True(t, format.Formatted)
	assert.Empty(t, format.Changes)
	assert.Equal(t,
		"using NUnit.Framework;\n\n[TestFixture]\npublic class FormatTests\n{\n    [Test]\n    public void A() { }\n}\n",
		readFile(t, filepath.Join(dir, "FormatTests.cs")))

	messy := resultFor(t, report, "MessyTests.cs")
	assert.True(t, messy.Formatted)
	assert.Len(t, messy.Changes, 3)
	assert.Equal(t,
		"using NUnit.Framework;\n\n[TestFixture]\npublic class MessyTests\n{\n    [Test]\n    public void A() { }\n}\n",
		readFile(t, filepath.Join(dir, "MessyTests.cs")))

	// No target import, so the formatter never sees it.
	assert.Equal(t, domain.StatusUnchanged, resultFor(t, report, "Plain.cs").Status)
	assert.Equal(t, "public class Plain  \n{\n}\n", readFile(t, filepath.Join(dir, "Plain.cs")))

	assert.Equal(t, 2, report.Summary.Formatted)
}

func TestMigrateService_FormatPassSeesEveryPassOneWrite(t *testing.T) {
	const n = 48
	files := make(map[string]string, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("Case%02dTests", i)
		files["Cases/"+name+".cs"] = "public class " + name + "  \n{\n    public void A() { }\n}"
	}
	want := func(name string) string {
		return "using NUnit.Framework;\n\n[TestFixture]\npublic class " + name +
			"\n{\n    [Test]\n    public void A() { }\n}\n"
	}

	for _, dryRun := range []bool{false, true} {
		t.Run(fmt.Sprintf("dry_run=%v", dryRun), func(t *testing.T) {
			dir := writeProject(t, files)
			svc := newMigrateService()
			svc.SetWorkers(8)

			report, err := svc.Migrate(context.Background(), dir, domain.MigrateOptions{DryRun: dryRun, Diff: true})
			require.NoError(t, err)
			require.Len(t, report.Files, n)
			assert.Equal(t, n, report.Summary.Changed)
			assert.Equal(t, n, report.Summary.Formatted, "pass 2 must see the using added in pass 1")
			assert.Equal(t, 0, report.Summary.Failed)

			for i := 0; i < n; i++ {
				name := fmt.Sprintf("Case%02dTests", i)
				rel := "Cases/" + name + ".cs"
				res := resultFor(t, report, rel)
				assert.True(t, res.Formatted, rel)
				assert.Contains(t, res.Diff, "+using NUnit.Framework;", rel)

				onDisk := readFile(t, filepath.Join(dir, "Cases", name+".cs"))
				if dryRun {
					assert.Equal(t, files[rel], onDisk, rel)
				} else {
					assert.Equal(t, want(name), onDisk, rel)
				}
			}
		})
	}
}

func TestMigrateService_NoFormat(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"FormatTests.cs": "using NUnit.Framework;   \n\n[TestFixture]\npublic class FormatTests\n{\n}\n",
	})

	report, err := newMigrateService().Migrate(context.Background(), dir, domain.MigrateOptions{NoFormat: true})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnchanged, resultFor(t, report, "FormatTests.cs").Status)
	assert.Equal(t, 0, report.Summary.Formatted)
	assert.NoFileExists(t, filepath.Join(dir, ".fixie2nunit", "cache", "files.json"))
}

func TestMigrateService_FormatterDisabledInConfig(t *testing.T) {
	dir := writeProject(t, map[string]string{
		".fixie2nunit.yaml": "formatter:\n  disabled: true\n",
		"FormatTests.cs":    "using NUnit.Framework;   \n\npublic class FormatTests\n{\n}\n",
	})

	report, err := newMigrateService().Migrate(context.Background(), dir, domain.MigrateOptions{})
	require.NoError(t, err)

	// The class rule still runs; only formatting is skipped.
	assert.Equal(t,
		"using NUnit.Framework;   \n\n[TestFixture]\npublic class FormatTests\n{\n}\n",
		readFile(t, filepath.Join(dir, "FormatTests.cs")))
	assert.Equal(t, 0, report.Summary.Formatted)
}

func TestMigrateService_MSTestTarget(t *testing.T) {
	dir := writeProject(t, map[string]string{
		".fixie2nunit.yaml": "target: mstest\n",
		"ApiTests.cs":       "using System;\n\npublic class ApiTests\n{\n    public void Get() { }\n}\n",
	})

	report, err := newMigrateService().Migrate(context.Background(), dir, domain.MigrateOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.TargetMSTest, report.Target)
	assert.Equal(t,
		"using System;\nusing Microsoft.VisualStudio.TestTools.UnitTesting;\n\n[TestClass]\npublic class ApiTests\n{\n    [TestMethod]\n    public void Get() { }\n}\n",
		readFile(t, filepath.Join(dir, "ApiTests.cs")))
}

func TestMigrateService_RecordsHistory(t *testing.T) {
	root := copyShop(t)
	svc := newMigrateService()

	report, err := svc.Migrate(context.Background(), filepath.Join(root, "Shop.sln"), domain.MigrateOptions{DryRun: true})
	require.NoError(t, err)

	entries, err := history.New().Load(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, report.RunID, entries[0].RunID)
	assert.True(t, entries[0].DryRun)
	assert.Equal(t, 3, entries[0].Changed)
}

func TestMigrateService_RequireCleanOutsideGit(t *testing.T) {
	dir := writeProject(t, map[string]string{"ATests.cs": "public class ATests { }\n"})

	_, err := newMigrateService().Migrate(context.Background(), dir, domain.MigrateOptions{RequireClean: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not inside a git repository")
	assert.Equal(t, "public class ATests { }\n", readFile(t, filepath.Join(dir, "ATests.cs")))
}

func TestMigrateService_DescriptorErrors(t *testing.T) {
	svc := newMigrateService()

	_, err := svc.Migrate(context.Background(), t.TempDir(), domain.MigrateOptions{})
	assert.ErrorIs(t, err, domain.ErrNoDescriptor)

	_, err = svc.Migrate(context.Background(), filepath.Join(t.TempDir(), "missing.sln"), domain.MigrateOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMigrateService_InvalidConfig(t *testing.T) {
	dir := writeProject(t, map[string]string{".fixie2nunit.yaml": "target: xunit\n"})

	_, err := newMigrateService().Migrate(context.Background(), dir, domain.MigrateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestMigrateService_Cancelled(t *testing.T) {
	root := copyShop(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newMigrateService().Migrate(ctx, filepath.Join(root, "Shop.sln"), domain.MigrateOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMigrateService_MigrateSource(t *testing.T) {
	svc := newMigrateService()
	src := "namespace Demo\n{\n    public class CartTests\n    {\n        public void Empty() { }\n    }\n}\n"

	res, err := svc.MigrateSource(context.Background(), filepath.Join(t.TempDir(), "CartTests.cs"), []byte(src))
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.True(t, res.UsingAdded)
	assert.Len(t, res.Changes, 3)
	assert.Equal(t,
		"using NUnit.Framework;\n\nnamespace Demo\n{\n    [TestFixture]\n    public class CartTests\n    {\n        [Test]\n        public void Empty() { }\n    }\n}\n",
		res.Output)
	assert.True(t, strings.HasPrefix(res.Diff, "--- a/CartTests.cs"))
}

func TestMigrateService_MigrateSourceUnchanged(t *testing.T) {
	src := "public class Cart { public void Empty() { } }\n"
	res, err := newMigrateService().MigrateSource(context.Background(), filepath.Join(t.TempDir(), "Cart.cs"), []byte(src))
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, src, res.Output)
	assert.Empty(t, res.Diff)
}

func TestMigrateService_MigrateSourceSyntaxError(t *testing.T) {
	_, err := newMigrateService().MigrateSource(context.Background(), "Bad.cs", []byte("class { void ("))
	assert.ErrorIs(t, err, domain.ErrSyntax)
}
