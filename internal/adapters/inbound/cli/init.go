package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/config"
	"github.com/abdidvp/fixie2nunit/internal/domain"
)

func newInitCmd() *cobra.Command {
	var (
		target string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .fixie2nunit.yaml configuration file",
		Long:  "Create a .fixie2nunit.yaml with the defaults of the chosen target framework.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, config.FileName)

			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
				}
			}

			t := domain.Target(target)
			if err := (domain.ProjectConfig{Target: t}).Validate(); err != nil {
				return err
			}

			if err := os.WriteFile(dest, []byte(generateConfig(t)), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", string(domain.TargetNUnit), "Target framework (nunit, mstest)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .fixie2nunit.yaml")

	return cmd
}

func generateConfig(t domain.Target) string {
	cfg := domain.DefaultConfigForTarget(t)
	conv := cfg.Conventions()

	result := fmt.Sprintf("# fixie2nunit configuration\n\ntarget: %s\n\n", cfg.Target)
	result += fmt.Sprintf("# Projects whose dotted name contains this segment are migrated\n# when a whole solution is opened.\ntest_project_segment: %s\n\n", cfg.TestProjectSegment)
	result += fmt.Sprintf("# fixtures: only methods of *%s classes; all: every public method.\nmethod_scope: %s\n\n", conv.ClassSuffix, cfg.MethodScope)
	result += fmt.Sprintf(`# conventions:
#   class_suffix: %s
#   fixture_attribute: %s
#   test_attribute: %s
#   namespace: %s

# exclude_paths:
#   - Generated

# formatter:
#   command: [path/to/formatter, --stdin]
`, conv.ClassSuffix, conv.FixtureAttribute, conv.TestAttribute, conv.Namespace)

	return result
}
