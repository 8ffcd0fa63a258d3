package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/tui"
)

func newPreviewCmd() *cobra.Command {
	var (
		jsonOutput bool
		output     bool
	)

	cmd := &cobra.Command{
		Use:   "preview <file.cs>",
		Short: "Show what the migration adds to one file",
		Long:  "Run the classification rules on a single C# file and print the changes and a diff. The file is not written.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			src, err := os.ReadFile(absPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			svc := newMigrateService(newLogger(cmd.ErrOrStderr(), false))
			res, err := svc.MigrateSource(cmd.Context(), absPath, src)
			if err != nil {
				return fmt.Errorf("preview failed: %w", err)
			}

			switch {
			case jsonOutput:
				return renderJSON(cmd, res)
			case output:
				fmt.Fprint(cmd.OutOrStdout(), res.Output)
			default:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderPreview(res))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&output, "output", false, "Print the migrated source instead of a summary")

	return cmd
}
