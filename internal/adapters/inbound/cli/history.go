package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/history"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/tui"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/workspace"
)

func newHistoryCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "Show past migration runs",
		Long:  "List the runs recorded next to a solution or project. path defaults to the current directory.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			root, err := historyRoot(path)
			if err != nil {
				return err
			}

			entries, err := history.New().Load(root)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}

			if jsonOutput {
				return renderJSON(cmd, entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output history as JSON")

	return cmd
}

// historyRoot is the directory of the descriptor path names, or path itself
// when it is a directory without one.
func historyRoot(path string) (string, error) {
	if descriptor, err := workspace.Resolve(path); err == nil {
		return filepath.Dir(descriptor), nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return absPath, nil
}
