package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/cache"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/config"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/differ"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/filestore"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/formatter"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/history"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/parser"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/tui"
	"github.com/abdidvp/fixie2nunit/internal/adapters/outbound/workspace"
	"github.com/abdidvp/fixie2nunit/internal/application"
	"github.com/abdidvp/fixie2nunit/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var (
		opts       domain.MigrateOptions
		jsonOutput bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "fixie2nunit <solution|project|dir>",
		Short: "Migrate Fixie tests to NUnit",
		Long: "fixie2nunit adds [TestFixture] and [Test] attributes to test classes and methods that Fixie discovers by name, " +
			"adds the NUnit using directive and formats the migrated files.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), verbose)
			svc := newMigrateService(logger)

			report, err := svc.Migrate(cmd.Context(), args[0], opts)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			if jsonOutput {
				return renderJSON(cmd, report)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Compute the migration without writing any file")
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "Show unified diffs of changed files")
	cmd.Flags().BoolVar(&opts.NoFormat, "no-format", false, "Skip the formatting pass")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Reprocess files the cache marks as settled")
	cmd.Flags().BoolVar(&opts.RequireClean, "require-clean", false, "Refuse to run when the git worktree has uncommitted changes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every file to stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newPreviewCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

// newLogger writes warnings and errors to w; verbose adds per-file detail.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newMigrateService(logger *slog.Logger) *application.MigrateService {
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

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
