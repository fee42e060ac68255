// Package cli holds the pstimetrack command tree.
//
// e.g., pstimetrack start <project_name>
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"pstimetrack/internal/project"
)

const usageLine = "Usage: pstimetrack <command> [<args>]"

// App carries what every command needs to reach the tracking store.
type App struct {
	DBPath string
	// Clock overrides time.Now for the store; nil means wall clock.
	Clock  func() time.Time
	Logger *slog.Logger
}

// NewRootCmd builds the command tree. Running it without a subcommand prints
// usage followed by the status report.
func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pstimetrack",
		Short: "Track time spent on projects",
		Long: `pstimetrack records when you start and stop working on named projects
and reports time worked today and in total per project.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: app.runRoot,
	}

	// Unknown flags get the same usage line as a bad command, not cobra's error.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintln(c.OutOrStdout(), usageLine)
		return nil
	})

	cmd.AddCommand(app.createCmd())
	cmd.AddCommand(app.startCmd())
	cmd.AddCommand(app.stopCmd())
	cmd.AddCommand(app.statusCmd())
	cmd.AddCommand(app.workedTodayCmd())
	cmd.AddCommand(app.currentCmd())
	cmd.AddCommand(app.watchCmd())

	return cmd
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context, app *App) error {
	return NewRootCmd(app).ExecuteContext(ctx)
}

func (a *App) runRoot(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) > 0 {
		fmt.Fprintf(out, "Unknown command: %s\n", args[0])
		return nil
	}

	fmt.Fprintln(out, usageLine)
	return a.withRepo(cmd, func(ctx context.Context, repo *project.Repository) error {
		return printStatus(ctx, out, repo, false)
	})
}

// withRepo opens the store for the duration of fn.
func (a *App) withRepo(cmd *cobra.Command, fn func(ctx context.Context, repo *project.Repository) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []project.Option{project.WithLogger(logger)}
	if a.Clock != nil {
		opts = append(opts, project.WithClock(a.Clock))
	}

	repo, err := project.NewRepository(ctx, a.DBPath, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}()

	return fn(ctx, repo)
}
