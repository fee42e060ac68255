package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"pstimetrack/internal"
	"pstimetrack/internal/project"
	"pstimetrack/internal/timelog"
)

func (a *App) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <project_name>",
		Short: "Create a new project",
		Args:  cobra.ArbitraryArgs,

		// Project names may start with a dash.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) != 1 {
				fmt.Fprintln(out, "Usage: pstimetrack create <project_name>")
				return nil
			}
			name := args[0]

			return a.withRepo(cmd, func(ctx context.Context, repo *project.Repository) error {
				_, err := repo.Create(ctx, name)
				switch {
				case errors.Is(err, project.ErrDuplicateProject):
					fmt.Fprintf(out, "Project '%s' already exists.\n", name)
				case errors.Is(err, project.ErrInvalidName):
					fmt.Fprintln(out, "Project name cannot be empty.")
				case err != nil:
					return err
				default:
					fmt.Fprintf(out, "Project '%s' created.\n", name)
				}
				return nil
			})
		},
	}
}

func (a *App) startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <project_name>",
		Short: "Start tracking a project, stopping whatever is running",
		Args:  cobra.ArbitraryArgs,

		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) != 1 {
				fmt.Fprintln(out, "Usage: pstimetrack start <project_name>")
				return nil
			}
			name := args[0]

			return a.withRepo(cmd, func(ctx context.Context, repo *project.Repository) error {
				res, err := repo.Start(ctx, name)
				switch {
				case errors.Is(err, project.ErrProjectNotFound):
					fmt.Fprintf(out, "Project '%s' does not exist.\n", name)
				case err != nil:
					return err
				default:
					if res.Stopped != nil {
						fmt.Fprintln(out, "Tracking stopped.")
					}
					fmt.Fprintf(out, "Tracking started for project '%s'.\n", name)
				}
				return nil
			})
		},
	}
}

func (a *App) stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop tracking",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return a.withRepo(cmd, func(ctx context.Context, repo *project.Repository) error {
				_, err := repo.Stop(ctx)
				switch {
				case errors.Is(err, project.ErrNoActiveEntry):
					fmt.Fprintln(out, "No active tracking to stop.")
				case err != nil:
					return err
				default:
					fmt.Fprintln(out, "Tracking stopped.")
				}
				return nil
			})
		},
	}
}

func (a *App) statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show time tracked today and in total per project",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")
			return a.withRepo(cmd, func(ctx context.Context, repo *project.Repository) error {
				return printStatus(ctx, cmd.OutOrStdout(), repo, jsonOutput)
			})
		},
	}

	cmd.Flags().Bool("json", false, "Output in JSON format")

	return cmd
}

func (a *App) workedTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "worked_today",
		Aliases: []string{"worked-today"},
		Short:   "Show time worked today across all projects, as HH:MM",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(ctx context.Context, repo *project.Repository) error {
				worked, err := repo.WorkedToday(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), timelog.FormatClock(worked))
				return nil
			})
		},
	}
}

func (a *App) currentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the project being tracked, or ---",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(ctx context.Context, repo *project.Repository) error {
				name, ok, err := repo.Current(ctx)
				if err != nil {
					return err
				}
				if !ok {
					name = noProject
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
				return nil
			})
		},
	}
}

func (a *App) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live view of the current project and today's totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(ctx context.Context, repo *project.Repository) error {
				m, err := internal.NewModel(ctx, repo)
				if err != nil {
					return err
				}

				ctx, cancel := context.WithCancel(ctx)
				defer cancel()

				p := tea.NewProgram(m,
					tea.WithAltScreen(),
					tea.WithContext(ctx),
					tea.WithOutput(cmd.OutOrStdout()),
				)

				ticker := time.NewTicker(time.Second)
				defer ticker.Stop()

				go func() {
					for {
						select {
						case <-ctx.Done():
							return
						case <-ticker.C:
							p.Send(internal.MsgTick{})
						}
					}
				}()

				if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
					return fmt.Errorf("error running watch: %w", err)
				}
				return nil
			})
		},
	}
}
