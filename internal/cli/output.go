package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"pstimetrack/internal/project"
	"pstimetrack/internal/timelog"
)

// noProject is printed by current when nothing is tracked.
const noProject = "---"

func printStatus(ctx context.Context, out io.Writer, repo *project.Repository, jsonOutput bool) error {
	summaries, err := repo.Status(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		projects := make([]map[string]interface{}, 0, len(summaries))
		for _, s := range summaries {
			projects = append(projects, map[string]interface{}{
				"name":          s.Name,
				"today_seconds": s.Today.Seconds(),
				"total_seconds": s.Total.Seconds(),
			})
		}
		return json.NewEncoder(out).Encode(map[string]interface{}{
			"projects": projects,
		})
	}

	// The renderer inspects out, so pipes and files get plain text.
	nameStyle := lipgloss.NewRenderer(out).NewStyle().Bold(true)
	for _, s := range summaries {
		fmt.Fprintf(out, "Project %s Today: %s, Total time: %s,\n",
			nameStyle.Render(fmt.Sprintf("%-12s", s.Name)),
			timelog.FormatClock(s.Today),
			timelog.FormatClock(s.Total),
		)
	}
	return nil
}
