package internal

import (
	"fmt"
	"strings"
	"time"

	"pstimetrack/internal/timelog"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	projectNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// formatDuration renders a running timer with seconds.
func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func (m *Model) mainView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("pstimetrack"))
	sb.WriteString("\n\n")

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.currentView(),
		"  ",
		m.statusView(),
	)
	sb.WriteString(boxes)
	sb.WriteString("\n\n")

	if m.Err != nil {
		sb.WriteString(errorStyle.Render("Error: " + m.Err.Error()))
		sb.WriteString("\n")
	} else if m.Notice != "" {
		sb.WriteString(m.Notice)
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("Stop: s | Reload: r | Quit: q"))

	return sb.String()
}

func (m *Model) currentView() string {
	var sb strings.Builder

	if m.Current == nil {
		sb.WriteString("Current: ---\n\n")
		sb.WriteString(inactiveStyle.Render("Not tracking"))
	} else {
		sb.WriteString(fmt.Sprintf("Current: %s\n\n", projectNameStyle.Render(m.Current.Project.Name)))
		sb.WriteString(timerRunningStyle.Render(formatDuration(m.Timer.Elapsed())))
		sb.WriteString(fmt.Sprintf("\n%s", inactiveStyle.Render(
			"since "+m.Current.Entry.StartTime.Format("Jan 02 15:04"))))
	}

	sb.WriteString(fmt.Sprintf("\n\nWorked today: %s", timelog.FormatClock(m.WorkedToday())))

	return boxStyle.Width(30).Render(sb.String())
}

func (m *Model) statusView() string {
	var sb strings.Builder

	sb.WriteString("Projects\n\n")
	if len(m.Summaries) == 0 {
		sb.WriteString(inactiveStyle.Render("No projects yet."))
	}

	for _, s := range m.Summaries {
		name := fmt.Sprintf("%-12s", s.Name)
		if m.Current != nil && m.Current.Project.Name == s.Name {
			name = projectNameStyle.Render(name)
		}
		sb.WriteString(fmt.Sprintf("%s Today: %s  Total: %s\n",
			name, timelog.FormatClock(s.Today), timelog.FormatClock(s.Total)))
	}

	return boxStyle.Width(44).Render(sb.String())
}
