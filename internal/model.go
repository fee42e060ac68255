package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pstimetrack/internal/project"
	"pstimetrack/internal/timelog"
	"pstimetrack/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
)

// reloadEvery is how many ticks pass between store reloads, so changes made
// from another shell show up.
const reloadEvery = 30

type MsgTick struct{}

// Store is the part of the tracking store the live view needs.
type Store interface {
	Active(ctx context.Context) (*project.Active, error)
	Status(ctx context.Context) ([]project.Summary, error)
	TodayClosed(ctx context.Context) (time.Duration, error)
	Stop(ctx context.Context) (*timelog.TimeEntry, error)
}

type Model struct {
	Current     *project.Active
	Summaries   []project.Summary
	ClosedToday time.Duration
	Timer       *timer.Timer
	Notice      string
	Err         error

	ctx   context.Context
	store Store
	ticks int
}

func NewModel(ctx context.Context, store Store) (*Model, error) {
	return NewModelWithClock(ctx, store, time.Now)
}

func NewModelWithClock(ctx context.Context, store Store, now func() time.Time) (*Model, error) {
	m := &Model{
		Timer: timer.NewWithClock(now),
		ctx:   ctx,
		store: store,
	}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload reads the active entry and the aggregates from the store.
func (m *Model) Reload() error {
	active, err := m.store.Active(m.ctx)
	switch {
	case errors.Is(err, project.ErrNoActiveEntry):
		m.Current = nil
		m.Timer.Reset()
	case err != nil:
		return err
	default:
		m.Current = active
		m.Timer.StartAt(active.Entry.StartTime)
	}

	summaries, err := m.store.Status(m.ctx)
	if err != nil {
		return err
	}
	m.Summaries = summaries

	closed, err := m.store.TodayClosed(m.ctx)
	if err != nil {
		return err
	}
	m.ClosedToday = closed

	return nil
}

// WorkedToday mirrors Repository.WorkedToday using the live timer.
func (m *Model) WorkedToday() time.Duration {
	if m.Timer.Running() {
		return m.ClosedToday + m.Timer.Elapsed()
	}
	return m.ClosedToday
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		m.ticks++
		if m.ticks%reloadEvery == 0 {
			m.Err = m.Reload()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) View() string {
	return m.mainView()
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "s":
		_, err := m.store.Stop(m.ctx)
		switch {
		case errors.Is(err, project.ErrNoActiveEntry):
			m.Notice = "No active tracking to stop."
		case err != nil:
			m.Err = err
		default:
			m.Timer.Stop()
			m.Notice = fmt.Sprintf("Tracking stopped after %s.", formatDuration(m.Timer.Elapsed()))
			m.Err = m.Reload()
		}
	case "r":
		m.Notice = ""
		m.Err = m.Reload()
	}
	return m, nil
}
