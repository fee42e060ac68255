package project

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is advanced by tests instead of sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRepository(t *testing.T) (*Repository, *fakeClock) {
	t.Helper()

	clock := &fakeClock{t: time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local)}
	path := filepath.Join(t.TempDir(), "pstimetrack.db")

	repo, err := NewRepository(context.Background(), path, WithClock(clock.Now))
	require.NoError(t, err, "failed to open test repository")

	t.Cleanup(func() {
		repo.Close()
	})

	return repo, clock
}

func countRows(t *testing.T, repo *Repository, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, repo.db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestSchema(t *testing.T) {
	repo, _ := newTestRepository(t)

	for _, table := range []string{"projects", "time_entries"} {
		n := countRows(t, repo, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table)
		require.Equal(t, 1, n, "table %s not found", table)
	}

	var enabled int
	require.NoError(t, repo.db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "pstimetrack.db")

	repo, err := NewRepository(ctx, path)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "alpha")
	require.NoError(t, err)
	_, err = repo.Start(ctx, "alpha")
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewRepository(ctx, path)
	require.NoError(t, err)
	defer repo.Close()

	name, ok, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alpha", name)
}

func TestCreate(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	p, err := repo.Create(ctx, "alpha")
	require.NoError(t, err)
	assert.Positive(t, p.ID)
	assert.Equal(t, "alpha", p.Name)

	_, err = repo.Create(ctx, "alpha")
	require.ErrorIs(t, err, ErrDuplicateProject)
	assert.Equal(t, 1, countRows(t, repo, "SELECT COUNT(*) FROM projects WHERE name = ?", "alpha"))

	_, err = repo.Create(ctx, "   ")
	require.ErrorIs(t, err, ErrInvalidName)
	assert.Equal(t, 1, countRows(t, repo, "SELECT COUNT(*) FROM projects"))
}

func TestStartUnknownProject(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Start(ctx, "ghost")
	require.ErrorIs(t, err, ErrProjectNotFound)
	assert.Equal(t, 0, countRows(t, repo, "SELECT COUNT(*) FROM time_entries"))
}

func TestStartUnknownProjectKeepsActiveEntry(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "alpha")
	require.NoError(t, err)
	_, err = repo.Start(ctx, "alpha")
	require.NoError(t, err)

	_, err = repo.Start(ctx, "ghost")
	require.ErrorIs(t, err, ErrProjectNotFound)

	name, ok, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alpha", name)
}

func TestStartSwitchesProjects(t *testing.T) {
	repo, clock := newTestRepository(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, "alpha")
	require.NoError(t, err)
	b, err := repo.Create(ctx, "beta")
	require.NoError(t, err)

	firstResult, err := repo.Start(ctx, "alpha")
	require.NoError(t, err)
	first := firstResult.Started
	assert.Equal(t, a.ID, first.ProjectID)
	assert.True(t, first.Active())
	assert.Nil(t, firstResult.Stopped, "nothing was running")

	clock.Advance(20 * time.Minute)
	secondResult, err := repo.Start(ctx, "beta")
	require.NoError(t, err)
	second := secondResult.Started
	assert.Equal(t, b.ID, second.ProjectID)

	require.NotNil(t, secondResult.Stopped, "switching must report the closed entry")
	assert.Equal(t, first.ID, secondResult.Stopped.ID)
	assert.Equal(t, a.ID, secondResult.Stopped.ProjectID)
	assert.Equal(t, 20*time.Minute, secondResult.Stopped.Elapsed(clock.Now()))

	assert.Equal(t, 1, countRows(t, repo, "SELECT COUNT(*) FROM time_entries WHERE end_time IS NULL"))
	assert.Equal(t, 1, countRows(t, repo,
		"SELECT COUNT(*) FROM time_entries WHERE id = ? AND end_time IS NOT NULL", first.ID))

	active, err := repo.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.Entry.ID)
	assert.Equal(t, "beta", active.Project.Name)
	assert.Equal(t, b.ID, active.Project.ID)

	summaries, err := repo.Status(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 20*time.Minute, summaries[0].Total)
	assert.Equal(t, time.Duration(0), summaries[1].Total)
}

func TestRestartSameProject(t *testing.T) {
	repo, clock := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "alpha")
	require.NoError(t, err)
	_, err = repo.Start(ctx, "alpha")
	require.NoError(t, err)
	clock.Advance(5 * time.Minute)
	_, err = repo.Start(ctx, "alpha")
	require.NoError(t, err)

	assert.Equal(t, 2, countRows(t, repo, "SELECT COUNT(*) FROM time_entries"))
	assert.Equal(t, 1, countRows(t, repo, "SELECT COUNT(*) FROM time_entries WHERE end_time IS NULL"))
}

func TestStopWithoutActiveEntry(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "alpha")
	require.NoError(t, err)

	_, err = repo.Stop(ctx)
	require.ErrorIs(t, err, ErrNoActiveEntry)
	assert.Equal(t, 0, countRows(t, repo, "SELECT COUNT(*) FROM time_entries"))

	_, err = repo.Start(ctx, "alpha")
	require.NoError(t, err)
	_, err = repo.Stop(ctx)
	require.NoError(t, err)

	_, err = repo.Stop(ctx)
	require.ErrorIs(t, err, ErrNoActiveEntry)
	assert.Equal(t, 1, countRows(t, repo, "SELECT COUNT(*) FROM time_entries WHERE end_time IS NOT NULL"))
}

func TestStatusAfterTracking(t *testing.T) {
	repo, clock := newTestRepository(t)
	ctx := context.Background()

	for _, name := range []string{"P", "Q"} {
		_, err := repo.Create(ctx, name)
		require.NoError(t, err)
	}

	_, err := repo.Start(ctx, "P")
	require.NoError(t, err)
	clock.Advance(95*time.Second + 500*time.Millisecond)
	stopped, err := repo.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, 95*time.Second+500*time.Millisecond, stopped.Elapsed(clock.Now()))

	summaries, err := repo.Status(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "P", summaries[0].Name)
	assert.InDelta(t, float64(95500*time.Millisecond), float64(summaries[0].Today), float64(time.Millisecond))
	assert.InDelta(t, float64(95500*time.Millisecond), float64(summaries[0].Total), float64(time.Millisecond))

	assert.Equal(t, "Q", summaries[1].Name)
	assert.Zero(t, summaries[1].Today)
	assert.Zero(t, summaries[1].Total)
}

func TestStatusIgnoresActiveEntry(t *testing.T) {
	repo, clock := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "P")
	require.NoError(t, err)
	_, err = repo.Start(ctx, "P")
	require.NoError(t, err)
	clock.Advance(time.Hour)

	summaries, err := repo.Status(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].Today)
	assert.Zero(t, summaries[0].Total)
}

func TestStatusTodayUsesCalendarDate(t *testing.T) {
	repo, clock := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "P")
	require.NoError(t, err)

	// Yesterday, 22:00-23:00.
	clock.t = time.Date(2026, 10, 16, 22, 0, 0, 0, time.Local)
	_, err = repo.Start(ctx, "P")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = repo.Stop(ctx)
	require.NoError(t, err)

	// Today, 00:30-01:00.
	clock.t = time.Date(2026, 10, 17, 0, 30, 0, 0, time.Local)
	_, err = repo.Start(ctx, "P")
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)
	_, err = repo.Stop(ctx)
	require.NoError(t, err)

	clock.t = time.Date(2026, 10, 17, 12, 0, 0, 0, time.Local)
	summaries, err := repo.Status(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 30*time.Minute, summaries[0].Today)
	assert.Equal(t, 90*time.Minute, summaries[0].Total)
}

func TestStatusEmpty(t *testing.T) {
	repo, _ := newTestRepository(t)

	summaries, err := repo.Status(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestWorkedToday(t *testing.T) {
	repo, clock := newTestRepository(t)
	ctx := context.Background()

	for _, name := range []string{"P", "Q"} {
		_, err := repo.Create(ctx, name)
		require.NoError(t, err)
	}

	worked, err := repo.WorkedToday(ctx)
	require.NoError(t, err)
	assert.Zero(t, worked)

	_, err = repo.Start(ctx, "P")
	require.NoError(t, err)
	clock.Advance(40 * time.Minute)
	_, err = repo.Start(ctx, "Q")
	require.NoError(t, err)
	clock.Advance(15 * time.Minute)
	_, err = repo.Stop(ctx)
	require.NoError(t, err)

	worked, err = repo.WorkedToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 55*time.Minute, worked)

	closed, err := repo.TodayClosed(ctx)
	require.NoError(t, err)
	assert.Equal(t, worked, closed)

	_, err = repo.Start(ctx, "P")
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)

	worked, err = repo.WorkedToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 65*time.Minute, worked)
}

func TestWorkedTodayCountsActiveEntryFromYesterday(t *testing.T) {
	repo, clock := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "P")
	require.NoError(t, err)

	clock.t = time.Date(2026, 10, 16, 23, 0, 0, 0, time.Local)
	_, err = repo.Start(ctx, "P")
	require.NoError(t, err)

	clock.t = time.Date(2026, 10, 17, 1, 0, 0, 0, time.Local)
	worked, err := repo.WorkedToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, worked)

	closed, err := repo.TodayClosed(ctx)
	require.NoError(t, err)
	assert.Zero(t, closed)
}

func TestCurrent(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, ok, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Create(ctx, "alpha")
	require.NoError(t, err)
	_, err = repo.Start(ctx, "alpha")
	require.NoError(t, err)

	name, ok, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alpha", name)

	_, err = repo.Stop(ctx)
	require.NoError(t, err)

	name, ok, err = repo.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, name)

	_, err = repo.Active(ctx)
	require.ErrorIs(t, err, ErrNoActiveEntry)
}

func TestReadsSecondPrecisionTimestamps(t *testing.T) {
	repo, clock := newTestRepository(t)
	ctx := context.Background()

	p, err := repo.Create(ctx, "legacy")
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx,
		"INSERT INTO time_entries (project_id, start_time) VALUES (?, ?)",
		p.ID, "2026-10-17 08:00:00")
	require.NoError(t, err)

	active, err := repo.Active(ctx)
	require.NoError(t, err)
	assert.True(t, time.Date(2026, 10, 17, 8, 0, 0, 0, time.Local).Equal(active.Entry.StartTime))

	worked, err := repo.WorkedToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, worked)

	clock.Advance(30 * time.Minute)
	stopped, err := repo.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, stopped.Elapsed(clock.Now()))
}

func TestForeignKeyEnforced(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.db.Exec(
		"INSERT INTO time_entries (project_id, start_time) VALUES (?, ?)",
		999, "2026-10-17 08:00:00.000000")
	require.Error(t, err)
}
