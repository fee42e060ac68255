package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pstimetrack/internal/timelog"

	_ "modernc.org/sqlite"
)

// Repository is the tracking store. It owns the projects and time_entries
// tables and keeps at most one time entry open at any time.
type Repository struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces time.Now as the source of start and end times.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// NewRepository opens (creating if needed) the database at path and makes
// sure the schema exists.
func NewRepository(ctx context.Context, path string, opts ...Option) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps the pragmas below in effect for every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{
		db:     db,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(repo)
	}

	if err := repo.init(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			repo.logger.Error("error closing db", "error", closeErr)
		}
		return nil, err
	}

	return repo, nil
}

func (r *Repository) init(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := r.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	projectsQuery := `
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)
	`
	if _, err := r.db.ExecContext(ctx, projectsQuery); err != nil {
		return fmt.Errorf("failed to create projects table: %w", err)
	}

	timeEntriesQuery := `
	CREATE TABLE IF NOT EXISTS time_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	)
	`
	if _, err := r.db.ExecContext(ctx, timeEntriesQuery); err != nil {
		return fmt.Errorf("failed to create time_entries table: %w", err)
	}

	indexQuery := `CREATE INDEX IF NOT EXISTS idx_time_entries_project ON time_entries(project_id)`
	if _, err := r.db.ExecContext(ctx, indexQuery); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Create adds a project. A name that is already taken yields
// ErrDuplicateProject and leaves the table untouched.
func (r *Repository) Create(ctx context.Context, name string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}

	result, err := r.db.ExecContext(ctx, "INSERT INTO projects (name) VALUES (?)", name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateProject
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get project id: %w", err)
	}

	r.logger.Info("project created", "project", name, "id", id)
	return &Project{ID: id, Name: name}, nil
}

// StartResult is the entry Start opened and, if one was running, the entry it
// closed.
type StartResult struct {
	Started timelog.TimeEntry
	Stopped *timelog.TimeEntry
}

// Start closes whatever entry is running and opens a new one for the named
// project, in a single transaction.
func (r *Repository) Start(ctx context.Context, name string) (*StartResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var projectID int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM projects WHERE name = ?", name).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	now := r.now()
	stopped, err := r.stopActive(ctx, tx, now)
	if err != nil && !errors.Is(err, ErrNoActiveEntry) {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO time_entries (project_id, start_time) VALUES (?, ?)",
		projectID, timelog.FormatTimestamp(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get time entry id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if stopped != nil {
		r.logger.Info("tracking stopped", "entry_id", stopped.ID, "project_id", stopped.ProjectID)
	}
	r.logger.Info("tracking started", "project", name, "entry_id", id)

	return &StartResult{
		Started: timelog.TimeEntry{
			ID:        id,
			ProjectID: projectID,
			StartTime: now,
		},
		Stopped: stopped,
	}, nil
}

// Stop closes the active entry. It returns ErrNoActiveEntry when nothing is
// being tracked.
func (r *Repository) Stop(ctx context.Context) (*timelog.TimeEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry, err := r.stopActive(ctx, tx, r.now())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("tracking stopped", "entry_id", entry.ID, "project_id", entry.ProjectID)
	return entry, nil
}

func (r *Repository) stopActive(ctx context.Context, tx *sql.Tx, now time.Time) (*timelog.TimeEntry, error) {
	var entry timelog.TimeEntry
	var startTime string
	err := tx.QueryRowContext(ctx,
		`SELECT id, project_id, CAST(start_time AS TEXT)
		 FROM time_entries
		 WHERE end_time IS NULL
		 ORDER BY id DESC
		 LIMIT 1`,
	).Scan(&entry.ID, &entry.ProjectID, &startTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveEntry
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active entry: %w", err)
	}

	entry.StartTime, err = timelog.ParseTimestamp(startTime)
	if err != nil {
		return nil, fmt.Errorf("entry %d: %w", entry.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE time_entries SET end_time = ? WHERE end_time IS NULL",
		timelog.FormatTimestamp(now),
	); err != nil {
		return nil, fmt.Errorf("failed to stop time entry: %w", err)
	}

	entry.EndTime = now
	return &entry, nil
}

// Status reports today's and total tracked time for every project, in
// creation order. Only closed entries count. "Today" means entries whose
// start_time falls on the current local date.
func (r *Repository) Status(ctx context.Context) ([]Summary, error) {
	query := `
		SELECT
			p.name,
			COALESCE(SUM(CASE
				WHEN te.end_time IS NOT NULL AND date(te.start_time) = ?
				THEN (julianday(te.end_time) - julianday(te.start_time)) * 86400.0
			END), 0),
			COALESCE(SUM(CASE
				WHEN te.end_time IS NOT NULL
				THEN (julianday(te.end_time) - julianday(te.start_time)) * 86400.0
			END), 0)
		FROM projects p
		LEFT JOIN time_entries te ON te.project_id = p.id
		GROUP BY p.id, p.name
		ORDER BY p.id
	`

	rows, err := r.db.QueryContext(ctx, query, timelog.FormatDate(r.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		var today, total float64
		if err := rows.Scan(&s.Name, &today, &total); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		s.Today = secondsToDuration(today)
		s.Total = secondsToDuration(total)
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status rows: %w", err)
	}

	return summaries, nil
}

// TodayClosed sums closed entries started today across all projects.
func (r *Repository) TodayClosed(ctx context.Context) (time.Duration, error) {
	var seconds float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM((julianday(end_time) - julianday(start_time)) * 86400.0), 0)
		 FROM time_entries
		 WHERE end_time IS NOT NULL AND date(start_time) = ?`,
		timelog.FormatDate(r.now()),
	).Scan(&seconds)
	if err != nil {
		return 0, fmt.Errorf("failed to sum today's entries: %w", err)
	}
	return secondsToDuration(seconds), nil
}

// WorkedToday is TodayClosed plus the running time of the active entry. The
// active entry counts in full even when it started before midnight.
func (r *Repository) WorkedToday(ctx context.Context) (time.Duration, error) {
	worked, err := r.TodayClosed(ctx)
	if err != nil {
		return 0, err
	}

	active, err := r.Active(ctx)
	if errors.Is(err, ErrNoActiveEntry) {
		return worked, nil
	}
	if err != nil {
		return 0, err
	}

	return worked + active.Entry.Elapsed(r.now()), nil
}

// Active returns the running entry with its project, or ErrNoActiveEntry.
func (r *Repository) Active(ctx context.Context) (*Active, error) {
	var a Active
	var startTime string
	err := r.db.QueryRowContext(ctx,
		`SELECT te.id, te.project_id, p.name, CAST(te.start_time AS TEXT)
		 FROM time_entries te
		 JOIN projects p ON p.id = te.project_id
		 WHERE te.end_time IS NULL
		 ORDER BY te.id DESC
		 LIMIT 1`,
	).Scan(&a.Entry.ID, &a.Entry.ProjectID, &a.Project.Name, &startTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveEntry
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active entry: %w", err)
	}

	a.Project.ID = a.Entry.ProjectID
	a.Entry.StartTime, err = timelog.ParseTimestamp(startTime)
	if err != nil {
		return nil, fmt.Errorf("entry %d: %w", a.Entry.ID, err)
	}

	return &a, nil
}

// Current returns the name of the project being tracked. ok is false when
// nothing is active.
func (r *Repository) Current(ctx context.Context) (name string, ok bool, err error) {
	active, err := r.Active(ctx)
	if errors.Is(err, ErrNoActiveEntry) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return active.Project.Name, true, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// secondsToDuration rounds to milliseconds, the resolution of julianday().
func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}
