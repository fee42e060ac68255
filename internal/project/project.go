package project

import (
	"time"

	"pstimetrack/internal/timelog"
)

// Project is a named bucket for time entries.
type Project struct {
	ID   int64
	Name string
}

// Summary is the time tracked for one project, counting closed entries only.
type Summary struct {
	Name  string
	Today time.Duration
	Total time.Duration
}

// Active pairs the running entry with the project it belongs to.
type Active struct {
	Project Project
	Entry   timelog.TimeEntry
}
