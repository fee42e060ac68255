package project

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicateProject indicates a project with the same name already exists.
	ErrDuplicateProject = errors.New("project already exists")
	// ErrProjectNotFound indicates no project has the requested name.
	ErrProjectNotFound = errors.New("project not found")
	// ErrNoActiveEntry indicates nothing is being tracked.
	ErrNoActiveEntry = errors.New("no active time entry")
	// ErrInvalidName indicates a blank project name.
	ErrInvalidName = errors.New("project name cannot be empty")
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
