package model

import (
	"projecttracker/internal/apperr"
)

// Status is the closed three-state lifecycle shared by tasks, deliverables
// and phases. No entity may hold anything else after a core operation.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the three recognized states.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus validates a raw status string before it reaches persistence.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", apperr.InvalidState("unrecognized status %q", raw)
	}
	return s, nil
}
