package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three caller-visible failure classes. Handlers
// map these to HTTP statuses with errors.Is; everything else is a 500.
// Notification publish failures are deliberately not represented here:
// they are logged and swallowed, never surfaced to the caller.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidState = errors.New("invalid state")
)

// NotFound wraps ErrNotFound with the entity kind and id.
func NotFound(kind string, id int) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

// InvalidState wraps ErrInvalidState with a reason.
func InvalidState(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}

// PermissionDeniedError reports which action was denied for which user.
type PermissionDeniedError struct {
	UserID int
	Action string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("user %d is not allowed to %s", e.UserID, e.Action)
}

func (e *PermissionDeniedError) Unwrap() error {
	return ErrUnauthorized
}
