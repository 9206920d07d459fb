package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────

var (
	// ErrStaleWrite is returned by storage when a versioned row changed
	// between read and write.
	ErrStaleWrite = errors.New("stale write: row version changed")

	ErrUserNotFound  = errors.New("user not found")
	ErrTaskNotFound  = errors.New("task not found")
	ErrQuestNotFound = errors.New("quest not found")

	ErrQuestCompleted = errors.New("quest already completed")
)

// ─── Kinded Errors ──────────────────────────────────────────────────────────

// Kind classifies a failure at the system boundary.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

// Error is a failure with a kind the API layer can map to a status code.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidArgument reports a malformed input field.
func InvalidArgument(field, reason string) *Error {
	return &Error{
		Kind:    KindInvalidArgument,
		Message: fmt.Sprintf("invalid %s: %s", field, reason),
	}
}

// NotFound wraps a sentinel such as ErrTaskNotFound with the missing id.
func NotFound(sentinel error, id string) *Error {
	return &Error{
		Kind: KindNotFound,
		Err:  fmt.Errorf("%w: %s", sentinel, id),
	}
}

// Conflict reports a write that could not be applied to the current state.
func Conflict(message string, err error) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of the first *Error in err's chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
