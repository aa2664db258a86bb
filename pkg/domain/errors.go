package domain

import (
	"errors"
	"strings"
)

// ErrSnapshotNotFound is returned when a diagram ID cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrUnknownNode is returned when a command references a node ID that
// does not exist in the current diagram.
var ErrUnknownNode = errors.New("unknown node")

// ErrUnknownLink is returned when a command references a link index that
// does not exist in the current diagram.
var ErrUnknownLink = errors.New("unknown link")

// ErrUnknownLabel is returned when a command references an independent
// label ID that does not exist in the current diagram.
var ErrUnknownLabel = errors.New("unknown label")

// ValidationError describes a single rejected field of a command or
// change set. It is fatal to that command only; prior state is kept.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// ValidationErrors aggregates every violation found during pre-commit
// validation, so callers can report all failures at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// OrNil returns the aggregate as an error, or nil when empty.
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
