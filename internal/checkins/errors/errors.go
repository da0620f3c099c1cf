package errors

import "errors"

var (
	ErrNotFound = errors.New("check-in not found")

	ErrInvalidID = errors.New("invalid check-in ID format")

	// ErrDuplicate surfaces the unique (participant_id, session_id) index.
	ErrDuplicate = errors.New("participant already checked in to this session")
)
