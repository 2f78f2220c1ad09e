package tidynote

import "errors"

// Organizer errors
var (
	// ErrEmptyInput indicates the text to organize was blank.
	ErrEmptyInput = errors.New("input is empty")

	// ErrNoCompleter indicates Organize was called on an organizer built
	// without a completion client.
	ErrNoCompleter = errors.New("no completion client configured")

	// ErrNotFound indicates no saved note has the requested id.
	ErrNotFound = errors.New("note not found")
)
