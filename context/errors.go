package context

import "errors"

// Input building errors
var (
	// ErrInputTooLarge indicates the combined input exceeds size limits.
	ErrInputTooLarge = errors.New("input too large")

	// ErrBinaryInput indicates an input file is not text.
	ErrBinaryInput = errors.New("input is not text")
)
