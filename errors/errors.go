package errors

import "errors"

// Common CLI errors with actionable guidance.
var (
	// ErrNotConfigured indicates a required setting is missing.
	ErrNotConfigured = errors.New("not configured")

	// ErrNotAuthenticated indicates the API key was rejected.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrConnectionFailed indicates the server is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrPermissionDenied indicates insufficient permissions.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrCompletionFailed indicates the completion call did not produce text.
	ErrCompletionFailed = errors.New("completion failed")

	// ErrStorageUnavailable indicates the storage backend failed.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
