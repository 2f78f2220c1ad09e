// Package errors provides CLI error patterns with user-friendly messaging.
//
// Core types:
//   - CLIError: Wraps errors with message, suggestion, and details
//   - ErrorMessenger: Interface for customizing error messages
//
// Sentinel errors for common scenarios:
//   - ErrNotConfigured: A required setting (usually the API key) is missing
//   - ErrNotAuthenticated: The completion API rejected the key
//   - ErrPermissionDenied: The key lacks access (or the account has no balance)
//   - ErrConnectionFailed: The completion API is unreachable
//   - ErrCompletionFailed: The completion API returned an unusable answer
//   - ErrStorageUnavailable: The storage backend failed
//
// Example usage:
//
//	if err := organizer.Organize(ctx, input); err != nil {
//	    err = tidyerrors.WrapAuthError(err)
//	    err = tidyerrors.WrapConnectionError(err, settings.APIURL)
//	    return err
//	}
//
//	if tidyerrors.IsConfigError(err) {
//	    // prompt for the API key
//	}
package errors
