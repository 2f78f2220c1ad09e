package errors

import (
	"errors"
	"fmt"
	"strings"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
// Implement this interface to customize suggestions for your CLI.
type ErrorMessenger interface {
	// NotConfiguredMessage returns the message and suggestion for a missing setting.
	NotConfiguredMessage(key string) (message, suggestion string)

	// AuthErrorMessage returns the message and suggestion for a rejected API key.
	AuthErrorMessage() (message, suggestion string)

	// PermissionDeniedMessage returns the message and suggestion for permission errors.
	PermissionDeniedMessage() (message, suggestion string)

	// ConnectionErrorMessage returns the message and suggestion for connection errors.
	// The serverURL parameter is the URL that failed to connect.
	ConnectionErrorMessage(serverURL string) (message, suggestion string)

	// TLSErrorMessage returns the message and suggestion for TLS/certificate errors.
	TLSErrorMessage(serverURL string) (message, suggestion string)

	// TimeoutErrorMessage returns the message and suggestion for timeout errors.
	TimeoutErrorMessage(serverURL string) (message, suggestion string)

	// StorageErrorMessage returns the message and suggestion for backend failures.
	StorageErrorMessage(driver string) (message, suggestion string)
}

// DefaultMessenger provides default error messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) NotConfiguredMessage(key string) (string, string) {
	return fmt.Sprintf("The %s setting is not configured.", key),
		fmt.Sprintf("Run 'tidynote config set %s <value>' or set TIDYNOTE_%s.", key, strings.ToUpper(key))
}

func (m DefaultMessenger) AuthErrorMessage() (string, string) {
	return "The completion API rejected the API key.",
		"Check the key with 'tidynote config get api_key' and set a valid one."
}

func (m DefaultMessenger) PermissionDeniedMessage() (string, string) {
	return "The API key is not allowed to use this model.",
		"Check the model name and the account balance with your provider."
}

func (m DefaultMessenger) ConnectionErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Cannot connect to server at %s", serverURL),
		"Check that:\n  - The api_url setting is correct\n  - Your network connection is working"
}

func (m DefaultMessenger) TLSErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("TLS/certificate error connecting to %s", serverURL),
		"Check that the server certificate is valid."
}

func (m DefaultMessenger) TimeoutErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Connection to %s timed out", serverURL),
		"The model may be overloaded.\nTry again in a moment or raise the timeout setting."
}

func (m DefaultMessenger) StorageErrorMessage(driver string) (string, string) {
	return fmt.Sprintf("The %s storage backend is unavailable.", driver),
		"Check the storage_driver and storage_path settings."
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) ErrorMessenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

// WrapAuthError wraps authentication-related errors with helpful guidance.
// Errors that are already CLIErrors pass through unchanged.
func WrapAuthError(err error, opts ...Option) error {
	if err == nil || isCLIError(err) {
		return err
	}

	errStr := strings.ToLower(err.Error())
	messenger := getMessenger(opts)

	if errors.Is(err, ErrNotAuthenticated) || strings.Contains(errStr, "unauthenticated") ||
		strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "(401)") {
		msg, suggestion := messenger.AuthErrorMessage()
		return &CLIError{
			Err:        fmt.Errorf("%w: %w", ErrNotAuthenticated, err),
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}

	if errors.Is(err, ErrPermissionDenied) || strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "(403)") {
		msg, suggestion := messenger.PermissionDeniedMessage()
		return &CLIError{
			Err:        fmt.Errorf("%w: %w", ErrPermissionDenied, err),
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}

	return err
}

// WrapConnectionError wraps connection-related errors with helpful guidance.
func WrapConnectionError(err error, serverURL string, opts ...Option) error {
	if err == nil || isCLIError(err) {
		return err
	}

	errStr := strings.ToLower(err.Error())
	messenger := getMessenger(opts)

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp") {
		msg, suggestion := messenger.ConnectionErrorMessage(serverURL)
		return &CLIError{
			Err:        fmt.Errorf("%w: %w", ErrConnectionFailed, err),
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	if strings.Contains(errStr, "certificate") || strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") {
		msg, suggestion := messenger.TLSErrorMessage(serverURL)
		return &CLIError{
			Err:        fmt.Errorf("%w: %w", ErrConnectionFailed, err),
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		msg, suggestion := messenger.TimeoutErrorMessage(serverURL)
		return &CLIError{
			Err:        fmt.Errorf("%w: %w", ErrConnectionFailed, err),
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	return err
}

// WrapStorageError wraps a backend failure. Unlike the other wrappers it
// always wraps, since any storage error is fatal to the command.
func WrapStorageError(err error, driver string, opts ...Option) error {
	if err == nil || isCLIError(err) {
		return err
	}

	msg, suggestion := getMessenger(opts).StorageErrorMessage(driver)
	return &CLIError{
		Err:        fmt.Errorf("%w: %w", ErrStorageUnavailable, err),
		Message:    msg,
		Details:    err.Error(),
		Suggestion: suggestion,
	}
}

// NewNotConfiguredError creates an error for a missing required setting.
func NewNotConfiguredError(key string, opts ...Option) error {
	msg, suggestion := getMessenger(opts).NotConfiguredMessage(key)
	return &CLIError{
		Err:        ErrNotConfigured,
		Message:    msg,
		Suggestion: suggestion,
	}
}

func isCLIError(err error) bool {
	var cliErr *CLIError
	return errors.As(err, &cliErr)
}
