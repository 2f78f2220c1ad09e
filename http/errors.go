// Package http provides the retrying JSON client used to reach the
// completion API.
package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Status sentinels. APIError unwraps to the one matching its status code.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("authentication failed")
	ErrForbidden    = errors.New("permission denied")
	ErrNotFound     = errors.New("resource not found")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrServerError  = errors.New("server error")
)

// Provider sentinels, derived from the error type in the response body.
var (
	// ErrQuotaExceeded means the account balance or quota is spent. Providers
	// send it as 402 or as a 429 with an insufficient_quota type. Waiting
	// does not help, so it is never retryable.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrContextLength means the input plus max_tokens exceeds the model's
	// context window.
	ErrContextLength = errors.New("context length exceeded")
)

// APIError is a non-2xx response from the completion API.
type APIError struct {
	Service    string // e.g. "completion"
	StatusCode int
	Message    string

	// Type is the provider's error type or code, if it sent one
	// (e.g. "insufficient_quota", "context_length_exceeded").
	Type string

	Endpoint  string
	RequestID string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s API error (%d) at %s", e.Service, e.StatusCode, e.Endpoint)
	if e.RequestID != "" {
		fmt.Fprintf(&b, " [%s]", e.RequestID)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Unwrap returns the status sentinel and, when the body named one, the
// provider sentinel.
func (e *APIError) Unwrap() []error {
	var errs []error
	if s := statusSentinel(e.StatusCode); s != nil {
		errs = append(errs, s)
	}
	if p := e.providerSentinel(); p != nil {
		errs = append(errs, p)
	}
	return errs
}

func statusSentinel(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	if code >= 500 {
		return ErrServerError
	}
	return nil
}

func (e *APIError) providerSentinel() error {
	t := strings.ToLower(e.Type)
	switch {
	case e.StatusCode == http.StatusPaymentRequired,
		strings.Contains(t, "insufficient_quota"), strings.Contains(t, "insufficient_balance"):
		return ErrQuotaExceeded
	case strings.Contains(t, "context_length"):
		return ErrContextLength
	}
	return nil
}

// IsUnauthorized reports whether the API rejected the key.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRateLimited reports whether the request was throttled.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsQuotaExceeded reports whether the account has run out of quota.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// IsRetryable reports whether a later attempt could succeed.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrQuotaExceeded) {
		return false
	}
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError)
}
