package notify

import (
	"context"
	"time"
)

// EventType identifies what happened to the note collection.
type EventType string

// Event type constants.
const (
	EventArtifactSaved   EventType = "artifact_saved"
	EventArtifactDeleted EventType = "artifact_deleted"
	EventOrganizeFailed  EventType = "organize_failed"
)

// Severity constants.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes a change worth telling someone about.
type Event struct {
	Type       EventType      `json:"type"`
	ArtifactID string         `json:"artifact_id,omitempty"`
	Message    string         `json:"message"`
	Severity   string         `json:"severity"` // SeverityInfo, SeverityWarning, SeverityError
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Notifier sends notifications about events.
type Notifier interface {
	// Notify sends a notification. Implementations should be non-blocking
	// and handle errors gracefully (log, don't crash).
	Notify(ctx context.Context, event Event) error
}

type serviceContextKey string

const notifierServiceKey serviceContextKey = "tidynote.notifier"

// WithNotifier adds a Notifier to the context.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierServiceKey, n)
}

// NotifierFromContext extracts the Notifier from context.
// Returns nil if no notifier is configured.
func NotifierFromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierServiceKey).(Notifier); ok {
		return n
	}
	return nil
}

// MustNotifierFromContext extracts the Notifier or panics.
func MustNotifierFromContext(ctx context.Context) Notifier {
	n := NotifierFromContext(ctx)
	if n == nil {
		panic("tidynote: Notifier not found in context")
	}
	return n
}
