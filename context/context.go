package context

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/tidynote"
	"github.com/randalmurphal/tidynote/artifact"
	"github.com/randalmurphal/tidynote/metrics"
	"github.com/randalmurphal/tidynote/prompt"
)

// serviceContextKey is a private type for context keys to avoid collisions
type serviceContextKey string

// Context keys for tidynote services
const (
	organizerServiceKey serviceContextKey = "tidynote.organizer"
	storeServiceKey     serviceContextKey = "tidynote.store"
	promptServiceKey    serviceContextKey = "tidynote.prompts"
	metricsServiceKey   serviceContextKey = "tidynote.metrics"
	loggerServiceKey    serviceContextKey = "tidynote.logger"
)

// WithOrganizer adds an Organizer to the context
func WithOrganizer(ctx context.Context, org *tidynote.Organizer) context.Context {
	return context.WithValue(ctx, organizerServiceKey, org)
}

// Organizer extracts the Organizer from context
func Organizer(ctx context.Context) *tidynote.Organizer {
	if org, ok := ctx.Value(organizerServiceKey).(*tidynote.Organizer); ok {
		return org
	}
	return nil
}

// MustOrganizer extracts the Organizer or panics
func MustOrganizer(ctx context.Context) *tidynote.Organizer {
	org := Organizer(ctx)
	if org == nil {
		panic("tidynote/context: Organizer not found in context")
	}
	return org
}

// WithStore adds an artifact store to the context
func WithStore(ctx context.Context, store *artifact.Store) context.Context {
	return context.WithValue(ctx, storeServiceKey, store)
}

// Store extracts the artifact store from context
func Store(ctx context.Context) *artifact.Store {
	if store, ok := ctx.Value(storeServiceKey).(*artifact.Store); ok {
		return store
	}
	return nil
}

// MustStore extracts the artifact store or panics
func MustStore(ctx context.Context) *artifact.Store {
	store := Store(ctx)
	if store == nil {
		panic("tidynote/context: artifact.Store not found in context")
	}
	return store
}

// WithPrompt adds a prompt loader to the context
func WithPrompt(ctx context.Context, loader *prompt.Loader) context.Context {
	return context.WithValue(ctx, promptServiceKey, loader)
}

// Prompt extracts prompt loader from context
func Prompt(ctx context.Context) *prompt.Loader {
	if loader, ok := ctx.Value(promptServiceKey).(*prompt.Loader); ok {
		return loader
	}
	return nil
}

// WithMetrics adds a metrics registry to the context
func WithMetrics(ctx context.Context, m *metrics.Metrics) context.Context {
	return context.WithValue(ctx, metricsServiceKey, m)
}

// Metrics extracts the metrics registry from context. The nil result is
// safe to record into.
func Metrics(ctx context.Context) *metrics.Metrics {
	if m, ok := ctx.Value(metricsServiceKey).(*metrics.Metrics); ok {
		return m
	}
	return nil
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerServiceKey, logger)
}

// Logger returns the context logger, or slog.Default() if none is set.
func Logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerServiceKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
