package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/randalmurphal/tidynote/config"
	tnctx "github.com/randalmurphal/tidynote/context"
)

// app carries the process streams and the global flag values shared by all
// commands.
type app struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	workDir string

	configFile string
	flagValues map[string]string // config key -> global flag override

	resolver *config.Resolver
	resolved *config.Resolved
	logger   *slog.Logger
}

// resolve loads the layered configuration once.
func (a *app) resolve() *config.Resolved {
	if a.resolved != nil {
		return a.resolved
	}
	cfg := config.DefaultResolverConfig(a.configFile)
	cfg.Logger = a.logger
	a.resolver = config.NewResolver(cfg)
	a.resolved = a.resolver.ResolveWithFlags(a.flagValues)

	if settings, err := config.FromResolved(a.resolved); err == nil {
		a.logger = newLogger(a.stderr, settings.LogLevel, settings.LogFormat)
	}
	return a.resolved
}

// settings returns validated settings.
func (a *app) settings() (config.Settings, error) {
	settings, err := config.FromResolved(a.resolve())
	if err != nil {
		return config.Settings{}, fmt.Errorf("invalid configuration:\n%w", err)
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// services builds the service graph. The caller must Close it.
func (a *app) services(ctx context.Context) (*tnctx.Services, error) {
	settings, err := a.settings()
	if err != nil {
		return nil, err
	}
	return tnctx.NewServices(ctx, tnctx.Config{
		Settings:   settings,
		ProjectDir: a.resolver.GitRoot(),
		Logger:     a.logger,
	})
}

// withServices runs fn with services injected into ctx.
func (a *app) withServices(ctx context.Context, fn func(ctx context.Context, s *tnctx.Services) error) error {
	s, err := a.services(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			a.logger.Warn("close storage", "error", err)
		}
	}()
	return fn(s.InjectAll(ctx), s)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
