package context

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/randalmurphal/tidynote"
	"github.com/randalmurphal/tidynote/artifact"
	"github.com/randalmurphal/tidynote/completion"
	"github.com/randalmurphal/tidynote/config"
	tidyerrors "github.com/randalmurphal/tidynote/errors"
	"github.com/randalmurphal/tidynote/metrics"
	"github.com/randalmurphal/tidynote/notify"
	"github.com/randalmurphal/tidynote/prompt"
	"github.com/randalmurphal/tidynote/storage"
)

// Services wraps all tidynote services for convenient initialization
type Services struct {
	Settings  config.Settings
	Backend   storage.Backend
	Store     *artifact.Store
	Completer *completion.Client // nil when api_key is unset
	Prompts   *prompt.Loader
	Notifier  notify.Notifier
	Metrics   *metrics.Metrics
	Organizer *tidynote.Organizer
	Logger    *slog.Logger
}

// InjectAll adds all configured services to the context
func (s *Services) InjectAll(ctx context.Context) context.Context {
	if s.Organizer != nil {
		ctx = WithOrganizer(ctx, s.Organizer)
	}
	if s.Store != nil {
		ctx = WithStore(ctx, s.Store)
	}
	if s.Prompts != nil {
		ctx = WithPrompt(ctx, s.Prompts)
	}
	if s.Metrics != nil {
		ctx = WithMetrics(ctx, s.Metrics)
	}
	if s.Notifier != nil {
		ctx = notify.WithNotifier(ctx, s.Notifier)
	}
	if s.Logger != nil {
		ctx = WithLogger(ctx, s.Logger)
	}
	return ctx
}

// RequireCompleter reports a not-configured error when no API key was set.
func (s *Services) RequireCompleter() error {
	if s.Completer == nil {
		return tidyerrors.NewNotConfiguredError(config.KeyAPIKey)
	}
	return nil
}

// Close releases the storage backend.
func (s *Services) Close() error {
	if s.Backend == nil {
		return nil
	}
	return s.Backend.Close()
}

// Config configures NewServices
type Config struct {
	Settings config.Settings

	// ProjectDir is searched for prompt overrides. Empty uses only the
	// embedded prompts.
	ProjectDir string

	// Backend replaces the backend named by Settings, mainly for tests.
	Backend storage.Backend

	// HTTPClient is used for completion requests when set.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// NewServices builds every service from validated settings. The caller owns
// the result and must Close it.
func NewServices(ctx context.Context, cfg Config) (*Services, error) {
	settings := cfg.Settings
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Services{
		Settings: settings,
		Logger:   logger,
		Prompts:  prompt.NewLoader(cfg.ProjectDir),
		Metrics:  metrics.New(),
		Notifier: notify.New(settings.WebhookURL, logger),
	}

	backend := cfg.Backend
	if backend == nil {
		var err error
		backend, err = storage.Open(ctx, settings.StorageOptions())
		if err != nil {
			return nil, tidyerrors.WrapStorageError(err, settings.StorageDriver)
		}
	}
	s.Backend = backend
	s.Store = artifact.NewStore(storage.NewSlot(backend, settings.StorageKey), artifact.Config{Logger: logger})

	if settings.APIKey != "" {
		instruction, err := s.Prompts.SystemInstruction(nil)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("load system instruction: %w", err)
		}
		client, err := completion.NewClient(completion.Config{
			APIURL:      settings.APIURL,
			APIKey:      settings.APIKey,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			MaxRetries:  settings.MaxRetries,
			Timeout:     settings.Timeout,
			Instruction: instruction,
			HTTPClient:  cfg.HTTPClient,
			Logger:      logger,
		})
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.Completer = client
	}

	opts := tidynote.Options{
		Store:    s.Store,
		Notifier: s.Notifier,
		Metrics:  s.Metrics,
		Logger:   logger,
	}
	// A nil *completion.Client must not become a non-nil interface.
	if s.Completer != nil {
		opts.Completer = s.Completer
	}
	s.Organizer = tidynote.New(opts)

	logger.Debug("services ready",
		"driver", backend.Driver(),
		"storage_key", settings.StorageKey,
		"completion", s.Completer != nil,
	)
	return s, nil
}
