package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Config holds optional Store settings.
type Config struct {
	Codec  *Codec           // Default: NewCodec(Logger)
	Clock  func() time.Time // Default: time.Now
	Logger *slog.Logger     // Default: slog.Default()
}

// Store is the ordered artifact collection persisted through a Port.
// It is not safe for concurrent mutation; see the package documentation.
type Store struct {
	port   Port
	codec  *Codec
	clock  func() time.Time
	logger *slog.Logger
}

// NewStore creates a store over port.
func NewStore(port Port, cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Codec == nil {
		cfg.Codec = NewCodec(cfg.Logger)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Store{
		port:   port,
		codec:  cfg.Codec,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}
}

// Append creates an artifact and stores it at the head of the collection.
//
// The id is the creation time in milliseconds. If that would not exceed every
// timestamp already stored (two appends in one millisecond, or a clock step
// backwards), the newest stored timestamp plus one is used instead, so ids
// stay unique and increasing while CreatedAt still equals the numeric id.
func (s *Store) Append(ctx context.Context, rawText, renderedMarkup string, tags []string) (Artifact, error) {
	items, err := s.load(ctx)
	if err != nil {
		return Artifact{}, err
	}

	ts := s.clock().UnixMilli()
	for _, item := range items {
		if item.CreatedAt >= ts {
			ts = item.CreatedAt + 1
		}
	}

	created := Artifact{
		ID:             strconv.FormatInt(ts, 10),
		RawText:        rawText,
		RenderedMarkup: renderedMarkup,
		Tags:           cloneTags(tags),
		CreatedAt:      ts,
	}

	updated := make([]Artifact, 0, len(items)+1)
	updated = append(updated, created)
	updated = append(updated, items...)

	if err := s.save(ctx, updated); err != nil {
		return Artifact{}, err
	}

	s.logger.Debug("artifact appended", "id", created.ID, "tags", len(created.Tags), "total", len(updated))
	return created, nil
}

// List returns the collection, newest first. Missing or unreadable data
// yields an empty list; only Port failures are returned as errors.
func (s *Store) List(ctx context.Context) ([]Artifact, error) {
	return s.load(ctx)
}

// Get returns the artifact with the given id.
func (s *Store) Get(ctx context.Context, id string) (Artifact, bool, error) {
	items, err := s.load(ctx)
	if err != nil {
		return Artifact{}, false, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, true, nil
		}
	}
	return Artifact{}, false, nil
}

// Delete removes the artifact with the given id and reports whether one was
// removed. Nothing is written when the id is unknown.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	items, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]Artifact, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}

	if err := s.save(ctx, kept); err != nil {
		return false, err
	}

	s.logger.Debug("artifact deleted", "id", id, "total", len(kept))
	return true, nil
}

// RawText returns the pre-render text of an artifact, unchanged, for export.
func (s *Store) RawText(ctx context.Context, id string) (string, bool, error) {
	item, ok, err := s.Get(ctx, id)
	if err != nil || !ok {
		return "", ok, err
	}
	return item.RawText, true, nil
}

func (s *Store) load(ctx context.Context) ([]Artifact, error) {
	blob, ok, err := s.port.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read collection: %w", ErrPersistence, err)
	}
	if !ok {
		return []Artifact{}, nil
	}
	return s.codec.Decode(blob), nil
}

func (s *Store) save(ctx context.Context, items []Artifact) error {
	blob, err := s.codec.Encode(items)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := s.port.Write(ctx, blob); err != nil {
		return fmt.Errorf("%w: write collection: %w", ErrPersistence, err)
	}
	return nil
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
