package artifact

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/klauspost/compress/gzip"
)

// RetentionConfig defines which artifacts Prune removes. Zero values
// disable the corresponding rule.
type RetentionConfig struct {
	MaxAge   time.Duration // Remove artifacts older than this
	MaxItems int           // Remove the oldest beyond this count
	KeepMin  int           // Never leave fewer than this many
}

// DefaultRetentionConfig returns a policy that keeps a year of notes and
// never drops below fifty.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		MaxAge:  365 * 24 * time.Hour,
		KeepMin: 50,
	}
}

// PruneOptions configures a single Prune call.
type PruneOptions struct {
	Retention RetentionConfig

	// DryRun reports what would be removed without writing.
	DryRun bool

	// Archive receives the removed artifacts as a gzipped collection before
	// the store is rewritten. Optional.
	Archive io.Writer
}

// PruneResult summarizes a Prune call.
type PruneResult struct {
	Removed    []string `json:"removed"`
	Kept       int      `json:"kept"`
	BytesFreed int      `json:"bytes_freed"` // text and markup of removed artifacts
}

// Prune removes old artifacts according to opts.Retention. Removal starts
// from the oldest artifact.
func (s *Store) Prune(ctx context.Context, opts PruneOptions) (PruneResult, error) {
	items, err := s.load(ctx)
	if err != nil {
		return PruneResult{}, err
	}

	cfg := opts.Retention
	cutoff := time.Time{}
	if cfg.MaxAge > 0 {
		cutoff = s.clock().Add(-cfg.MaxAge)
	}

	result := PruneResult{Removed: []string{}}
	remaining := len(items)
	drop := make(map[string]bool)

	// items is newest first; walk it backwards.
	for i := len(items) - 1; i >= 0; i-- {
		if remaining <= cfg.KeepMin {
			break
		}
		item := items[i]
		tooMany := cfg.MaxItems > 0 && remaining > cfg.MaxItems
		tooOld := !cutoff.IsZero() && item.Time().Before(cutoff)
		if !tooMany && !tooOld {
			break
		}

		drop[item.ID] = true
		result.Removed = append(result.Removed, item.ID)
		result.BytesFreed += len(item.RawText) + len(item.RenderedMarkup)
		remaining--
	}
	result.Kept = remaining

	if opts.DryRun || len(drop) == 0 {
		return result, nil
	}

	removed := make([]Artifact, 0, len(drop))
	kept := make([]Artifact, 0, remaining)
	for _, item := range items {
		if drop[item.ID] {
			removed = append(removed, item)
		} else {
			kept = append(kept, item)
		}
	}

	if opts.Archive != nil {
		if err := s.writeArchive(opts.Archive, removed); err != nil {
			return PruneResult{}, err
		}
	}
	if err := s.save(ctx, kept); err != nil {
		return PruneResult{}, err
	}

	s.logger.Info("artifacts pruned", "removed", len(removed), "kept", len(kept))
	return result, nil
}

// Restore merges artifacts from an archive written by Prune. Artifacts whose
// id is already stored are skipped. It returns the number added.
func (s *Store) Restore(ctx context.Context, archive io.Reader) (int, error) {
	zr, err := gzip.NewReader(archive)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return 0, fmt.Errorf("read archive: %w", err)
	}
	archived, err := s.codec.DecodeStrict(string(data))
	if err != nil {
		return 0, fmt.Errorf("decode archive: %w", err)
	}

	items, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		seen[item.ID] = true
	}

	added := 0
	for _, item := range archived {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		items = append(items, item)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	slices.SortStableFunc(items, func(a, b Artifact) int {
		switch {
		case a.CreatedAt > b.CreatedAt:
			return -1
		case a.CreatedAt < b.CreatedAt:
			return 1
		default:
			return 0
		}
	})
	if err := s.save(ctx, items); err != nil {
		return 0, err
	}

	s.logger.Info("artifacts restored", "added", added, "total", len(items))
	return added, nil
}

func (s *Store) writeArchive(w io.Writer, items []Artifact) error {
	blob, err := s.codec.Encode(items)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(w)
	if _, err := io.WriteString(zw, blob); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}
