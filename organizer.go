package tidynote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/randalmurphal/tidynote/artifact"
	"github.com/randalmurphal/tidynote/metrics"
	"github.com/randalmurphal/tidynote/notify"
	"github.com/randalmurphal/tidynote/render"
	"github.com/randalmurphal/tidynote/tags"
)

// Completer restructures raw text. completion.Client implements it.
type Completer interface {
	Complete(ctx context.Context, text string) (string, error)
}

// Result is one organized note before it is saved.
type Result struct {
	Content string   `json:"content"` // restructured text
	HTML    string   `json:"html"`
	Tags    []string `json:"tags"`
}

// Options configures an Organizer. Only Store is required for the
// persistence methods; only Completer is required for Organize.
type Options struct {
	Completer Completer
	Store     *artifact.Store
	Renderer  *render.Renderer // Default: render.New()
	Notifier  notify.Notifier  // Default: notify.NopNotifier
	Metrics   metrics.Recorder // Default: metrics.Nop
	Logger    *slog.Logger     // Default: slog.Default()
	Clock     func() time.Time // Default: time.Now; stamps events
}

// Organizer runs the organize pipeline and manages saved notes.
// Mutations are serialized so one Organizer can back concurrent requests.
type Organizer struct {
	completer Completer
	store     *artifact.Store
	renderer  *render.Renderer
	notifier  notify.Notifier
	metrics   metrics.Recorder
	logger    *slog.Logger
	clock     func() time.Time

	mu sync.Mutex
}

// New creates an Organizer.
func New(opts Options) *Organizer {
	o := &Organizer{
		completer: opts.Completer,
		store:     opts.Store,
		renderer:  opts.Renderer,
		notifier:  opts.Notifier,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		clock:     opts.Clock,
	}
	if o.renderer == nil {
		o.renderer = render.New()
	}
	if o.notifier == nil {
		o.notifier = notify.NopNotifier{}
	}
	if o.metrics == nil {
		o.metrics = metrics.Nop{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	return o
}

// Organize sends input to the completer and processes the reply.
// Blank input is rejected before the completer is called.
func (o *Organizer) Organize(ctx context.Context, input string) (Result, error) {
	if strings.TrimSpace(input) == "" {
		return Result{}, ErrEmptyInput
	}
	if o.completer == nil {
		return Result{}, ErrNoCompleter
	}

	var content string
	err := metrics.Track(ctx, o.metrics, "organize", func() error {
		var err error
		content, err = o.completer.Complete(ctx, input)
		return err
	})
	if err != nil {
		o.emit(ctx, notify.Event{
			Type:     notify.EventOrganizeFailed,
			Message:  "organize failed",
			Severity: notify.SeverityError,
			Metadata: map[string]any{"error": err.Error(), "input_chars": len([]rune(input))},
		})
		return Result{}, fmt.Errorf("organize: %w", err)
	}

	result := o.Process(content)
	o.logger.Debug("organized note", "input_chars", len([]rune(input)), "tags", len(result.Tags))
	return result, nil
}

// Process renders content and extracts its tags without calling the
// completer. Tags keep scan order and duplicates.
func (o *Organizer) Process(content string) Result {
	return Result{
		Content: content,
		HTML:    o.renderer.Render(content),
		Tags:    tags.Extract(content),
	}
}

// Save appends r to the collection, newest first.
func (o *Organizer) Save(ctx context.Context, r Result) (artifact.Artifact, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var saved artifact.Artifact
	err := metrics.Track(ctx, o.metrics, "save", func() error {
		var err error
		saved, err = o.store.Append(ctx, r.Content, r.HTML, r.Tags)
		return err
	})
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("save note: %w", err)
	}

	o.refreshCount(ctx)
	o.emit(ctx, notify.Event{
		Type:       notify.EventArtifactSaved,
		ArtifactID: saved.ID,
		Message:    "note saved",
		Severity:   notify.SeverityInfo,
		Metadata:   map[string]any{"tags": len(saved.Tags)},
	})
	return saved, nil
}

// List returns saved notes, newest first.
func (o *Organizer) List(ctx context.Context) ([]artifact.Artifact, error) {
	items, err := o.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return items, nil
}

// Get returns the note with id or ErrNotFound.
func (o *Organizer) Get(ctx context.Context, id string) (artifact.Artifact, error) {
	item, ok, err := o.store.Get(ctx, id)
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("get note %s: %w", id, err)
	}
	if !ok {
		return artifact.Artifact{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, nil
}

// Delete removes the note with id and reports whether it existed. Deleting
// an unknown id changes nothing.
func (o *Organizer) Delete(ctx context.Context, id string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var removed bool
	err := metrics.Track(ctx, o.metrics, "delete", func() error {
		var err error
		removed, err = o.store.Delete(ctx, id)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("delete note %s: %w", id, err)
	}
	if !removed {
		return false, nil
	}

	o.refreshCount(ctx)
	o.emit(ctx, notify.Event{
		Type:       notify.EventArtifactDeleted,
		ArtifactID: id,
		Message:    "note deleted",
		Severity:   notify.SeverityInfo,
	})
	return true, nil
}

// Export writes the saved note's restructured text to w unchanged.
func (o *Organizer) Export(ctx context.Context, id string, w io.Writer) error {
	item, err := o.Get(ctx, id)
	if err != nil {
		return err
	}
	return artifact.Export(w, item)
}

// ExportFile writes the saved note's text to path and returns the path
// written. See artifact.ExportFile for directory handling.
func (o *Organizer) ExportFile(ctx context.Context, id, path string) (string, error) {
	item, err := o.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return artifact.ExportFile(path, item)
}

// Prune removes old notes according to opts. See artifact.Store.Prune.
func (o *Organizer) Prune(ctx context.Context, opts artifact.PruneOptions) (artifact.PruneResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var result artifact.PruneResult
	err := metrics.Track(ctx, o.metrics, "prune", func() error {
		var err error
		result, err = o.store.Prune(ctx, opts)
		return err
	})
	if err != nil {
		return artifact.PruneResult{}, fmt.Errorf("prune notes: %w", err)
	}
	if !opts.DryRun && len(result.Removed) > 0 {
		o.refreshCount(ctx)
		for _, id := range result.Removed {
			o.emit(ctx, notify.Event{
				Type:       notify.EventArtifactDeleted,
				ArtifactID: id,
				Message:    "note pruned",
				Severity:   notify.SeverityInfo,
			})
		}
	}
	return result, nil
}

// Restore merges notes from an archive written by Prune and returns how
// many were added.
func (o *Organizer) Restore(ctx context.Context, archive io.Reader) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	added, err := o.store.Restore(ctx, archive)
	if err != nil {
		return 0, fmt.Errorf("restore notes: %w", err)
	}
	if added > 0 {
		o.refreshCount(ctx)
	}
	return added, nil
}

func (o *Organizer) emit(ctx context.Context, event notify.Event) {
	event.Timestamp = o.clock()
	if err := o.notifier.Notify(ctx, event); err != nil {
		o.logger.Warn("notification failed", "type", event.Type, "error", err)
	}
}

type artifactCounter interface {
	SetArtifacts(n int)
}

func (o *Organizer) refreshCount(ctx context.Context) {
	counter, ok := o.metrics.(artifactCounter)
	if !ok {
		return
	}
	items, err := o.store.List(ctx)
	if err != nil {
		return
	}
	counter.SetArtifacts(len(items))
}
