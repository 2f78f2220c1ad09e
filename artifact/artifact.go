package artifact

import (
	"context"
	"errors"
	"time"
)

// Artifact errors
var (
	// ErrNotFound is for callers that need an error for an unknown id.
	// Store itself reports not-found as a false result.
	ErrNotFound = errors.New("artifact not found")

	// ErrPersistence wraps every failure of the underlying Port.
	ErrPersistence = errors.New("artifact persistence failed")
)

// Artifact is one saved, organized note. It is never mutated after Append.
type Artifact struct {
	ID             string   `json:"id"`
	RawText        string   `json:"content"`
	RenderedMarkup string   `json:"html"`
	Tags           []string `json:"tags"`
	CreatedAt      int64    `json:"timestamp"` // ms since epoch, equal to ID
}

// Time returns CreatedAt as a time.Time.
func (a Artifact) Time() time.Time {
	return time.UnixMilli(a.CreatedAt)
}

// Port is the storage slot holding the encoded collection.
type Port interface {
	// Read returns the blob and whether it exists.
	Read(ctx context.Context) (blob string, ok bool, err error)

	// Write replaces the blob.
	Write(ctx context.Context, blob string) error
}
