package artifact

import (
	"context"
	"errors"
)

// memPort is an in-memory Port with failure injection.
type memPort struct {
	blob     string
	ok       bool
	readErr  error
	writeErr error
	writes   int
}

func (p *memPort) Read(ctx context.Context) (string, bool, error) {
	if p.readErr != nil {
		return "", false, p.readErr
	}
	return p.blob, p.ok, nil
}

func (p *memPort) Write(ctx context.Context, blob string) error {
	if p.writeErr != nil {
		return p.writeErr
	}
	p.blob = blob
	p.ok = true
	p.writes++
	return nil
}

var errDiskFull = errors.New("disk full")
