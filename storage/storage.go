package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Driver names a backend implementation.
type Driver string

// Supported drivers.
const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverS3       Driver = "s3"
)

// Drivers lists every supported driver.
var Drivers = []Driver{DriverMemory, DriverFile, DriverSQLite, DriverPostgres, DriverS3}

// Storage errors
var (
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrInvalidKey    = errors.New("invalid storage key")
	ErrClosed        = errors.New("storage backend closed")
)

// Backend is a string key/value store.
type Backend interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error

	// Driver reports which implementation this is.
	Driver() Driver

	// Close releases resources held by the backend.
	Close() error
}

// ParseDriver validates a driver name. Matching is case-insensitive.
func ParseDriver(name string) (Driver, error) {
	d := Driver(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Drivers {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDriver, name)
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	return nil
}

// Slot binds a Backend to a single key. It implements artifact.Port.
type Slot struct {
	backend Backend
	key     string
}

// NewSlot returns a Slot reading and writing key on backend.
func NewSlot(backend Backend, key string) *Slot {
	return &Slot{backend: backend, key: key}
}

// Key returns the slot's key.
func (s *Slot) Key() string { return s.key }

// Read returns the stored blob and whether it exists.
func (s *Slot) Read(ctx context.Context) (string, bool, error) {
	return s.backend.Get(ctx, s.key)
}

// Write replaces the stored blob.
func (s *Slot) Write(ctx context.Context, blob string) error {
	return s.backend.Put(ctx, s.key, blob)
}
