package storage

import (
	"context"
	"fmt"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver Driver // Default: file

	// Path is the directory for the file driver and the database file for
	// the sqlite driver.
	Path string

	// DSN is the connection string for the postgres driver.
	DSN string

	// CompressAbove applies to the file driver; see FileConfig.
	CompressAbove int

	S3 S3Config
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverFile
	}
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(FileConfig{Root: opts.Path, CompressAbove: opts.CompressAbove})
	case DriverSQLite:
		return NewSQLite(ctx, opts.Path)
	case DriverPostgres:
		return NewPostgres(ctx, opts.DSN)
	case DriverS3:
		return NewS3(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
