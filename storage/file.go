package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

const (
	plainExt = ".json"
	gzipExt  = ".json.gz"
)

// FileConfig configures a File backend.
type FileConfig struct {
	// Root is the directory holding one file per key. Default: ./data
	Root string

	// CompressAbove gzips values longer than this many bytes. Zero disables
	// compression.
	CompressAbove int
}

// File stores each key as a file under a root directory. Writes go to a
// temporary file that is renamed into place, so readers never observe a
// partial value.
type File struct {
	root          string
	compressAbove int
	mu            sync.Mutex
}

// NewFile creates the root directory if needed and returns a File backend.
func NewFile(cfg FileConfig) (*File, error) {
	if cfg.Root == "" {
		cfg.Root = "./data"
	}
	if cfg.CompressAbove < 0 {
		cfg.CompressAbove = 0
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &File{root: cfg.Root, compressAbove: cfg.CompressAbove}, nil
}

func (f *File) Driver() Driver { return DriverFile }

// Root returns the storage directory.
func (f *File) Root() string { return f.root }

// sanitizeKey keeps keys inside the root: no traversal, no absolute paths,
// no separators.
func sanitizeKey(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q contains '..'", ErrInvalidKey, key)
	}
	if strings.ContainsAny(key, `/\`) || filepath.IsAbs(key) {
		return "", fmt.Errorf("%w: %q contains a path separator", ErrInvalidKey, key)
	}
	return key, nil
}

func (f *File) paths(key string) (plain, compressed string, err error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	base := filepath.Join(f.root, k)
	return base + plainExt, base + gzipExt, nil
}

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	plain, compressed, err := f.paths(key)
	if err != nil {
		return "", false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(compressed)
	switch {
	case err == nil:
		value, err := gunzip(data)
		if err != nil {
			return "", false, fmt.Errorf("read %s: %w", compressed, err)
		}
		return value, true, nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", false, fmt.Errorf("read %s: %w", compressed, err)
	}

	data, err = os.ReadFile(plain)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", plain, err)
	}
	return string(data), true, nil
}

func (f *File) Put(ctx context.Context, key, value string) error {
	plain, compressed, err := f.paths(key)
	if err != nil {
		return err
	}

	target, stale := plain, compressed
	data := []byte(value)
	if f.compressAbove > 0 && len(value) > f.compressAbove {
		target, stale = compressed, plain
		if data, err = gzipBytes(data); err != nil {
			return fmt.Errorf("compress %s: %w", key, err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := writeAtomic(target, data); err != nil {
		return err
	}
	if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale %s: %w", stale, err)
	}
	return nil
}

func (f *File) Close() error { return nil }

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzip(data []byte) (string, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
