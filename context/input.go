package context

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// InputLimits bounds the text assembled by InputBuilder.
type InputLimits struct {
	MaxFileSize  int64 // Max size per file in bytes
	MaxTotalSize int64 // Max total size in bytes
	MaxFileCount int   // Max number of files
}

// DefaultInputLimits returns limits sized for a single completion request.
func DefaultInputLimits() InputLimits {
	return InputLimits{
		MaxFileSize:  64 * 1024,
		MaxTotalSize: 128 * 1024,
		MaxFileCount: 20,
	}
}

// InputBuilder collects note text from files and inline content into the
// single input passed to Organize.
type InputBuilder struct {
	workDir string
	limits  InputLimits
	parts   []inputPart
	logger  *slog.Logger
}

type inputPart struct {
	path    string
	content []byte
}

// NewInputBuilder creates a builder resolving relative paths against workDir.
func NewInputBuilder(workDir string) *InputBuilder {
	return &InputBuilder{
		workDir: workDir,
		limits:  DefaultInputLimits(),
		logger:  slog.Default(),
	}
}

// WithLimits sets custom limits.
func (b *InputBuilder) WithLimits(limits InputLimits) *InputBuilder {
	b.limits = limits
	return b
}

// WithLogger sets the logger used for skipped glob matches.
func (b *InputBuilder) WithLogger(logger *slog.Logger) *InputBuilder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// AddFile adds a single file. "-" is not special here; callers read stdin
// themselves and use AddContent.
func (b *InputBuilder) AddFile(path string) error {
	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(b.workDir, path)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > b.limits.MaxFileSize {
		return fmt.Errorf("%w: %s is %d bytes > max %d",
			ErrInputTooLarge, path, info.Size(), b.limits.MaxFileSize)
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if isBinary(content) {
		return fmt.Errorf("%w: %s (%s)", ErrBinaryInput, path, detectMimeType(content))
	}

	b.parts = append(b.parts, inputPart{path: path, content: content})
	return nil
}

// AddGlob adds every regular file matching pattern in lexical order.
// Files that cannot be added are skipped and logged.
func (b *InputBuilder) AddGlob(pattern string) error {
	matches, err := filepath.Glob(filepath.Join(b.workDir, pattern))
	if err != nil {
		return fmt.Errorf("glob %s: %w", pattern, err)
	}

	for _, match := range matches {
		relPath, err := filepath.Rel(b.workDir, match)
		if err != nil {
			b.logger.Debug("skipping file with invalid path", "path", match, "error", err)
			continue
		}

		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		if err := b.AddFile(relPath); err != nil {
			b.logger.Warn("skipping input file", "path", relPath, "error", err)
		}
	}

	return nil
}

// AddContent adds text that did not come from a file, such as stdin or a
// command-line argument.
func (b *InputBuilder) AddContent(name string, content []byte) {
	b.parts = append(b.parts, inputPart{path: name, content: content})
}

// Build joins all parts with a blank line between them. Parts are not
// labelled; the model sees one continuous note.
func (b *InputBuilder) Build() (string, error) {
	if len(b.parts) > b.limits.MaxFileCount {
		return "", fmt.Errorf("%w: %d files > max %d",
			ErrInputTooLarge, len(b.parts), b.limits.MaxFileCount)
	}

	var buf bytes.Buffer
	var totalSize int64
	for i, part := range b.parts {
		content := bytes.TrimRight(part.content, "\r\n")
		if !utf8.Valid(content) {
			return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrBinaryInput, part.path)
		}

		totalSize += int64(len(content))
		if totalSize > b.limits.MaxTotalSize {
			return "", fmt.Errorf("%w: total size %d > max %d",
				ErrInputTooLarge, totalSize, b.limits.MaxTotalSize)
		}

		if i > 0 {
			buf.WriteString("\n\n")
		}
		buf.Write(content)
	}

	return buf.String(), nil
}

// FileCount returns the number of parts added.
func (b *InputBuilder) FileCount() int {
	return len(b.parts)
}

// TotalSize returns the total size of all parts.
func (b *InputBuilder) TotalSize() int64 {
	var total int64
	for _, p := range b.parts {
		total += int64(len(p.content))
	}
	return total
}

// isBinary detects if content is binary by checking for null bytes.
func isBinary(data []byte) bool {
	sample := data
	if len(sample) > 8192 {
		sample = sample[:8192]
	}
	return bytes.Contains(sample, []byte{0})
}

// detectMimeType names common binary formats by their magic bytes.
func detectMimeType(data []byte) string {
	if len(data) < 4 {
		return "application/octet-stream"
	}

	switch {
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}):
		return "image/png"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return "image/gif"
	case bytes.HasPrefix(data, []byte("PK")):
		return "application/zip"
	case bytes.HasPrefix(data, []byte("%PDF")):
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
