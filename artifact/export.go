package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultExportName is the file name used when the caller gives none.
const DefaultExportName = "整理结果.txt"

// Export writes the artifact's raw text to w with no translation.
func Export(w io.Writer, a Artifact) error {
	if _, err := io.WriteString(w, a.RawText); err != nil {
		return fmt.Errorf("export artifact %s: %w", a.ID, err)
	}
	return nil
}

// ExportFile writes the artifact's raw text to path. If path is a directory,
// DefaultExportName is created inside it.
func ExportFile(path string, a Artifact) (string, error) {
	if path == "" {
		path = DefaultExportName
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultExportName)
	}

	if err := os.WriteFile(path, []byte(a.RawText), 0o644); err != nil {
		return "", fmt.Errorf("export artifact %s: %w", a.ID, err)
	}
	return path, nil
}
