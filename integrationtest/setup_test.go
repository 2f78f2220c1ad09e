package integrationtest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/randalmurphal/tidynote/config"
	tnctx "github.com/randalmurphal/tidynote/context"
	"github.com/randalmurphal/tidynote/testutil"
)

// setupTempRepo creates a directory that looks like a git checkout, with an
// optional project config file.
func setupTempRepo(t *testing.T, localConfig string) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("Mkdir .git: %v", err)
	}
	if localConfig != "" {
		path := filepath.Join(dir, config.LocalConfigName)
		if err := os.WriteFile(path, []byte(localConfig), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return dir
}

// writePrompt installs a project prompt override.
func writePrompt(t *testing.T, repoPath, name, content string) {
	t.Helper()
	dir := filepath.Join(repoPath, ".tidynote", "prompts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// testSettings returns valid settings that store under dir and talk to the
// fake completion server.
func testSettings(completion *testutil.CompletionServer, driver, dir string) config.Settings {
	return config.Settings{
		APIURL:        completion.URL,
		APIKey:        "sk-integration",
		Model:         "test-model",
		MaxTokens:     256,
		MaxRetries:    1,
		Timeout:       5 * time.Second,
		StorageDriver: driver,
		StoragePath:   dir,
		StorageKey:    "ai_organizer_saved_items",
		LogLevel:      "debug",
		LogFormat:     "text",
	}
}

// setupServices builds services from settings and closes them when the
// test ends.
func setupServices(t *testing.T, settings config.Settings, projectDir string) *tnctx.Services {
	t.Helper()
	s, err := tnctx.NewServices(context.Background(), tnctx.Config{
		Settings:   settings,
		ProjectDir: projectDir,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
