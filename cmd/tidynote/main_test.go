package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/randalmurphal/tidynote/artifact"
	"github.com/randalmurphal/tidynote/testutil"
)

const modelReply = "# 周报\n## 工作\n- 完成 **接口** 设计 #工作\n- 整理 #工作 笔记 #学习\n"

// setupEnv isolates HOME and points storage and the completion API at
// test doubles.
func setupEnv(t *testing.T, apiKey string) *testutil.CompletionServer {
	t.Helper()
	completion := testutil.NewCompletionServer(t, modelReply)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("TIDYNOTE_STORAGE_DRIVER", "file")
	t.Setenv("TIDYNOTE_STORAGE_PATH", t.TempDir())
	t.Setenv("TIDYNOTE_API_URL", completion.URL)
	t.Setenv("TIDYNOTE_API_KEY", apiKey)
	t.Setenv("TIDYNOTE_MAX_RETRIES", "0")
	t.Setenv("TIDYNOTE_LOG_LEVEL", "warn")
	return completion
}

func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), code
}

var savedIDPattern = regexp.MustCompile(`Saved (\d+)`)

func TestNoteLifecycle(t *testing.T) {
	completion := setupEnv(t, "sk-test-key")

	stdout, stderr, code := runCLI(t, "", "organize", "--save", "这周", "完成了接口设计")
	if code != 0 {
		t.Fatalf("organize exit = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "## 工作") {
		t.Errorf("organize stdout = %q", stdout)
	}
	if !strings.Contains(stdout, "Tags: #工作 #学习") {
		t.Errorf("organize stdout missing unique tags: %q", stdout)
	}
	if got := completion.Requests()[0].UserText(); got != "这周 完成了接口设计" {
		t.Errorf("user text = %q", got)
	}

	m := savedIDPattern.FindStringSubmatch(stderr)
	if m == nil {
		t.Fatalf("no saved id in stderr: %q", stderr)
	}
	id := m[1]

	stdout, _, code = runCLI(t, "", "list")
	if code != 0 || !strings.Contains(stdout, id) || !strings.Contains(stdout, "# 周报") {
		t.Errorf("list exit = %d, stdout = %q", code, stdout)
	}

	stdout, _, code = runCLI(t, "", "show", "--html", id)
	if code != 0 || !strings.Contains(stdout, "<h1>周报</h1>") {
		t.Errorf("show --html exit = %d, stdout = %q", code, stdout)
	}

	stdout, _, code = runCLI(t, "", "export", "-o", "-", id)
	if code != 0 || stdout != modelReply {
		t.Errorf("export to stdout exit = %d, stdout = %q", code, stdout)
	}

	dir := t.TempDir()
	_, stderr, code = runCLI(t, "", "export", "--output", dir, id)
	if code != 0 {
		t.Fatalf("export exit = %d, stderr: %s", code, stderr)
	}
	data, err := os.ReadFile(filepath.Join(dir, artifact.DefaultExportName))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != modelReply {
		t.Errorf("exported = %q, want %q", data, modelReply)
	}

	stdout, _, code = runCLI(t, "", "delete", id)
	if code != 0 || !strings.Contains(stdout, "Deleted "+id) {
		t.Errorf("delete exit = %d, stdout = %q", code, stdout)
	}

	_, stderr, code = runCLI(t, "", "show", id)
	if code != 1 || !strings.Contains(stderr, "note not found") {
		t.Errorf("show after delete exit = %d, stderr = %q", code, stderr)
	}

	_, stderr, code = runCLI(t, "", "delete", id)
	if code != 1 || !strings.Contains(stderr, "note not found") {
		t.Errorf("second delete exit = %d, stderr = %q", code, stderr)
	}
}

func TestOrganize_Input(t *testing.T) {
	completion := setupEnv(t, "sk-test-key")

	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(first, []byte("第一段\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("第二段"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"files", "", []string{"-f", first, "-f", second}, "第一段\n\n第二段"},
		{"stdin", "从标准输入\n", nil, "从标准输入"},
		{"dash", "dash input", []string{"-"}, "dash input"},
		{"file and args", "", []string{"-f", first, "补充"}, "第一段\n\n补充"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"organize"}, tt.args...)
			_, stderr, code := runCLI(t, tt.stdin, args...)
			if code != 0 {
				t.Fatalf("exit = %d, stderr: %s", code, stderr)
			}
			reqs := completion.Requests()
			if len(reqs) != i+1 {
				t.Fatalf("requests = %d, want %d", len(reqs), i+1)
			}
			if got := reqs[i].UserText(); got != tt.want {
				t.Errorf("user text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOrganize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		stdin   string
		args    []string
		wantErr string
	}{
		{"no api key", "", "", []string{"organize", "text"}, "The api_key setting is not configured."},
		{"blank input", "sk-test-key", "   \n", []string{"organize"}, "input is empty"},
		{"missing file", "sk-test-key", "", []string{"organize", "-f", "/nonexistent/note.txt"}, "stat /nonexistent/note.txt"},
		{"unknown flag", "sk-test-key", "", []string{"organize", "--bogus"}, "unknown flag: --bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completion := setupEnv(t, tt.apiKey)

			_, stderr, code := runCLI(t, tt.stdin, tt.args...)
			if code != 1 {
				t.Errorf("exit = %d, want 1", code)
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantErr)
			}
			if n := len(completion.Requests()); n != 0 {
				t.Errorf("completion called %d times", n)
			}
		})
	}
}

func TestRenderAndTags(t *testing.T) {
	setupEnv(t, "")

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"render stdin", "# 标题\n**粗体**", []string{"render"}, "<h1>标题</h1><br><strong>粗体</strong>\n"},
		{"render args", "", []string{"render", "* 一", "项"}, "<ul><li>一 项</li></ul>\n"},
		{"tags", "", []string{"tags", "#a 和 #b 还有 #a"}, "#a\n#b\n#a\n"},
		{"tags unique", "", []string{"tags", "-u", "#a 和 #b 还有 #a"}, "#a\n#b\n"},
		{"tags none", "", []string{"tags", "无标签"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := runCLI(t, tt.stdin, tt.args...)
			if code != 0 {
				t.Fatalf("exit = %d, stderr: %s", code, stderr)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestConfigCommands(t *testing.T) {
	setupEnv(t, "sk-test-key")

	stdout, stderr, code := runCLI(t, "", "config", "set", "model", "Qwen/Qwen3-32B")
	if code != 0 {
		t.Fatalf("config set exit = %d, stderr: %s", code, stderr)
	}
	globalPath := filepath.Join(os.Getenv("HOME"), ".config", "tidynote", "config.yaml")
	if !strings.Contains(stdout, globalPath) {
		t.Errorf("config set stdout = %q, want path %s", stdout, globalPath)
	}

	stdout, _, _ = runCLI(t, "", "config", "get", "model")
	if stdout != "Qwen/Qwen3-32B\n" {
		t.Errorf("config get model = %q", stdout)
	}

	stdout, _, _ = runCLI(t, "", "config", "get", "api_key")
	if stdout != "****-key\n" {
		t.Errorf("config get api_key = %q, want masked", stdout)
	}
	stdout, _, _ = runCLI(t, "", "config", "get", "--reveal", "api_key")
	if stdout != "sk-test-key\n" {
		t.Errorf("config get --reveal api_key = %q", stdout)
	}

	stdout, _, code = runCLI(t, "", "config", "get")
	if code != 0 {
		t.Fatalf("config get exit = %d", code)
	}
	for _, want := range []string{"KEY", "Qwen/Qwen3-32B", "global", "env", "default"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config get output missing %q:\n%s", want, stdout)
		}
	}

	_, stderr, code = runCLI(t, "", "config", "set", "colour", "blue")
	if code != 1 || !strings.Contains(stderr, "unknown config key: colour") {
		t.Errorf("set unknown key exit = %d, stderr = %q", code, stderr)
	}

	if _, stderr, code = runCLI(t, "", "config", "unset", "model"); code != 0 {
		t.Fatalf("config unset exit = %d, stderr: %s", code, stderr)
	}
	stdout, _, _ = runCLI(t, "", "config", "get", "model")
	if stdout != "Qwen/Qwen3-8B\n" {
		t.Errorf("config get model after unset = %q, want default", stdout)
	}
}

func TestGlobalFlags(t *testing.T) {
	setupEnv(t, "")
	t.Setenv("TIDYNOTE_MAX_TOKENS", "lots")

	_, stderr, code := runCLI(t, "", "list")
	if code != 1 || !strings.Contains(stderr, `max_tokens: "lots" is not an integer`) {
		t.Errorf("invalid config exit = %d, stderr = %q", code, stderr)
	}

	t.Setenv("TIDYNOTE_MAX_TOKENS", "256")
	_, stderr, code = runCLI(t, "", "--storage", "memory", "list")
	if code != 0 || !strings.Contains(stderr, "No saved notes.") {
		t.Errorf("list with memory storage exit = %d, stderr = %q", code, stderr)
	}

	_, stderr, code = runCLI(t, "", "--storage", "tape", "list")
	if code != 1 || !strings.Contains(stderr, "invalid configuration") {
		t.Errorf("unknown driver exit = %d, stderr = %q", code, stderr)
	}

	cfgFile := filepath.Join(t.TempDir(), "override.yaml")
	if err := os.WriteFile(cfgFile, []byte("model: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	stdout, _, _ := runCLI(t, "", "--config", cfgFile, "config", "get", "model")
	if stdout != "from-file\n" {
		t.Errorf("--config model = %q", stdout)
	}
}

func TestUsage(t *testing.T) {
	setupEnv(t, "")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no args", nil, 2, "Commands:"},
		{"help", []string{"--help"}, 0, "organize"},
		{"command help", []string{"export", "--help"}, 0, "--output"},
		{"unknown command", []string{"frobnicate"}, 1, `unknown command "frobnicate"`},
		{"config without subcommand", []string{"config"}, 2, "unset"},
		{"show without id", []string{"show"}, 1, "expected 1 argument(s), got 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runCLI(t, "", tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantErr)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		text  string
		limit int
		want  string
	}{
		{"\n\n  第一行  \n第二行", 10, "第一行"},
		{"一二三四五六", 3, "一二三…"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := preview(tt.text, tt.limit); got != tt.want {
			t.Errorf("preview(%q, %d) = %q, want %q", tt.text, tt.limit, got, tt.want)
		}
	}
}

func TestPruneRestore(t *testing.T) {
	setupEnv(t, "sk-test-key")

	for i := 0; i < 3; i++ {
		if _, stderr, code := runCLI(t, "", "organize", "--save", "note"); code != 0 {
			t.Fatalf("organize exit = %d, stderr: %s", code, stderr)
		}
	}

	stdout, _, code := runCLI(t, "", "prune", "--dry-run", "--max-items", "1", "--keep-min", "0")
	if code != 0 || !strings.HasPrefix(stdout, "Would remove 2 note(s), kept 1") {
		t.Errorf("dry run exit = %d, stdout = %q", code, stdout)
	}

	archive := filepath.Join(t.TempDir(), "pruned.json.gz")
	stdout, stderr, code := runCLI(t, "", "prune", "--max-items", "1", "--keep-min", "0", "--archive", archive)
	if code != 0 || !strings.HasPrefix(stdout, "Removed 2 note(s), kept 1") {
		t.Fatalf("prune exit = %d, stdout = %q, stderr = %q", code, stdout, stderr)
	}

	stdout, _, _ = runCLI(t, "", "list", "--json")
	if n := strings.Count(stdout, `"id"`); n != 1 {
		t.Errorf("notes after prune = %d, want 1", n)
	}

	stdout, stderr, code = runCLI(t, "", "restore", archive)
	if code != 0 || stdout != "Restored 2 note(s)\n" {
		t.Errorf("restore exit = %d, stdout = %q, stderr = %q", code, stdout, stderr)
	}

	stdout, _, _ = runCLI(t, "", "list", "--json")
	if n := strings.Count(stdout, `"id"`); n != 3 {
		t.Errorf("notes after restore = %d, want 3", n)
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"30d", 30 * 24 * time.Hour, false},
		{"36h", 36 * time.Hour, false},
		{"-1d", 0, true},
		{"xd", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := parseAge(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAge(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAge(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := formatAge(365 * 24 * time.Hour); got != "365d" {
		t.Errorf("formatAge = %q, want 365d", got)
	}
}
