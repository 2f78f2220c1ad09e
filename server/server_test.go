package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/randalmurphal/tidynote/artifact"
	"github.com/randalmurphal/tidynote/config"
	tnctx "github.com/randalmurphal/tidynote/context"
	"github.com/randalmurphal/tidynote/storage"
	"github.com/randalmurphal/tidynote/testutil"
)

const reply = "# 周报\n- 完成 **接口** #工作\n"

func newTestServer(t *testing.T, apiKey string) (*Server, *testutil.CompletionServer) {
	t.Helper()
	completion := testutil.NewCompletionServer(t, reply)

	settings := config.Settings{
		APIURL:        completion.URL,
		APIKey:        apiKey,
		Model:         "test-model",
		MaxTokens:     128,
		MaxRetries:    1,
		Timeout:       5 * time.Second,
		StorageDriver: string(storage.DriverMemory),
		StorageKey:    "ai_organizer_saved_items",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	services, err := tnctx.NewServices(context.Background(), tnctx.Config{
		Settings: settings,
		Backend:  storage.NewMemory(),
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("NewServices() error = %v", err)
	}
	t.Cleanup(func() { services.Close() })

	return New(services, Config{Logger: logger}), completion
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestOrganize(t *testing.T) {
	s, completion := newTestServer(t, "sk-test")

	rec := do(t, s, http.MethodPost, "/api/organize", `{"text":"这周完成了接口"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	got := decode[organizeResponse](t, rec)
	if got.Content != reply {
		t.Errorf("content = %q, want %q", got.Content, reply)
	}
	if !strings.Contains(got.HTML, "<h1>周报</h1>") || !strings.Contains(got.HTML, "<strong>接口</strong>") {
		t.Errorf("html = %q", got.HTML)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "#工作" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Artifact != nil {
		t.Error("artifact should be absent without save")
	}
	if n := len(completion.Requests()); n != 1 {
		t.Errorf("completion requests = %d, want 1", n)
	}

	list := decode[listResponse](t, do(t, s, http.MethodGet, "/api/artifacts", ""))
	if list.Count != 0 {
		t.Errorf("count = %d, want 0", list.Count)
	}
}

func TestOrganize_Save(t *testing.T) {
	s, _ := newTestServer(t, "sk-test")

	rec := do(t, s, http.MethodPost, "/api/organize", `{"text":"x","save":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	got := decode[organizeResponse](t, rec)
	if got.Artifact == nil || got.Artifact.RawText != reply {
		t.Fatalf("artifact = %+v", got.Artifact)
	}

	list := decode[listResponse](t, do(t, s, http.MethodGet, "/api/artifacts", ""))
	if list.Count != 1 || list.Artifacts[0].ID != got.Artifact.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestOrganize_Errors(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		body       string
		setup      func(*testutil.CompletionServer)
		wantStatus int
		wantError  string
	}{
		{"empty", "sk", `{"text":"  "}`, nil, http.StatusBadRequest, "empty_input"},
		{"malformed", "sk", `{"text":`, nil, http.StatusBadRequest, "bad_request"},
		{"unknown field", "sk", `{"txt":"a"}`, nil, http.StatusBadRequest, "bad_request"},
		{"no api key", "", `{"text":"a"}`, nil, http.StatusServiceUnavailable, "not_configured"},
		{"upstream", "sk", `{"text":"a"}`, func(c *testutil.CompletionServer) {
			c.SetError(http.StatusBadRequest, `{"message":"bad model"}`)
		}, http.StatusBadGateway, "completion_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, completion := newTestServer(t, tt.apiKey)
			if tt.setup != nil {
				tt.setup(completion)
			}

			rec := do(t, s, http.MethodPost, "/api/organize", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			if got := decode[errorResponse](t, rec); got.Error != tt.wantError {
				t.Errorf("error = %q, want %q", got.Error, tt.wantError)
			}
		})
	}
}

func TestOrganize_BodyTooLarge(t *testing.T) {
	s, _ := newTestServer(t, "sk")
	body := `{"text":"` + strings.Repeat("a", maxBodyBytes) + `"}`

	rec := do(t, s, http.MethodPost, "/api/organize", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestRender(t *testing.T) {
	s, completion := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/render", `{"content":"## 标题 #a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[struct {
		HTML string   `json:"html"`
		Tags []string `json:"tags"`
	}](t, rec)
	if got.HTML != "<h2>标题 #a</h2>" {
		t.Errorf("html = %q", got.HTML)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "#a" {
		t.Errorf("tags = %v", got.Tags)
	}
	if len(completion.Requests()) != 0 {
		t.Error("render must not call the completion service")
	}
}

func TestArtifactLifecycle(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/artifacts", `{"content":"# 笔记\n内容 #生活"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	created := decode[artifact.Artifact](t, rec)
	if loc := rec.Header().Get("Location"); loc != "/api/artifacts/"+created.ID {
		t.Errorf("Location = %q", loc)
	}
	if created.RenderedMarkup != "<h1>笔记</h1><br>内容 #生活" {
		t.Errorf("html = %q", created.RenderedMarkup)
	}

	rec = do(t, s, http.MethodGet, "/api/artifacts/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if got := decode[artifact.Artifact](t, rec); got.ID != created.ID || got.RawText != "# 笔记\n内容 #生活" {
		t.Errorf("get = %+v", got)
	}

	rec = do(t, s, http.MethodGet, "/api/artifacts/"+created.ID+"/raw", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("raw status = %d", rec.Code)
	}
	if rec.Body.String() != "# 笔记\n内容 #生活" {
		t.Errorf("raw body = %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	if rec := do(t, s, http.MethodDelete, "/api/artifacts/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/artifacts/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
}

func TestArtifactErrors(t *testing.T) {
	s, _ := newTestServer(t, "")

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/api/artifacts/nope", "", http.StatusNotFound},
		{http.MethodGet, "/api/artifacts/nope/raw", "", http.StatusNotFound},
		{http.MethodDelete, "/api/artifacts/nope", "", http.StatusNotFound},
		{http.MethodPost, "/api/artifacts", `{"content":""}`, http.StatusBadRequest},
		{http.MethodPut, "/api/artifacts/1", `{}`, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if rec := do(t, s, tt.method, tt.path, tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t, "sk")

	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	health := decode[map[string]any](t, rec)
	if health["status"] != "ok" || health["driver"] != "memory" || health["completion"] != true {
		t.Errorf("healthz = %v", health)
	}

	do(t, s, http.MethodPost, "/api/artifacts", `{"content":"a"}`)
	rec = do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`tidynote_operations_total{operation="save",result="success"} 1`,
		"tidynote_artifacts 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestRequestLogging(t *testing.T) {
	s, _ := newTestServer(t, "")
	var logs *testutil.LogBuffer
	s.logger, logs = testutil.NewLogger(t)
	s.handler = s.routes()

	do(t, s, http.MethodGet, "/api/artifacts", "")
	if !logs.Contains("path=/api/artifacts", "status=200") {
		t.Errorf("log = %q", logs.String())
	}
}

func TestServe_Shutdown(t *testing.T) {
	s, _ := newTestServer(t, "")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
