package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"
)

func TestTestContext(t *testing.T) {
	ctx := TestContext(t)

	select {
	case <-ctx.Done():
		t.Error("context should not be done yet")
	default:
	}
}

func TestTestContextWithTimeout(t *testing.T) {
	ctx := TestContextWithTimeout(t, 10*time.Millisecond)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context did not time out")
	}
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Errorf("ctx.Err() = %v, want deadline exceeded", ctx.Err())
	}
}

func TestNewLogger(t *testing.T) {
	logger, logs := NewLogger(t)
	logger.Debug("artifact saved", "id", "1700000000000")

	if !logs.Contains("artifact saved", "id=1700000000000") {
		t.Errorf("log = %q", logs.String())
	}
	if logs.Contains("artifact deleted") {
		t.Error("Contains matched a message that was never logged")
	}
}

func TestTempFile(t *testing.T) {
	path := TempFileString(t, "note.md", "# 标题")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "# 标题" {
		t.Errorf("content = %q", data)
	}
}

func TestCompletionServer(t *testing.T) {
	srv := NewCompletionServer(t, "# 整理")

	body := `{"model":"m","messages":[{"role":"system","content":"sys"},{"role":"user","content":"hi"}],"max_tokens":5}`
	resp, err := http.Post(srv.URL, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	defer resp.Body.Close()

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Choices) != 1 || decoded.Choices[0].Message.Content != "# 整理" {
		t.Errorf("choices = %+v", decoded.Choices)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	if reqs[0].UserText() != "hi" || reqs[0].MaxTokens != 5 {
		t.Errorf("request = %+v", reqs[0])
	}
}

func TestCompletionServer_Error(t *testing.T) {
	srv := NewCompletionServer(t, "unused")
	srv.SetError(http.StatusUnauthorized, `{"error":{"message":"bad key"}}`)

	resp, err := http.Post(srv.URL, "application/json", bytes.NewBufferString(`{}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
