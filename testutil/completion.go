package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// CompletionRequest is a chat-completions request as received by
// CompletionServer.
type CompletionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Stream         bool `json:"stream"`
	MaxTokens      int  `json:"max_tokens"`
	EnableThinking bool `json:"enable_thinking"`

	// Header holds the request headers.
	Header http.Header `json:"-"`
}

// UserText returns the content of the last user message.
func (r CompletionRequest) UserText() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Content
		}
	}
	return ""
}

// CompletionServer is a fake OpenAI-compatible chat-completions endpoint.
// By default it answers every request with a fixed reply.
type CompletionServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []CompletionRequest
	respond  func(userText string) string
	status   int
	body     string
}

// NewCompletionServer starts a server that answers with reply. It is closed
// when the test ends.
func NewCompletionServer(t *testing.T, reply string) *CompletionServer {
	t.Helper()

	s := &CompletionServer{respond: func(string) string { return reply }}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetResponder replaces the reply with a function of the user's text.
func (s *CompletionServer) SetResponder(fn func(userText string) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond = fn
}

// SetError makes every following request fail with status and body.
// A zero status restores normal replies.
func (s *CompletionServer) SetError(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// SetRaw makes every following request succeed with a raw response body.
func (s *CompletionServer) SetRaw(body string) {
	s.SetError(http.StatusOK, body)
}

// Requests returns the requests received so far.
func (s *CompletionServer) Requests() []CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CompletionRequest(nil), s.requests...)
}

func (s *CompletionServer) handle(w http.ResponseWriter, r *http.Request) {
	var req CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"message":"invalid json"}}`, http.StatusBadRequest)
		return
	}
	req.Header = r.Header.Clone()

	s.mu.Lock()
	s.requests = append(s.requests, req)
	status, body, respond := s.status, s.body, s.respond
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
		return
	}

	resp := map[string]any{
		"id":    "chatcmpl-test",
		"model": req.Model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": respond(req.UserText())},
			"finish_reason": "stop",
		}},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	}
	_ = json.NewEncoder(w).Encode(resp)
}
