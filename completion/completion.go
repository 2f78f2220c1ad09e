// Package completion calls an OpenAI-compatible chat-completions endpoint to
// restructure free-form notes.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	tidyerrors "github.com/randalmurphal/tidynote/errors"
	httpclient "github.com/randalmurphal/tidynote/http"
	"github.com/randalmurphal/tidynote/prompt"
)

// Defaults match the SiliconFlow endpoint the organizer was built against.
const (
	DefaultAPIURL    = "https://api.siliconflow.cn/v1/chat/completions"
	DefaultModel     = "Qwen/Qwen3-8B"
	DefaultMaxTokens = 1024
)

// ErrNoChoices is returned when the API answers without any choices.
var ErrNoChoices = errors.New("completion response has no choices")

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat-completions request body.
type Request struct {
	Model          string    `json:"model"`
	Messages       []Message `json:"messages"`
	Stream         bool      `json:"stream"`
	MaxTokens      int       `json:"max_tokens"`
	EnableThinking bool      `json:"enable_thinking"`
}

// Usage reports token accounting, when the provider sends it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the subset of the chat-completions response that is used.
type Response struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Config configures a Client.
type Config struct {
	APIURL     string        // Default: DefaultAPIURL
	APIKey     string        // required
	Model      string        // Default: DefaultModel
	MaxTokens  int           // Default: DefaultMaxTokens
	MaxRetries int           // attempts per call; Default: httpclient.DefaultMaxRetries
	RetryWait  time.Duration // Default: httpclient.DefaultRetryWait
	Timeout    time.Duration // per attempt; Default: httpclient.DefaultTimeout

	// Instruction is the system message. Default: the embedded organize prompt.
	Instruction string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client sends notes to the completion API.
type Client struct {
	http        *httpclient.Client
	apiURL      string
	model       string
	maxTokens   int
	instruction string
	logger      *slog.Logger
}

// NewClient validates cfg and returns a Client. A missing API key is reported
// as a not-configured error before any request is made.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, tidyerrors.NewNotConfiguredError("api_key")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Instruction == "" {
		instruction, err := prompt.NewLoader("").SystemInstruction(nil)
		if err != nil {
			return nil, fmt.Errorf("load system instruction: %w", err)
		}
		cfg.Instruction = instruction
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = httpclient.DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	apiKey := cfg.APIKey
	return &Client{
		http: httpclient.NewClient(httpclient.ClientConfig{
			Client:      httpClient,
			BaseURL:     cfg.APIURL,
			ServiceName: "completion",
			MaxRetries:  cfg.MaxRetries,
			RetryWait:   cfg.RetryWait,
			Logger:      cfg.Logger,
			BeforeRequest: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+apiKey)
			},
		}),
		apiURL:      cfg.APIURL,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		instruction: cfg.Instruction,
		logger:      cfg.Logger,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// APIURL returns the endpoint the client posts to.
func (c *Client) APIURL() string { return c.apiURL }

// Complete sends text as the user message and returns the content of the
// first choice. Every failure wraps tidyerrors.ErrCompletionFailed; HTTP
// failures also carry the *httpclient.APIError.
func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	requestID, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("%w: generate request id: %w", tidyerrors.ErrCompletionFailed, err)
	}

	req := Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: c.instruction},
			{Role: "user", Content: text},
		},
		Stream:         false,
		MaxTokens:      c.maxTokens,
		EnableThinking: false,
	}

	logger := c.logger.With("request_id", requestID, "model", c.model)
	logger.Debug("completion request", "input_chars", len([]rune(text)))

	start := time.Now()
	var resp Response
	if err := c.http.PostWithHeaders(ctx, "", req, &resp, map[string]string{"X-Request-Id": requestID}); err != nil {
		logger.Warn("completion failed", "error", err, "elapsed", time.Since(start))
		return "", fmt.Errorf("%w: %w", tidyerrors.ErrCompletionFailed, err)
	}

	if len(resp.Choices) == 0 {
		logger.Warn("completion returned no choices", "response_id", resp.ID)
		return "", fmt.Errorf("%w: %w", tidyerrors.ErrCompletionFailed, ErrNoChoices)
	}

	content := resp.Choices[0].Message.Content
	logger.Debug("completion response",
		"response_id", resp.ID,
		"finish_reason", resp.Choices[0].FinishReason,
		"output_chars", len([]rune(content)),
		"total_tokens", resp.Usage.TotalTokens,
		"elapsed", time.Since(start),
	)
	return content, nil
}
