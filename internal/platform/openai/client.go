package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/funny-backend/internal/pkg/httpx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

// ErrMissingAPIKey is returned by NewClient when no key is configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY not configured")

const (
	DefaultBaseURL = "https://api.openai.com"
	DefaultModel   = "gpt-4o-mini"
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client interface {
	// GenerateJSON sends a system and user message and decodes the reply as a
	// JSON object.
	GenerateJSON(ctx context.Context, req ChatRequest) (map[string]any, error)
	Model() string
}

type ChatRequest struct {
	System      string
	User        string
	Temperature *float64
	MaxTokens   int
}

// Observer receives one call per finished request, retries included.
type Observer interface {
	ObserveLLMRequest(model, path string, status int, dur time.Duration, inputTokens, outputTokens int)
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Observer   Observer
	HTTPClient *http.Client
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
	observer   Observer
	baseDelay  time.Duration
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
		maxRetries: maxRetries,
		observer:   cfg.Observer,
		baseDelay:  time.Second,
	}, nil
}

func (c *client) Model() string { return c.model }

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    *float64          `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

const chatCompletionsPath = "/v1/chat/completions"

func (c *client) GenerateJSON(ctx context.Context, req ChatRequest) (map[string]any, error) {
	if strings.TrimSpace(req.User) == "" {
		return nil, errors.New("user prompt required")
	}
	body := chatCompletionRequest{
		Model:          c.model,
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	if s := strings.TrimSpace(req.System); s != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: s})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.User})

	var resp chatCompletionResponse
	if err := c.do(ctx, http.MethodPost, chatCompletionsPath, &body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return nil, fmt.Errorf("model refused: %s", msg.Refusal)
	}
	text := stripCodeFence(msg.Content)
	if text == "" {
		return nil, fmt.Errorf("empty completion content")
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}
	return obj, nil
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, method, path string, body any, out *chatCompletionResponse) error {
	backoff := c.baseDelay
	start := time.Now()

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				c.observe(path, resp, nil, start, 0, 0)
				return fmt.Errorf("openai decode error: %w", uErr)
			}
			c.observe(path, resp, nil, start, out.Usage.PromptTokens, out.Usage.CompletionTokens)
			return nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			c.observe(path, resp, err, start, 0, 0)
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		if sErr := httpx.SleepContext(ctx, sleepFor); sErr != nil {
			return sErr
		}
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

func (c *client) observe(path string, resp *http.Response, err error, start time.Time, in, out int) {
	if c.observer == nil {
		return
	}
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	var sc httpx.HTTPStatusCoder
	if status == 0 && errors.As(err, &sc) {
		status = sc.HTTPStatusCode()
	}
	c.observer.ObserveLLMRequest(c.model, path, status, time.Since(start), in, out)
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
