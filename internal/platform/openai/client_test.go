package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type recordingObserver struct {
	calls  int
	status int
	in     int
	out    int
}

func (o *recordingObserver) ObserveLLMRequest(model, path string, status int, dur time.Duration, in, out int) {
	o.calls++
	o.status = status
	o.in = in
	o.out = out
}

func newTestClient(t *testing.T, url string, obs Observer) *client {
	t.Helper()
	c, err := NewClient(logger.Nop(), Config{APIKey: "sk-test", BaseURL: url, MaxRetries: 2, Observer: obs})
	require.NoError(t, err)
	cc := c.(*client)
	cc.baseDelay = time.Millisecond
	return cc
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(logger.Nop(), Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGenerateJSONRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		if n == 1 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, chatCompletionsPath, r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body chatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body.Model)
		assert.Equal(t, "json_object", body.ResponseFormat["type"])
		assert.Equal(t, 2000, body.MaxTokens)
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "system", body.Messages[0].Role)
		}

		_, _ = w.Write([]byte(`{
			"choices":[{"message":{"content":"{\"resumo\":\"tudo certo\"}"}}],
			"usage":{"prompt_tokens":11,"completion_tokens":7}
		}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := newTestClient(t, srv.URL, obs)
	temp := 0.7
	out, err := c.GenerateJSON(context.Background(), ChatRequest{
		System:      "sistema",
		User:        "dados",
		Temperature: &temp,
		MaxTokens:   2000,
	})
	require.NoError(t, err)
	assert.Equal(t, "tudo certo", out["resumo"])
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Equal(t, 1, obs.calls)
	assert.Equal(t, http.StatusOK, obs.status)
	assert.Equal(t, 11, obs.in)
	assert.Equal(t, 7, obs.out)
}

func TestGenerateJSONDoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := newTestClient(t, srv.URL, obs)
	_, err := c.GenerateJSON(context.Background(), ChatRequest{User: "x"})
	require.Error(t, err)

	var httpErr *openAIHTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.HTTPStatusCode())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, http.StatusUnauthorized, obs.status)
}

func TestGenerateJSONStripsCodeFence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` + "```json\\n{\\\"ok\\\":true}\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	out, err := c.GenerateJSON(context.Background(), ChatRequest{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, true, out["ok"])
}

func TestGenerateJSONRejectsNonObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"not json"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.GenerateJSON(context.Background(), ChatRequest{User: "x"})
	assert.Error(t, err)
}
