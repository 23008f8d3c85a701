package summary

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

	"go-gin-article-api/internal/core/config"
)

var fastRetry = RetryConfig{MaxAttempts: 3, Initial: time.Millisecond, Multiplier: 1.5, Max: 5 * time.Millisecond}

func TestMock(t *testing.T) {
	s, err := Mock{}.Summarize(context.Background(), "Go Generics", "body")
	require.NoError(t, err)
	assert.Contains(t, s, `This is a mock summary of "Go Generics".`)
}

func TestNew_PicksProvider(t *testing.T) {
	assert.IsType(t, Mock{}, New(config.Summary{Provider: "mock"}))
	assert.IsType(t, Mock{}, New(config.Summary{Provider: "openai"}))
	assert.IsType(t, &OpenAI{}, New(config.Summary{Provider: "openai", APIKey: "k", TimeoutSec: 5}))
}

func TestBuildURL(t *testing.T) {
	cases := map[string]string{
		"":                                      "https://api.openai.com/v1/chat/completions",
		"http://llm.local/v1/":                  "http://llm.local/v1/chat/completions",
		"http://llm.local/v1/chat/completions": "http://llm.local/v1/chat/completions",
	}
	for in, want := range cases {
		assert.Equal(t, want, buildURL(in), in)
	}
}

func TestOpenAI_Summarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Contains(t, req.Messages[1].Content, "Title: Hello")
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  A short summary.  "}}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(srv.URL+"/v1", "sk-test", "gpt-test", WithRetry(fastRetry))
	s, err := o.Summarize(context.Background(), "Hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", s)
}

func TestOpenAI_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	s, err := NewOpenAI(srv.URL, "k", "m", WithRetry(fastRetry)).Summarize(context.Background(), "t", "b")
	require.NoError(t, err)
	assert.Equal(t, "ok", s)
	assert.EqualValues(t, 3, calls.Load())
}

func TestOpenAI_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOpenAI(srv.URL, "k", "m", WithRetry(fastRetry)).Summarize(context.Background(), "t", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.EqualValues(t, 3, calls.Load())
}

func TestOpenAI_FatalErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI(srv.URL, "k", "m", WithRetry(fastRetry)).Summarize(context.Background(), "t", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.EqualValues(t, 1, calls.Load())
}
