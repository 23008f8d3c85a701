package summary

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

	"github.com/cenkalti/backoff/v4"
)

const systemPrompt = "Summarize the following article in one short paragraph. Reply with the summary only."

// RetryConfig 可重试错误（网络、429、5xx）的退避参数
type RetryConfig struct {
	MaxAttempts int
	Initial     time.Duration
	Multiplier  float64
	Max         time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, Initial: 500 * time.Millisecond, Multiplier: 2, Max: 5 * time.Second}
}

// OpenAI OpenAI 兼容的 /chat/completions 客户端
type OpenAI struct {
	url    string
	apiKey string
	model  string
	http   *http.Client
	retry  RetryConfig
}

type Option func(*OpenAI)

func WithHTTPClient(c *http.Client) Option { return func(o *OpenAI) { o.http = c } }
func WithRetry(r RetryConfig) Option       { return func(o *OpenAI) { o.retry = r } }
func WithTimeout(sec int) Option {
	return func(o *OpenAI) { o.http.Timeout = time.Duration(sec) * time.Second }
}

func NewOpenAI(baseURL, apiKey, model string, opts ...Option) *OpenAI {
	o := &OpenAI{
		url:    buildURL(baseURL),
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{Timeout: 60 * time.Second},
		retry:  DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func buildURL(base string) string {
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	base = strings.TrimSuffix(base, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o *OpenAI) Summarize(ctx context.Context, title, body string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Title: " + title + "\n\n" + body},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode summary request: %w", err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = o.retry.Initial
	eb.Multiplier = o.retry.Multiplier
	eb.MaxInterval = o.retry.Max
	eb.MaxElapsedTime = 0
	var b backoff.BackOff = eb
	if o.retry.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(o.retry.MaxAttempts-1))
	}

	return backoff.RetryWithData(func() (string, error) {
		return o.do(ctx, payload)
	}, backoff.WithContext(b, ctx))
}

func (o *OpenAI) do(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(payload))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("build summary request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		return "", fmt.Errorf("summary request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read summary response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classify(resp.StatusCode, raw)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decode summary response: %w", err))
	}
	if len(out.Choices) == 0 {
		return "", backoff.Permanent(errors.New("summary response has no choices"))
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// classify 429 与 5xx 可重试，其余状态码直接失败
func classify(status int, body []byte) error {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	err := fmt.Errorf("summary api error (status %d): %s", status, s)
	if status == http.StatusTooManyRequests || status >= 500 {
		return err
	}
	return backoff.Permanent(err)
}
