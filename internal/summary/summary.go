// Package summary produces short summaries of article bodies.
package summary

import (
	"context"
	"fmt"

	"go-gin-article-api/internal/core/config"
)

type Summarizer interface {
	Summarize(ctx context.Context, title, body string) (string, error)
}

// Mock 未配置模型服务时使用，输出固定模板
type Mock struct{}

func (Mock) Summarize(_ context.Context, title, _ string) (string, error) {
	return fmt.Sprintf(`This is a mock summary of "%s". The article discusses various topics and provides insights `+
		"into the subject matter. Key points include important concepts and practical applications that readers can benefit from.", title), nil
}

// New provider=openai 且配置了 api_key 时走 chat completions，否则退回 Mock
func New(c config.Summary) Summarizer {
	if c.Provider != "openai" || c.APIKey == "" {
		return Mock{}
	}
	opts := []Option{}
	if c.TimeoutSec > 0 {
		opts = append(opts, WithTimeout(c.TimeoutSec))
	}
	return NewOpenAI(c.BaseURL, c.APIKey, c.Model, opts...)
}
