package ai

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultMaxTokens   = 512
	defaultTemperature = 0.3
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client отправляет диалог модели и возвращает текст ответа и сырой ответ API.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, []byte, error)
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}

func newHTTPClient(baseURL string, timeout time.Duration) (*resty.Client, string) {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	return client, strings.TrimRight(baseURL, "/")
}
