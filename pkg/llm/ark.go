package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ArkProvider 通过 OpenAI 兼容协议调用火山方舟。
type ArkProvider struct {
	client *openai.Client
	model  string
}

func NewArkProvider(apiKey, baseURL, model string, timeout time.Duration) *ArkProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &ArkProvider{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *ArkProvider) Name() string { return "ark" }

func (p *ArkProvider) Analyze(ctx context.Context, req Request) (*Result, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	msgs := req.ChatMessages()
	chat := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		chat = append(chat, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: chat,
	})
	if err != nil {
		return nil, fmt.Errorf("ark chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, ErrEmptyResponse
	}
	return &Result{Analysis: content, Provider: p.Name()}, nil
}
