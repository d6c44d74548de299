// Package llm 封装文本分析所用的大模型调用：Ark(OpenAI 兼容 SDK)、通用 HTTP 接口和本地关键词分析。
package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultSystemPrompt 是只传 text 时附带的系统提示词。
const DefaultSystemPrompt = "你是人工智能助手."

var (
	// ErrNotConfigured 没有任何可用的模型配置
	ErrNotConfigured = errors.New("llm: no provider configured")
	// ErrEmptyResponse 模型返回中没有可解析的文本
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Message 是对话式输入的一条消息。
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 要么是单段文本，要么是消息列表；两者都有时以消息列表为准。
type Request struct {
	Text     string
	Messages []Message
	Model    string
}

// ChatMessages 返回发送给对话接口的消息列表。
func (r Request) ChatMessages() []Message {
	if len(r.Messages) > 0 {
		return r.Messages
	}
	return []Message{
		{Role: "system", Content: DefaultSystemPrompt},
		{Role: "user", Content: r.Text},
	}
}

// InputText 把请求压成一段文本，用于本地分析和落库。
func (r Request) InputText() string {
	if len(r.Messages) == 0 {
		return r.Text
	}
	parts := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		if m.Role == "system" {
			continue
		}
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}

// Result 是统一后的分析结果，Analysis 始终是字符串。
type Result struct {
	Analysis string      `json:"analysis"`
	Provider string      `json:"provider"`
	Raw      interface{} `json:"raw,omitempty"`
}

// Provider 是一个模型调用方。
type Provider interface {
	Name() string
	Analyze(ctx context.Context, req Request) (*Result, error)
}

// Options 汇总选择 Provider 所需的配置。
type Options struct {
	ArkAPIKey  string
	ArkBaseURL string
	ArkModel   string
	APIURL     string
	APIKey     string
	Model      string
	Timeout    time.Duration
	// Local 为 true 时，在没有外部配置的情况下退回本地关键词分析
	Local bool
}

// New 按优先级选择 Provider：配置了 Ark key 用 SDK；否则配置了 URL+key 用通用 HTTP；
// 否则在 Local 模式下用本地分析；都不满足时返回 ErrNotConfigured。
func New(opts Options) (Provider, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	switch {
	case opts.ArkAPIKey != "":
		return NewArkProvider(opts.ArkAPIKey, opts.ArkBaseURL, opts.ArkModel, timeout), nil
	case opts.APIURL != "" && opts.APIKey != "":
		return NewHTTPProvider(opts.APIURL, opts.APIKey, opts.Model, timeout), nil
	case opts.Local:
		return LocalProvider{}, nil
	default:
		return nil, ErrNotConfigured
	}
}
