package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPProvider 调用一个通用 JSON 接口，兼容多种返回结构。
type HTTPProvider struct {
	client *resty.Client
	url    string
	model  string
}

func NewHTTPProvider(url, apiKey, model string, timeout time.Duration) *HTTPProvider {
	client := resty.New().
		SetTimeout(timeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &HTTPProvider{client: client, url: url, model: model}
}

func (p *HTTPProvider) Name() string { return "http" }

func (p *HTTPProvider) Analyze(ctx context.Context, req Request) (*Result, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	payload := map[string]interface{}{}
	if len(req.Messages) > 0 {
		payload["messages"] = req.Messages
	} else {
		payload["text"] = req.Text
	}
	if model != "" {
		payload["model"] = model
	}

	resp, err := p.client.R().SetContext(ctx).SetBody(payload).Post(p.url)
	if err != nil {
		return nil, fmt.Errorf("ai http request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ai http status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	var raw interface{}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		// 非 JSON 返回直接当文本
		raw = resp.String()
	}
	text := strings.TrimSpace(ExtractText(raw))
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return &Result{Analysis: text, Provider: p.Name(), Raw: raw}, nil
}

// ExtractText 从各种返回结构中取出文本，依次尝试：
// choices[0].message.content、choices[0].text、analysis、summary、
// 纯字符串、result/data/output，最后退回整个 JSON。
func ExtractText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]interface{}:
		if s, ok := choiceText(val); ok {
			return s
		}
		for _, key := range []string{"analysis", "summary"} {
			if s, ok := val[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
		for _, key := range []string{"result", "data", "output"} {
			inner, ok := val[key]
			if !ok || inner == nil {
				continue
			}
			if s := ExtractText(inner); strings.TrimSpace(s) != "" {
				return s
			}
		}
		return toJSON(val)
	default:
		return toJSON(val)
	}
}

func choiceText(m map[string]interface{}) (string, bool) {
	choices, ok := m["choices"].([]interface{})
	if !ok || len(choices) == 0 {
		return "", false
	}
	first, ok := choices[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	if msg, ok := first["message"].(map[string]interface{}); ok {
		if s, ok := msg["content"].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	if s, ok := first["text"].(string); ok && strings.TrimSpace(s) != "" {
		return s, true
	}
	return "", false
}

func toJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
