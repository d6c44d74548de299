package service

import (
	"context"
	"strings"
	"time"

	"worklog_go/internal/model"
	"worklog_go/internal/repository"
	"worklog_go/pkg/llm"
	"worklog_go/pkg/log"
	"worklog_go/pkg/metrics"
)

// AnalyzeInput 要么给 Text，要么给 Messages。UserID 非 0 时保存分析记录。
type AnalyzeInput struct {
	UserID   uint
	Text     string
	Messages []llm.Message
}

type AIService interface {
	Analyze(ctx context.Context, in AnalyzeInput) (*llm.Result, error)
}

type aiService struct {
	provider llm.Provider
	repo     repository.AIAnalysisRepository
}

// NewAIService provider 为 nil 表示未配置任何 AI 服务。
func NewAIService(provider llm.Provider, repo repository.AIAnalysisRepository) AIService {
	return &aiService{provider: provider, repo: repo}
}

func (s *aiService) Analyze(ctx context.Context, in AnalyzeInput) (*llm.Result, error) {
	req := llm.Request{Text: strings.TrimSpace(in.Text)}
	for _, m := range in.Messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		req.Messages = append(req.Messages, m)
	}
	if req.Text == "" && len(req.Messages) == 0 {
		return nil, ErrInvalidInput
	}
	if s.provider == nil {
		return nil, ErrAINotConfigured
	}

	start := time.Now()
	result, err := s.provider.Analyze(ctx, req)
	if err != nil {
		metrics.ObserveAIRequest(s.provider.Name(), "error", time.Since(start))
		log.Warnw("ai analyze failed", "provider", s.provider.Name(), "error", err)
		return nil, ErrUpstream
	}
	metrics.ObserveAIRequest(s.provider.Name(), "ok", time.Since(start))

	if in.UserID != 0 && s.repo != nil {
		record := &model.AIAnalysis{
			UserID:   in.UserID,
			Input:    req.InputText(),
			Analysis: result.Analysis,
			Provider: result.Provider,
		}
		// 落库失败不影响本次返回
		if err := s.repo.Create(record); err != nil {
			log.Warnw("save ai analysis failed", "user_id", in.UserID, "error", err)
		}
	}
	return result, nil
}
