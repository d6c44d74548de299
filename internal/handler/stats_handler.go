package handler

import (
	"worklog_go/internal/service"
	"worklog_go/pkg/llm"
	"worklog_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// StatsHandler 负责统计看板、个人概览和 AI 分析。
type StatsHandler struct {
	stats service.StatsService
	ai    service.AIService
}

func NewStatsHandler(stats service.StatsService, ai service.AIService) *StatsHandler {
	return &StatsHandler{stats: stats, ai: ai}
}

type dashboardRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	Days   int  `json:"days"`
}

// AIAnalyzeRequest text 与 messages 二选一，user_id 非 0 时保存分析记录。
type AIAnalyzeRequest struct {
	UserID   uint          `json:"user_id"`
	Text     string        `json:"text"`
	Messages []llm.Message `json:"messages"`
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	var req dashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 user_id")
		return
	}
	d, err := h.stats.Dashboard(req.UserID, req.Days)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, d)
}

func (h *StatsHandler) UserStats(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 user_id")
		return
	}
	stats, err := h.stats.UserStats(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

func (h *StatsHandler) AIAnalyze(c *gin.Context) {
	var req AIAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "请求体格式错误")
		return
	}
	res, err := h.ai.Analyze(c.Request.Context(), service.AnalyzeInput{
		UserID:   req.UserID,
		Text:     req.Text,
		Messages: req.Messages,
	})
	if err != nil {
		log.Warnf("AIAnalyze: user %d: %v", req.UserID, err)
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"analysis": res.Analysis,
		"provider": res.Provider,
	})
}
