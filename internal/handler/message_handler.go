package handler

import (
	"worklog_go/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messages service.MessageService
}

func NewMessageHandler(messages service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) UnreadCount(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 user_id")
		return
	}
	n, err := h.messages.UnreadCount(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"count": n})
}

// GetUserMessages 返回全部消息并把未读的标记为已读，返回值里 is_read 仍是读取前的状态。
func (h *MessageHandler) GetUserMessages(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 user_id")
		return
	}
	msgs, err := h.messages.FetchMessages(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, msgs)
}
