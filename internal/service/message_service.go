package service

import (
	"worklog_go/internal/model"
	"worklog_go/internal/repository"
	"worklog_go/pkg/log"
	"worklog_go/pkg/metrics"
)

type MessageService interface {
	UnreadCount(userID uint) (int64, error)
	// FetchMessages 返回用户的全部消息，并把未读的标记为已读（返回值中仍是读取前的状态）
	FetchMessages(userID uint) ([]model.Message, error)
}

type messageService struct {
	repo repository.MessageRepository
}

func NewMessageService(repo repository.MessageRepository) MessageService {
	return &messageService{repo: repo}
}

func (s *messageService) UnreadCount(userID uint) (int64, error) {
	if userID == 0 {
		return 0, ErrInvalidInput
	}
	n, err := s.repo.CountUnread(userID)
	if err != nil {
		log.Errorf("UnreadCount: user %d: %v", userID, err)
		return 0, ErrInternal
	}
	return n, nil
}

func (s *messageService) FetchMessages(userID uint) ([]model.Message, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	msgs, marked, err := s.repo.FetchAndMarkRead(userID)
	if err != nil {
		log.Errorf("FetchMessages: user %d: %v", userID, err)
		return nil, ErrInternal
	}
	metrics.AddMessagesMarkedRead(int(marked))
	return msgs, nil
}
