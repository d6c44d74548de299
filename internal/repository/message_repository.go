package repository

import (
	"fmt"

	"worklog_go/internal/model"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// MessageRepository 定义站内消息的持久化操作。
type MessageRepository interface {
	Create(msg *model.Message) error
	CountUnread(userID uint) (int64, error)
	// FetchAndMarkRead 返回用户的全部消息（is_read 为读取前的值），
	// 并在同一事务里把其中未读的标记为已读。第二个返回值是本次标记的条数。
	FetchAndMarkRead(userID uint) ([]model.Message, int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *model.Message) error {
	if msg == nil {
		return fmt.Errorf("message is nil")
	}
	return r.db.Create(msg).Error
}

func (r *messageRepository) CountUnread(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&model.Message{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *messageRepository) FetchAndMarkRead(userID uint) ([]model.Message, int64, error) {
	var (
		msgs   []model.Message
		marked int64
	)
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).
			Where("user_id = ?", userID).
			Order("create_time DESC, id DESC").
			Find(&msgs).Error; err != nil {
			return pkgerrors.Wrap(err, "select messages")
		}
		res := tx.Model(&model.Message{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Update("is_read", true)
		if res.Error != nil {
			return pkgerrors.Wrap(res.Error, "mark messages read")
		}
		marked = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return msgs, marked, nil
}
