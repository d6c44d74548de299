package model

import "time"

// Message 对应 biz_message 表。读取消息列表时，未读消息会被标记为已读。
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	TaskID     *uint     `gorm:"index" json:"task_id"`
	Content    string    `gorm:"type:varchar(512);not null" json:"content"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
	CreateTime time.Time `gorm:"autoCreateTime" json:"create_time"`
}

func (Message) TableName() string {
	return "biz_message"
}
