package model

import "time"

// WorkLog 对应 biz_work_log 表，只追加不修改。
type WorkLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TaskID     uint      `gorm:"index;not null" json:"task_id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Keywords   string    `gorm:"type:varchar(512);not null;default:''" json:"keywords"`
	ImageURL   *string   `gorm:"type:varchar(512)" json:"image_url"`
	LogDate    time.Time `gorm:"type:date;index;not null" json:"log_date"`
	Progress   int       `gorm:"not null;default:0" json:"progress"`
	Latitude   *float64  `json:"latitude"`
	Longitude  *float64  `json:"longitude"`
	CreateTime time.Time `gorm:"autoCreateTime" json:"create_time"`
}

func (WorkLog) TableName() string {
	return "biz_work_log"
}

// WorkLogView 附带任务标题，用于日志列表。
type WorkLogView struct {
	WorkLog
	TaskTitle string `json:"task_title"`
}

// AIAnalysis 对应 biz_ai_analysis 表，保存用户发起的 AI 分析结果。
type AIAnalysis struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Input      string    `gorm:"type:text;not null" json:"input"`
	Analysis   string    `gorm:"type:text;not null" json:"analysis"`
	Provider   string    `gorm:"type:varchar(32);not null" json:"provider"`
	CreateTime time.Time `gorm:"autoCreateTime" json:"create_time"`
}

func (AIAnalysis) TableName() string {
	return "biz_ai_analysis"
}
