package repository

import (
	"fmt"

	"worklog_go/internal/model"

	"gorm.io/gorm"
)

// AIAnalysisRepository 保存 AI 分析记录。
type AIAnalysisRepository interface {
	Create(a *model.AIAnalysis) error
	FindRecentByUser(userID uint, limit int) ([]model.AIAnalysis, error)
}

type aiAnalysisRepository struct {
	db *gorm.DB
}

func NewAIAnalysisRepository(db *gorm.DB) AIAnalysisRepository {
	return &aiAnalysisRepository{db: db}
}

func (r *aiAnalysisRepository) Create(a *model.AIAnalysis) error {
	if a == nil {
		return fmt.Errorf("analysis is nil")
	}
	return r.db.Create(a).Error
}

func (r *aiAnalysisRepository) FindRecentByUser(userID uint, limit int) ([]model.AIAnalysis, error) {
	q := r.db.Where("user_id = ?", userID).Order("create_time DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.AIAnalysis
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
