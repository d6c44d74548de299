package repository

import (
	"fmt"
	"time"

	"worklog_go/internal/model"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// WorkLogRepository 定义工作日志的持久化操作。日志只追加，不提供修改和单独删除。
type WorkLogRepository interface {
	// CreateWithProgress 在一个事务里写入日志并把 log.Progress 汇总到任务树，
	// 任一步失败（包括进度回退）整体回滚。
	CreateWithProgress(log *model.WorkLog) ([]ProgressChange, error)
	FindRecentByUser(userID uint, limit int) ([]model.WorkLogView, error)
	// FindByUserBetween 按 log_date 闭区间查询
	FindByUserBetween(userID uint, from, to time.Time) ([]model.WorkLogView, error)
	FindByUserSince(userID uint, since time.Time) ([]model.WorkLog, error)
	CountByUser(userID uint) (int64, error)
	CountByUserSince(userID uint, since time.Time) (int64, error)
}

type workLogRepository struct {
	db *gorm.DB
}

func NewWorkLogRepository(db *gorm.DB) WorkLogRepository {
	return &workLogRepository{db: db}
}

func (r *workLogRepository) CreateWithProgress(log *model.WorkLog) ([]ProgressChange, error) {
	if log == nil {
		return nil, fmt.Errorf("work log is nil")
	}
	var changes []ProgressChange
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		changes, err = applyProgress(tx, log.TaskID, log.Progress)
		if err != nil {
			return err
		}
		if err := tx.Create(log).Error; err != nil {
			return pkgerrors.Wrap(err, "insert work log")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (r *workLogRepository) viewQuery() *gorm.DB {
	return r.db.Table("biz_work_log").
		Select("biz_work_log.*, COALESCE(biz_task.title, '') AS task_title").
		Joins("LEFT JOIN biz_task ON biz_task.id = biz_work_log.task_id")
}

func (r *workLogRepository) FindRecentByUser(userID uint, limit int) ([]model.WorkLogView, error) {
	q := r.viewQuery().
		Where("biz_work_log.user_id = ?", userID).
		Order("biz_work_log.create_time DESC, biz_work_log.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []model.WorkLogView
	if err := q.Scan(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *workLogRepository) FindByUserBetween(userID uint, from, to time.Time) ([]model.WorkLogView, error) {
	var logs []model.WorkLogView
	err := r.viewQuery().
		Where("biz_work_log.user_id = ?", userID).
		Where("biz_work_log.log_date BETWEEN ? AND ?", from, to).
		Order("biz_work_log.log_date DESC, biz_work_log.id DESC").
		Scan(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *workLogRepository) FindByUserSince(userID uint, since time.Time) ([]model.WorkLog, error) {
	var logs []model.WorkLog
	err := r.db.Where("user_id = ? AND log_date >= ?", userID, since).
		Order("log_date ASC, id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *workLogRepository) CountByUser(userID uint) (int64, error) {
	var n int64
	if err := r.db.Model(&model.WorkLog{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *workLogRepository) CountByUserSince(userID uint, since time.Time) (int64, error) {
	var n int64
	err := r.db.Model(&model.WorkLog{}).
		Where("user_id = ? AND log_date >= ?", userID, since).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}
