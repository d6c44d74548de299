package service

import (
	"errors"
	"strings"
	"time"

	"worklog_go/internal/model"
	"worklog_go/internal/repository"
	"worklog_go/pkg/log"
	"worklog_go/pkg/metrics"

	"gorm.io/gorm"
)

const (
	recentLogLimit   = 100
	personalLogsDays = 30
	logDateLayout    = "2006-01-02"
)

// CreateWorkLogInput 是提交工作日志的参数。
type CreateWorkLogInput struct {
	TaskID    uint
	UserID    uint
	Content   string
	Keywords  string
	ImageURL  *string
	LogDate   string
	Progress  *int
	Latitude  *float64
	Longitude *float64
}

// WorkLogService 负责日志提交（触发进度汇总）和日志查询。
type WorkLogService interface {
	CreateWorkLog(in CreateWorkLogInput) (*model.WorkLog, []repository.ProgressChange, error)
	// ListLogs 返回用户最近 100 条日志，最新的在前
	ListLogs(userID uint) ([]model.WorkLogView, error)
	// PersonalLogs 按 log_date 查询，起止日期为空时取最近 30 天
	PersonalLogs(userID uint, startDate, endDate string) ([]model.WorkLogView, error)
}

type workLogService struct {
	logRepo  repository.WorkLogRepository
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewWorkLogService(logRepo repository.WorkLogRepository, taskRepo repository.TaskRepository,
	userRepo repository.UserRepository) WorkLogService {
	return &workLogService{logRepo: logRepo, taskRepo: taskRepo, userRepo: userRepo, now: time.Now}
}

// parseDate 按本地时区解析 YYYY-MM-DD。
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(logDateLayout, strings.TrimSpace(s), time.Local)
}

func (s *workLogService) CreateWorkLog(in CreateWorkLogInput) (*model.WorkLog, []repository.ProgressChange, error) {
	content := strings.TrimSpace(in.Content)
	if in.TaskID == 0 || in.UserID == 0 || content == "" || strings.TrimSpace(in.LogDate) == "" || in.Progress == nil {
		return nil, nil, ErrInvalidInput
	}
	if !model.ValidProgress(*in.Progress) {
		return nil, nil, ErrInvalidInput
	}
	logDate, err := parseDate(in.LogDate)
	if err != nil {
		return nil, nil, ErrInvalidInput
	}

	if _, err := s.userRepo.FindByID(in.UserID); err != nil {
		return nil, nil, notFoundOr(err, ErrUserNotFound, "CreateWorkLog: load user")
	}
	task, err := s.taskRepo.FindByID(in.TaskID)
	if err != nil {
		return nil, nil, notFoundOr(err, ErrTaskNotFound, "CreateWorkLog: load task")
	}
	// 提前拒绝明显的回退。回退和父任务规则都由仓储层在树锁内最终校验
	if *in.Progress < task.Progress {
		metrics.RecordWorkLog("rejected")
		return nil, nil, ErrProgressRegression
	}

	entry := &model.WorkLog{
		TaskID:    in.TaskID,
		UserID:    in.UserID,
		Content:   content,
		Keywords:  strings.TrimSpace(in.Keywords),
		ImageURL:  in.ImageURL,
		LogDate:   logDate,
		Progress:  *in.Progress,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
	changes, err := s.logRepo.CreateWithProgress(entry)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProgressRegression):
			metrics.RecordWorkLog("rejected")
			return nil, nil, ErrProgressRegression
		case errors.Is(err, repository.ErrProgressDerived):
			metrics.RecordWorkLog("rejected")
			return nil, nil, ErrProgressDerived
		case errors.Is(err, gorm.ErrRecordNotFound):
			metrics.RecordWorkLog("rejected")
			return nil, nil, ErrTaskNotFound
		case errors.Is(err, repository.ErrInvalidProgress):
			metrics.RecordWorkLog("rejected")
			return nil, nil, ErrInvalidInput
		default:
			metrics.RecordWorkLog("error")
			log.Errorf("CreateWorkLog: task %d progress %d: %v", in.TaskID, *in.Progress, err)
			return nil, nil, ErrInternal
		}
	}

	metrics.RecordWorkLog("ok")
	if len(changes) > 0 {
		metrics.ObserveRollupDepth(len(changes) - 1)
	}
	return entry, changes, nil
}

func (s *workLogService) ListLogs(userID uint) ([]model.WorkLogView, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	logs, err := s.logRepo.FindRecentByUser(userID, recentLogLimit)
	if err != nil {
		log.Errorf("ListLogs: user %d: %v", userID, err)
		return nil, ErrInternal
	}
	return logs, nil
}

func (s *workLogService) PersonalLogs(userID uint, startDate, endDate string) ([]model.WorkLogView, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	now := s.now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	from := to.AddDate(0, 0, -personalLogsDays)
	var err error
	if strings.TrimSpace(endDate) != "" {
		if to, err = parseDate(endDate); err != nil {
			return nil, ErrInvalidInput
		}
	}
	if strings.TrimSpace(startDate) != "" {
		if from, err = parseDate(startDate); err != nil {
			return nil, ErrInvalidInput
		}
	}
	if to.Before(from) {
		return nil, ErrInvalidInput
	}

	logs, err := s.logRepo.FindByUserBetween(userID, from, to)
	if err != nil {
		log.Errorf("PersonalLogs: user %d: %v", userID, err)
		return nil, ErrInternal
	}
	return logs, nil
}
