package service

import (
	"time"

	"worklog_go/internal/model"
	"worklog_go/internal/repository"
	"worklog_go/pkg/log"
	"worklog_go/pkg/textstat"
)

const (
	defaultDashboardDays = 7
	maxDashboardDays     = 90
	topKeywordLimit      = 20
	recentStatsDays      = 7
)

// TrendPoint 是某一天的日志条数。
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Dashboard 是统计看板：词频、逐日趋势（无日志的日期补 0）、分类分布。
type Dashboard struct {
	Days          int                     `json:"days"`
	TotalLogs     int                     `json:"total_logs"`
	Keywords      map[string]int          `json:"keywords"`
	TopKeywords   []textstat.KeywordCount `json:"top_keywords"`
	Trend         []TrendPoint            `json:"trend"`
	CategoryRatio map[string]int          `json:"category_ratio"`
}

// UserStats 是个人概览：可见任务按状态计数和日志数量。
type UserStats struct {
	TotalTasks      int64 `json:"total_tasks"`
	PendingTasks    int64 `json:"pending_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
	TotalLogs       int64 `json:"total_logs"`
	RecentLogs      int64 `json:"recent_logs"`
}

type StatsService interface {
	// Dashboard days 为 0 时取 7，超出 [1,90] 时截断
	Dashboard(userID uint, days int) (*Dashboard, error)
	UserStats(userID uint) (*UserStats, error)
}

type statsService struct {
	logRepo  repository.WorkLogRepository
	taskRepo repository.TaskRepository
	org      OrgService
	now      func() time.Time
}

func NewStatsService(logRepo repository.WorkLogRepository, taskRepo repository.TaskRepository, org OrgService) StatsService {
	return &statsService{logRepo: logRepo, taskRepo: taskRepo, org: org, now: time.Now}
}

func clampDays(days int) int {
	switch {
	case days == 0:
		return defaultDashboardDays
	case days < 1:
		return 1
	case days > maxDashboardDays:
		return maxDashboardDays
	default:
		return days
	}
}

func (s *statsService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

func (s *statsService) Dashboard(userID uint, days int) (*Dashboard, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.org.TeamOfUser(userID); err != nil {
		return nil, err
	}

	days = clampDays(days)
	since := s.today().AddDate(0, 0, -(days - 1))
	logs, err := s.logRepo.FindByUserSince(userID, since)
	if err != nil {
		log.Errorf("Dashboard: failed to query logs of user %d: %v", userID, err)
		return nil, ErrInternal
	}

	texts, err := s.collectTexts(logs)
	if err != nil {
		log.Errorf("Dashboard: failed to query tasks of user %d: %v", userID, err)
		return nil, ErrInternal
	}
	freq := textstat.Frequencies(texts...)

	return &Dashboard{
		Days:          days,
		TotalLogs:     len(logs),
		Keywords:      freq,
		TopKeywords:   textstat.TopKeywords(freq, topKeywordLimit),
		Trend:         buildTrend(logs, since, days),
		CategoryRatio: textstat.CategoryCounts(freq),
	}, nil
}

// collectTexts 收集日志的关键词、内容，以及窗口内日志涉及任务（去重）的标题和描述。
func (s *statsService) collectTexts(logs []model.WorkLog) ([]string, error) {
	texts := make([]string, 0, len(logs)*2)
	seen := make(map[uint]struct{})
	var taskIDs []uint
	for _, l := range logs {
		texts = append(texts, l.Keywords, l.Content)
		if _, ok := seen[l.TaskID]; !ok {
			seen[l.TaskID] = struct{}{}
			taskIDs = append(taskIDs, l.TaskID)
		}
	}

	tasks, err := s.taskRepo.FindByIDs(taskIDs)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		texts = append(texts, t.Title, t.Description)
	}
	return texts, nil
}

func buildTrend(logs []model.WorkLog, since time.Time, days int) []TrendPoint {
	counts := make(map[string]int, days)
	for _, l := range logs {
		counts[l.LogDate.Format(logDateLayout)]++
	}
	trend := make([]TrendPoint, 0, days)
	for i := 0; i < days; i++ {
		d := since.AddDate(0, 0, i).Format(logDateLayout)
		trend = append(trend, TrendPoint{Date: d, Count: counts[d]})
	}
	return trend
}

func (s *statsService) UserStats(userID uint) (*UserStats, error) {
	v, err := s.org.VisibilityFor(userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.taskRepo.CountVisibleByStatus(v)
	if err != nil {
		log.Errorf("UserStats: failed to count tasks of user %d: %v", userID, err)
		return nil, ErrInternal
	}
	total, err := s.logRepo.CountByUser(userID)
	if err != nil {
		log.Errorf("UserStats: failed to count logs of user %d: %v", userID, err)
		return nil, ErrInternal
	}
	recent, err := s.logRepo.CountByUserSince(userID, s.today().AddDate(0, 0, -(recentStatsDays-1)))
	if err != nil {
		log.Errorf("UserStats: failed to count recent logs of user %d: %v", userID, err)
		return nil, ErrInternal
	}

	stats := &UserStats{
		PendingTasks:    counts[model.TaskStatusPending],
		InProgressTasks: counts[model.TaskStatusInProgress],
		CompletedTasks:  counts[model.TaskStatusCompleted],
		TotalLogs:       total,
		RecentLogs:      recent,
	}
	stats.TotalTasks = stats.PendingTasks + stats.InProgressTasks + stats.CompletedTasks
	return stats, nil
}
