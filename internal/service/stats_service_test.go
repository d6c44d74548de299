package service

import (
	"testing"
	"time"

	"worklog_go/internal/model"
	"worklog_go/internal/repository"
	"worklog_go/pkg/textstat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatsService(logRepo *fakeWorkLogRepo, taskRepo *fakeTaskRepo, now time.Time) *statsService {
	userRepo := &fakeUserRepo{findByIDFn: usersByID(demoUsers...)}
	svc := NewStatsService(logRepo, taskRepo, NewOrgService(demoOrg(), userRepo)).(*statsService)
	svc.now = func() time.Time { return now }
	return svc
}

func day(s string) time.Time {
	d, _ := time.ParseInLocation("2006-01-02", s, time.Local)
	return d
}

func TestClampDays(t *testing.T) {
	for in, want := range map[int]int{0: 7, -3: 1, 1: 1, 30: 30, 90: 90, 365: 90} {
		assert.Equal(t, want, clampDays(in), "clampDays(%d)", in)
	}
}

func TestStatsService_Dashboard_Empty(t *testing.T) {
	var since time.Time
	logRepo := &fakeWorkLogRepo{
		findByUserSinceFn: func(userID uint, s time.Time) ([]model.WorkLog, error) {
			since = s
			return nil, nil
		},
	}
	svc := newStatsService(logRepo, &fakeTaskRepo{}, time.Date(2024, 5, 10, 15, 0, 0, 0, time.Local))

	d, err := svc.Dashboard(3, 3)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-08", since.Format("2006-01-02"))
	assert.Equal(t, 3, d.Days)
	assert.Zero(t, d.TotalLogs)
	assert.Empty(t, d.Keywords)
	assert.Empty(t, d.TopKeywords)
	assert.Equal(t, []TrendPoint{
		{Date: "2024-05-08", Count: 0},
		{Date: "2024-05-09", Count: 0},
		{Date: "2024-05-10", Count: 0},
	}, d.Trend)
	require.Len(t, d.CategoryRatio, len(textstat.Categories))
	for name, n := range d.CategoryRatio {
		assert.Zero(t, n, "category %s", name)
	}
}

func TestStatsService_Dashboard_CountsLogsAndTasks(t *testing.T) {
	logRepo := &fakeWorkLogRepo{
		findByUserSinceFn: func(uint, time.Time) ([]model.WorkLog, error) {
			return []model.WorkLog{
				{TaskID: 2, Keywords: "测试", Content: "编写 测试 用例", LogDate: day("2024-05-09")},
				{TaskID: 2, Keywords: "测试", Content: "回归 测试", LogDate: day("2024-05-09")},
				{TaskID: 3, Content: "部署 上线", LogDate: day("2024-05-10")},
			}, nil
		},
	}
	var gotIDs []uint
	taskRepo := &fakeTaskRepo{
		findByIDsFn: func(ids []uint) ([]model.Task, error) {
			gotIDs = ids
			return []model.Task{{ID: 2, Title: "测试"}, {ID: 3, Title: "发布"}}, nil
		},
	}
	svc := newStatsService(logRepo, taskRepo, time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local))

	d, err := svc.Dashboard(3, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, d.Days)
	assert.Equal(t, 3, d.TotalLogs)
	assert.ElementsMatch(t, []uint{2, 3}, gotIDs)

	// 关键词 2 次 + 内容 2 次 + 任务标题 1 次
	assert.Equal(t, 5, d.Keywords["测试"])
	require.NotEmpty(t, d.TopKeywords)
	assert.Equal(t, textstat.KeywordCount{Word: "测试", Count: 5}, d.TopKeywords[0])

	require.Len(t, d.Trend, 7)
	assert.Equal(t, TrendPoint{Date: "2024-05-04", Count: 0}, d.Trend[0])
	assert.Equal(t, TrendPoint{Date: "2024-05-09", Count: 2}, d.Trend[5])
	assert.Equal(t, TrendPoint{Date: "2024-05-10", Count: 1}, d.Trend[6])

	assert.Greater(t, d.CategoryRatio["测试"], 0)
	assert.Greater(t, d.CategoryRatio["运维"], 0)
}

func TestStatsService_Dashboard_UnknownUser(t *testing.T) {
	svc := newStatsService(&fakeWorkLogRepo{}, &fakeTaskRepo{}, time.Now())

	_, err := svc.Dashboard(99, 7)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.Dashboard(0, 7)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStatsService_UserStats(t *testing.T) {
	var recentSince time.Time
	logRepo := &fakeWorkLogRepo{
		countByUserFn: func(uint) (int64, error) { return 12, nil },
		countByUserSinceFn: func(userID uint, since time.Time) (int64, error) {
			recentSince = since
			return 4, nil
		},
	}
	taskRepo := &fakeTaskRepo{
		countVisibleByStatusFn: func(v repository.Visibility) (map[string]int64, error) {
			assert.Equal(t, uint(4), v.UserID)
			return map[string]int64{
				model.TaskStatusPending:    1,
				model.TaskStatusInProgress: 2,
			}, nil
		},
	}
	svc := newStatsService(logRepo, taskRepo, time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local))

	stats, err := svc.UserStats(4)
	require.NoError(t, err)
	assert.Equal(t, &UserStats{
		TotalTasks:      3,
		PendingTasks:    1,
		InProgressTasks: 2,
		CompletedTasks:  0,
		TotalLogs:       12,
		RecentLogs:      4,
	}, stats)
	assert.Equal(t, "2024-05-04", recentSince.Format("2006-01-02"))
}
