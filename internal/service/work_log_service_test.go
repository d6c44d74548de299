package service

import (
	"errors"
	"testing"
	"time"

	"worklog_go/internal/model"
	"worklog_go/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWorkLogService(logRepo *fakeWorkLogRepo, taskRepo *fakeTaskRepo) *workLogService {
	userRepo := &fakeUserRepo{findByIDFn: usersByID(demoUsers...)}
	return NewWorkLogService(logRepo, taskRepo, userRepo).(*workLogService)
}

func taskWithProgress(progress int) *fakeTaskRepo {
	return &fakeTaskRepo{
		findByIDFn: func(id uint) (*model.Task, error) {
			if id == 2 {
				return &model.Task{ID: 2, Progress: progress, Status: model.StatusForProgress(progress)}, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
}

func TestWorkLogService_CreateWorkLog(t *testing.T) {
	want := []repository.ProgressChange{
		{TaskID: 2, Progress: 80, Status: model.TaskStatusInProgress},
		{TaskID: 1, Progress: 50, Status: model.TaskStatusInProgress},
	}
	var saved *model.WorkLog
	logRepo := &fakeWorkLogRepo{
		createWithProgressFn: func(l *model.WorkLog) ([]repository.ProgressChange, error) {
			l.ID = 7
			saved = l
			return want, nil
		},
	}
	svc := newWorkLogService(logRepo, taskWithProgress(60))

	lat := 31.2
	entry, changes, err := svc.CreateWorkLog(CreateWorkLogInput{
		TaskID:   2,
		UserID:   3,
		Content:  "  完成接口联调 ",
		Keywords: "联调",
		LogDate:  "2024-05-06",
		Progress: intPtr(80),
		Latitude: &lat,
	})
	require.NoError(t, err)
	assert.Equal(t, want, changes)
	assert.Equal(t, uint(7), entry.ID)
	require.NotNil(t, saved)
	assert.Equal(t, "完成接口联调", saved.Content)
	assert.Equal(t, 80, saved.Progress)
	assert.Equal(t, "2024-05-06", saved.LogDate.Format("2006-01-02"))
	assert.Equal(t, &lat, saved.Latitude)
	assert.Nil(t, saved.Longitude)
}

func TestWorkLogService_CreateWorkLog_Regression(t *testing.T) {
	logRepo := &fakeWorkLogRepo{
		createWithProgressFn: func(*model.WorkLog) ([]repository.ProgressChange, error) {
			t.Fatal("regressing log must not be written")
			return nil, nil
		},
	}
	svc := newWorkLogService(logRepo, taskWithProgress(60))

	_, _, err := svc.CreateWorkLog(CreateWorkLogInput{
		TaskID: 2, UserID: 3, Content: "回退", LogDate: "2024-05-06", Progress: intPtr(30),
	})
	assert.ErrorIs(t, err, ErrProgressRegression)
}

func TestWorkLogService_CreateWorkLog_RepoErrors(t *testing.T) {
	cases := []struct {
		repoErr error
		want    error
	}{
		{repository.ErrProgressRegression, ErrProgressRegression},
		{repository.ErrProgressDerived, ErrProgressDerived},
		{gorm.ErrRecordNotFound, ErrTaskNotFound},
		{repository.ErrInvalidProgress, ErrInvalidInput},
		{repository.ErrRollupTooDeep, ErrInternal},
		{errors.New("deadlock"), ErrInternal},
	}
	for _, tc := range cases {
		logRepo := &fakeWorkLogRepo{
			createWithProgressFn: func(*model.WorkLog) ([]repository.ProgressChange, error) {
				return nil, tc.repoErr
			},
		}
		svc := newWorkLogService(logRepo, taskWithProgress(60))

		_, _, err := svc.CreateWorkLog(CreateWorkLogInput{
			TaskID: 2, UserID: 3, Content: "x", LogDate: "2024-05-06", Progress: intPtr(70),
		})
		assert.ErrorIs(t, err, tc.want, "repo error %v", tc.repoErr)
	}
}

func TestWorkLogService_CreateWorkLog_Validation(t *testing.T) {
	svc := newWorkLogService(&fakeWorkLogRepo{}, taskWithProgress(0))

	cases := []CreateWorkLogInput{
		{UserID: 3, Content: "x", LogDate: "2024-05-06", Progress: intPtr(10)},
		{TaskID: 2, Content: "x", LogDate: "2024-05-06", Progress: intPtr(10)},
		{TaskID: 2, UserID: 3, Content: " ", LogDate: "2024-05-06", Progress: intPtr(10)},
		{TaskID: 2, UserID: 3, Content: "x", Progress: intPtr(10)},
		{TaskID: 2, UserID: 3, Content: "x", LogDate: "2024-05-06"},
		{TaskID: 2, UserID: 3, Content: "x", LogDate: "2024-05-06", Progress: intPtr(101)},
		{TaskID: 2, UserID: 3, Content: "x", LogDate: "2024-05-06", Progress: intPtr(-1)},
		{TaskID: 2, UserID: 3, Content: "x", LogDate: "05/06/2024", Progress: intPtr(10)},
	}
	for i, in := range cases {
		_, _, err := svc.CreateWorkLog(in)
		assert.ErrorIs(t, err, ErrInvalidInput, "case %d", i)
	}

	_, _, err := svc.CreateWorkLog(CreateWorkLogInput{TaskID: 9, UserID: 3, Content: "x", LogDate: "2024-05-06", Progress: intPtr(10)})
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, _, err = svc.CreateWorkLog(CreateWorkLogInput{TaskID: 2, UserID: 99, Content: "x", LogDate: "2024-05-06", Progress: intPtr(10)})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestWorkLogService_ListLogs(t *testing.T) {
	var gotLimit int
	logRepo := &fakeWorkLogRepo{
		findRecentByUserFn: func(userID uint, limit int) ([]model.WorkLogView, error) {
			gotLimit = limit
			return []model.WorkLogView{{WorkLog: model.WorkLog{ID: 1}, TaskTitle: "A"}}, nil
		},
	}
	svc := newWorkLogService(logRepo, &fakeTaskRepo{})

	logs, err := svc.ListLogs(3)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, 100, gotLimit)

	_, err = svc.ListLogs(0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWorkLogService_PersonalLogs_DefaultWindow(t *testing.T) {
	var from, to time.Time
	logRepo := &fakeWorkLogRepo{
		findByUserBetweenFn: func(userID uint, f, tt time.Time) ([]model.WorkLogView, error) {
			from, to = f, tt
			return nil, nil
		},
	}
	svc := newWorkLogService(logRepo, &fakeTaskRepo{})
	svc.now = func() time.Time { return time.Date(2024, 5, 31, 18, 30, 0, 0, time.Local) }

	_, err := svc.PersonalLogs(3, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", from.Format("2006-01-02"))
	assert.Equal(t, "2024-05-31", to.Format("2006-01-02"))

	_, err = svc.PersonalLogs(3, "2024-04-01", "2024-04-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", from.Format("2006-01-02"))
	assert.Equal(t, "2024-04-10", to.Format("2006-01-02"))
}

func TestWorkLogService_PersonalLogs_Invalid(t *testing.T) {
	svc := newWorkLogService(&fakeWorkLogRepo{}, &fakeTaskRepo{})

	_, err := svc.PersonalLogs(3, "2024-05-10", "2024-05-01")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.PersonalLogs(3, "yesterday", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.PersonalLogs(0, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
