package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"worklog_go/internal/model"
	"worklog_go/internal/repository"
	"worklog_go/pkg/log"
	"worklog_go/pkg/metrics"

	"gorm.io/gorm"
)

const (
	companyViewLimit  = 10
	personalTopLimit  = 5
	ganttDateLayout   = "2006-01-02"
	assignmentNoticeF = "您有新的任务：%s"
)

// CreateTaskInput 是创建任务/子任务的参数，ParentID 仅子任务使用。
type CreateTaskInput struct {
	Title        string
	Description  string
	CreatorID    uint
	AssignedType string
	AssignedID   uint
	StartTime    *time.Time
	EndTime      *time.Time
	ImageURL     *string
	ParentID     *uint
}

// TaskService 负责任务的创建、指派解析和各类任务视图。
type TaskService interface {
	CreateTask(in CreateTaskInput) (*model.Task, error)
	// CreateSubTask 创建子任务，并返回被重算的祖先进度
	CreateSubTask(in CreateTaskInput) (*model.Task, []repository.ProgressChange, error)
	GetTaskDetail(taskID uint) (*model.TaskView, error)
	GetSubTasks(parentID uint) ([]model.TaskView, error)
	// ListTasksForUser 返回用户可见的任务，最新的在前
	ListTasksForUser(userID uint) ([]model.TaskView, error)
	GetGantt(userID uint) ([]model.GanttItem, error)
	CompanyTopMatters() ([]model.TaskView, error)
	CompanyDispatched() ([]model.TaskView, error)
	PersonalTopItems(userID uint) ([]model.TaskView, error)
}

type taskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	orgRepo  repository.OrgRepository
	org      OrgService
}

func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository,
	orgRepo repository.OrgRepository, org OrgService) TaskService {
	return &taskService{taskRepo: taskRepo, userRepo: userRepo, orgRepo: orgRepo, org: org}
}

// resolveAssignee 把指派目标解析为具体负责人：
// 个人直接使用该用户；团队取负责人；部门取经理。负责人缺失返回 ErrInvalidTarget。
func (s *taskService) resolveAssignee(a model.Assignment) (uint, error) {
	switch a.Kind {
	case model.AssignPersonal:
		user, err := s.userRepo.FindByID(a.TargetID)
		if err != nil {
			return 0, notFoundOr(err, ErrUserNotFound, "resolve personal assignee")
		}
		return user.ID, nil
	case model.AssignTeam:
		team, err := s.orgRepo.FindTeamByID(a.TargetID)
		if err != nil {
			return 0, notFoundOr(err, ErrTeamNotFound, "resolve team assignee")
		}
		if team.LeaderID == nil {
			return 0, ErrInvalidTarget
		}
		return *team.LeaderID, nil
	case model.AssignDept:
		dept, err := s.orgRepo.FindDepartmentByID(a.TargetID)
		if err != nil {
			return 0, notFoundOr(err, ErrDepartmentNotFound, "resolve department assignee")
		}
		if dept.ManagerID == nil {
			return 0, ErrInvalidTarget
		}
		return *dept.ManagerID, nil
	default:
		return 0, ErrInvalidInput
	}
}

// notFoundOr 把 gorm.ErrRecordNotFound 转成 notFound，其他错误记日志后返回 ErrInternal。
func notFoundOr(err, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	log.Errorf("%s: %v", op, err)
	return ErrInternal
}

// buildTask 校验输入并解析负责人，返回待插入的任务和（可选的）指派通知。
func (s *taskService) buildTask(in CreateTaskInput) (*model.Task, *model.Message, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.CreatorID == 0 || in.AssignedID == 0 {
		return nil, nil, ErrInvalidInput
	}
	if in.StartTime != nil && in.EndTime != nil && in.EndTime.Before(*in.StartTime) {
		return nil, nil, ErrInvalidInput
	}
	assignment, err := model.ParseAssignment(in.AssignedType, in.AssignedID)
	if err != nil {
		return nil, nil, ErrInvalidInput
	}

	if _, err := s.userRepo.FindByID(in.CreatorID); err != nil {
		return nil, nil, notFoundOr(err, ErrUserNotFound, "load task creator")
	}
	assigneeID, err := s.resolveAssignee(assignment)
	if err != nil {
		return nil, nil, err
	}

	task := &model.Task{
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		CreatorID:    in.CreatorID,
		AssignedType: assignment.Kind,
		AssignedID:   assignment.TargetID,
		AssigneeID:   assigneeID,
		ParentID:     in.ParentID,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Status:       model.StatusForProgress(model.MinProgress),
		Progress:     model.MinProgress,
		ImageURL:     in.ImageURL,
	}

	var notice *model.Message
	if assigneeID != in.CreatorID {
		notice = &model.Message{UserID: assigneeID, Content: fmt.Sprintf(assignmentNoticeF, title)}
	}
	return task, notice, nil
}

func (s *taskService) CreateTask(in CreateTaskInput) (*model.Task, error) {
	in.ParentID = nil
	task, notice, err := s.buildTask(in)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.Create(task, notice); err != nil {
		log.Errorf("CreateTask: failed to insert task %q: %v", task.Title, err)
		return nil, ErrInternal
	}
	metrics.RecordTaskCreated(string(task.AssignedType), "task")
	log.Infow("task created", "task_id", task.ID, "assigned_type", task.AssignedType, "assignee_id", task.AssigneeID)
	return task, nil
}

func (s *taskService) CreateSubTask(in CreateTaskInput) (*model.Task, []repository.ProgressChange, error) {
	if in.ParentID == nil || *in.ParentID == 0 {
		return nil, nil, ErrInvalidInput
	}
	if _, err := s.taskRepo.FindByID(*in.ParentID); err != nil {
		return nil, nil, notFoundOr(err, ErrTaskNotFound, "load parent task")
	}

	task, notice, err := s.buildTask(in)
	if err != nil {
		return nil, nil, err
	}
	changes, err := s.taskRepo.CreateSubTask(task, notice)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		log.Errorf("CreateSubTask: failed to insert sub task under %d: %v", *in.ParentID, err)
		return nil, nil, ErrInternal
	}
	metrics.RecordTaskCreated(string(task.AssignedType), "subtask")
	metrics.ObserveRollupDepth(len(changes))
	return task, changes, nil
}

func (s *taskService) GetTaskDetail(taskID uint) (*model.TaskView, error) {
	if taskID == 0 {
		return nil, ErrInvalidInput
	}
	view, err := s.taskRepo.FindViewByID(taskID)
	if err != nil {
		return nil, notFoundOr(err, ErrTaskNotFound, "GetTaskDetail")
	}
	return view, nil
}

func (s *taskService) GetSubTasks(parentID uint) ([]model.TaskView, error) {
	if parentID == 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.taskRepo.FindByID(parentID); err != nil {
		return nil, notFoundOr(err, ErrTaskNotFound, "GetSubTasks")
	}
	children, err := s.taskRepo.FindChildren(parentID)
	if err != nil {
		log.Errorf("GetSubTasks: failed to query children of %d: %v", parentID, err)
		return nil, ErrInternal
	}
	return children, nil
}

func (s *taskService) ListTasksForUser(userID uint) ([]model.TaskView, error) {
	return s.listVisible(userID, repository.ListOptions{OrderBy: repository.OrderNewest})
}

func (s *taskService) PersonalTopItems(userID uint) ([]model.TaskView, error) {
	return s.listVisible(userID, repository.ListOptions{
		OnlyUnfinished: true,
		OrderBy:        repository.OrderDeadline,
		Limit:          personalTopLimit,
	})
}

func (s *taskService) listVisible(userID uint, opts repository.ListOptions) ([]model.TaskView, error) {
	v, err := s.org.VisibilityFor(userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.FindVisible(v, opts)
	if err != nil {
		log.Errorf("failed to list visible tasks of user %d: %v", userID, err)
		return nil, ErrInternal
	}
	return tasks, nil
}

func (s *taskService) GetGantt(userID uint) ([]model.GanttItem, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	tasks, err := s.taskRepo.FindByCreatorOrAssignee(userID)
	if err != nil {
		log.Errorf("GetGantt: failed to query tasks of user %d: %v", userID, err)
		return nil, ErrInternal
	}

	items := make([]model.GanttItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, model.GanttItem{
			ID:           t.ID,
			Name:         t.Title,
			Description:  t.Description,
			StartDate:    formatDate(t.StartTime),
			EndDate:      formatDate(t.EndTime),
			Progress:     float64(t.Progress) / 100.0,
			Status:       t.Status,
			CreatorID:    t.CreatorID,
			AssignedID:   t.AssigneeID,
			AssigneeName: t.AssigneeName,
			CreatorName:  t.CreatorName,
			ParentID:     t.ParentID,
			Color:        model.GanttColor(t.Status, t.Progress),
		})
	}
	return items, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(ganttDateLayout)
	return &s
}

func (s *taskService) CompanyTopMatters() ([]model.TaskView, error) {
	tasks, err := s.taskRepo.FindCompanyTopMatters(companyViewLimit)
	if err != nil {
		log.Errorf("CompanyTopMatters: %v", err)
		return nil, ErrInternal
	}
	return tasks, nil
}

func (s *taskService) CompanyDispatched() ([]model.TaskView, error) {
	tasks, err := s.taskRepo.FindCompanyDispatched(companyViewLimit)
	if err != nil {
		log.Errorf("CompanyDispatched: %v", err)
		return nil, ErrInternal
	}
	return tasks, nil
}
