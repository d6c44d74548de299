package repository

import (
	"fmt"

	"worklog_go/internal/model"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// 任务列表的排序方式。
const (
	OrderNewest   = "biz_task.create_time DESC, biz_task.id DESC"
	OrderDeadline = "CASE WHEN biz_task.end_time IS NULL THEN 1 ELSE 0 END, biz_task.end_time ASC, biz_task.id ASC"
	OrderStart    = "CASE WHEN biz_task.start_time IS NULL THEN 1 ELSE 0 END, biz_task.start_time ASC, biz_task.id ASC"
	OrderID       = "biz_task.id ASC"
)

// Visibility 描述一个用户能看到哪些任务：自己创建的、自己负责的，
// 以及指派给本人、本人所在团队或所在部门的任务。
type Visibility struct {
	UserID       uint
	TeamID       *uint
	DepartmentID *uint
}

// ListOptions 控制任务列表的过滤、排序和条数，Limit<=0 表示不限制。
type ListOptions struct {
	OnlyUnfinished bool
	OrderBy        string
	Limit          int
}

// TaskRepository 定义任务的持久化操作。
type TaskRepository interface {
	// Create 插入根任务；notice 非 nil 时在同一事务里写入指派通知。
	Create(task *model.Task, notice *model.Message) error
	// CreateSubTask 插入子任务并在同一事务里重算所有祖先的进度。
	CreateSubTask(task *model.Task, notice *model.Message) ([]ProgressChange, error)
	FindByID(id uint) (*model.Task, error)
	FindByIDs(ids []uint) ([]model.Task, error)
	FindViewByID(id uint) (*model.TaskView, error)
	FindChildren(parentID uint) ([]model.TaskView, error)
	FindVisible(v Visibility, opts ListOptions) ([]model.TaskView, error)
	// FindByCreatorOrAssignee 返回用户创建或负责的任务，按开始时间排序（甘特图）。
	FindByCreatorOrAssignee(userID uint) ([]model.TaskView, error)
	CountVisibleByStatus(v Visibility) (map[string]int64, error)
	// FindCompanyTopMatters 高权限用户创建的未完成根任务，截止时间最近的在前。
	FindCompanyTopMatters(limit int) ([]model.TaskView, error)
	// FindCompanyDispatched 高权限用户下发给团队/部门的任务，最新的在前。
	FindCompanyDispatched(limit int) ([]model.TaskView, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskViewColumns = "biz_task.*, " +
	"COALESCE(creator.name, '') AS creator_name, " +
	"COALESCE(assignee.name, '') AS assignee_name, " +
	"COALESCE(CASE biz_task.assigned_type " +
	"WHEN 'personal' THEN target_user.name " +
	"WHEN 'team' THEN target_team.team_name " +
	"WHEN 'dept' THEN target_dept.dept_name END, '') AS target_name, " +
	"(SELECT COUNT(*) FROM biz_task AS sub WHERE sub.parent_id = biz_task.id) AS sub_task_count"

var taskViewJoins = []string{
	"LEFT JOIN sys_user AS creator ON creator.id = biz_task.creator_id",
	"LEFT JOIN sys_user AS assignee ON assignee.id = biz_task.assignee_id",
	"LEFT JOIN sys_user AS target_user ON biz_task.assigned_type = 'personal' AND target_user.id = biz_task.assigned_id",
	"LEFT JOIN sys_team AS target_team ON biz_task.assigned_type = 'team' AND target_team.id = biz_task.assigned_id",
	"LEFT JOIN sys_department AS target_dept ON biz_task.assigned_type = 'dept' AND target_dept.id = biz_task.assigned_id",
}

// viewQuery 返回带人员/目标名称的任务查询。
func (r *taskRepository) viewQuery() *gorm.DB {
	q := r.db.Table("biz_task").Select(taskViewColumns)
	for _, j := range taskViewJoins {
		q = q.Joins(j)
	}
	return q
}

func (r *taskRepository) Create(task *model.Task, notice *model.Message) error {
	if task == nil {
		return fmt.Errorf("task is nil")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return pkgerrors.Wrap(err, "insert task")
		}
		return createNotice(tx, task, notice)
	})
}

func (r *taskRepository) CreateSubTask(task *model.Task, notice *model.Message) ([]ProgressChange, error) {
	if task == nil || task.ParentID == nil {
		return nil, fmt.Errorf("sub task requires a parent")
	}
	var changes []ProgressChange
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// 父任务不存在时这里返回 gorm.ErrRecordNotFound
		if err := lockTree(tx, *task.ParentID); err != nil {
			return err
		}
		if err := tx.Create(task).Error; err != nil {
			return pkgerrors.Wrap(err, "insert sub task")
		}
		if err := createNotice(tx, task, notice); err != nil {
			return err
		}
		var err error
		changes, err = recomputeAncestors(tx, task.ParentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// createNotice 在任务所在的事务里写入指派通知，两者一起提交或回滚。
func createNotice(tx *gorm.DB, task *model.Task, notice *model.Message) error {
	if notice == nil {
		return nil
	}
	notice.TaskID = &task.ID
	if err := NewMessageRepository(tx).Create(notice); err != nil {
		return pkgerrors.Wrap(err, "insert task notice")
	}
	return nil
}

func (r *taskRepository) FindByID(id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) FindByIDs(ids []uint) ([]model.Task, error) {
	if len(ids) == 0 {
		return []model.Task{}, nil
	}
	var tasks []model.Task
	if err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindViewByID(id uint) (*model.TaskView, error) {
	var views []model.TaskView
	if err := r.viewQuery().Where("biz_task.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &views[0], nil
}

func (r *taskRepository) FindChildren(parentID uint) ([]model.TaskView, error) {
	var views []model.TaskView
	err := r.viewQuery().
		Where("biz_task.parent_id = ?", parentID).
		Order(OrderID).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

// visibleCondition 构造可见性条件组，作为一个整体放进 WHERE。
func (r *taskRepository) visibleCondition(v Visibility) *gorm.DB {
	cond := r.db.Where("biz_task.creator_id = ?", v.UserID).
		Or("biz_task.assignee_id = ?", v.UserID).
		Or("(biz_task.assigned_type = ? AND biz_task.assigned_id = ?)", model.AssignPersonal, v.UserID)
	if v.TeamID != nil {
		cond = cond.Or("(biz_task.assigned_type = ? AND biz_task.assigned_id = ?)", model.AssignTeam, *v.TeamID)
	}
	if v.DepartmentID != nil {
		cond = cond.Or("(biz_task.assigned_type = ? AND biz_task.assigned_id = ?)", model.AssignDept, *v.DepartmentID)
	}
	return cond
}

func (r *taskRepository) FindVisible(v Visibility, opts ListOptions) ([]model.TaskView, error) {
	q := r.viewQuery().Where(r.visibleCondition(v))
	if opts.OnlyUnfinished {
		q = q.Where("biz_task.status <> ?", model.TaskStatusCompleted)
	}
	if opts.OrderBy == "" {
		opts.OrderBy = OrderNewest
	}
	q = q.Order(opts.OrderBy)
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var views []model.TaskView
	if err := q.Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

func (r *taskRepository) FindByCreatorOrAssignee(userID uint) ([]model.TaskView, error) {
	var views []model.TaskView
	err := r.viewQuery().
		Where("biz_task.creator_id = ? OR biz_task.assignee_id = ?", userID, userID).
		Order(OrderStart).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

type statusCount struct {
	Status string
	Total  int64
}

func (r *taskRepository) CountVisibleByStatus(v Visibility) (map[string]int64, error) {
	var rows []statusCount
	err := r.db.Model(&model.Task{}).
		Select("biz_task.status AS status, COUNT(*) AS total").
		Where(r.visibleCondition(v)).
		Group("biz_task.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// highPrivilegeCreators 是高权限用户 ID 的子查询。
func (r *taskRepository) highPrivilegeCreators() *gorm.DB {
	return r.db.Model(&model.User{}).
		Select("id").
		Where("role_id BETWEEN ? AND ?", model.RoleIDMinHighPrivilege, model.RoleIDMaxHighPrivilege)
}

func (r *taskRepository) FindCompanyTopMatters(limit int) ([]model.TaskView, error) {
	q := r.viewQuery().
		Where("biz_task.parent_id IS NULL").
		Where("biz_task.status <> ?", model.TaskStatusCompleted).
		Where("biz_task.creator_id IN (?)", r.highPrivilegeCreators()).
		Order(OrderDeadline)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var views []model.TaskView
	if err := q.Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

func (r *taskRepository) FindCompanyDispatched(limit int) ([]model.TaskView, error) {
	q := r.viewQuery().
		Where("biz_task.assigned_type IN ?", []model.AssignmentKind{model.AssignTeam, model.AssignDept}).
		Where("biz_task.creator_id IN (?)", r.highPrivilegeCreators()).
		Order(OrderNewest)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var views []model.TaskView
	if err := q.Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}
