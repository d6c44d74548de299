package repository

import (
	"errors"
	"math"

	"worklog_go/internal/model"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxRollupDepth 是进度汇总向上遍历的最大层数，超过视为任务树损坏（例如成环）。
const MaxRollupDepth = 32

var (
	// ErrProgressRegression 提交的进度低于任务当前进度
	ErrProgressRegression = errors.New("progress must not decrease")
	// ErrRollupTooDeep 祖先链超过 MaxRollupDepth
	ErrRollupTooDeep = errors.New("task tree exceeds max rollup depth")
	// ErrInvalidProgress 进度不在 [0,100]
	ErrInvalidProgress = errors.New("progress out of range")
	// ErrProgressDerived 任务有子任务，进度只能由子任务汇总得出
	ErrProgressDerived = errors.New("task has subtasks; progress is derived")
)

// ProgressChange 记录一次汇总中某个任务写入的新进度和状态。
type ProgressChange struct {
	TaskID   uint   `json:"task_id"`
	Progress int    `json:"progress"`
	Status   string `json:"status"`
}

var forUpdate = clause.Locking{Strength: "UPDATE"}

// findRootID 沿 parent_id 向上找到树根。parent_id 创建后不再修改，这里不加锁。
func findRootID(tx *gorm.DB, taskID uint) (uint, error) {
	current := taskID
	for depth := 0; depth <= MaxRollupDepth; depth++ {
		var t model.Task
		if err := tx.Select("id", "parent_id").First(&t, current).Error; err != nil {
			return 0, err
		}
		if t.ParentID == nil {
			return t.ID, nil
		}
		current = *t.ParentID
	}
	return 0, ErrRollupTooDeep
}

// lockTree 对任务所在树的根加行锁。同一棵树上的汇总因此串行执行，
// 加锁顺序固定为 根 -> 叶 -> 祖先，不会互相死锁。
func lockTree(tx *gorm.DB, taskID uint) error {
	rootID, err := findRootID(tx, taskID)
	if err != nil {
		return err
	}
	var root model.Task
	return tx.Clauses(forUpdate).Select("id").First(&root, rootID).Error
}

func writeProgress(tx *gorm.DB, taskID uint, progress int) (ProgressChange, error) {
	status := model.StatusForProgress(progress)
	err := tx.Model(&model.Task{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{"progress": progress, "status": status}).Error
	if err != nil {
		return ProgressChange{}, pkgerrors.Wrapf(err, "update progress of task %d", taskID)
	}
	return ProgressChange{TaskID: taskID, Progress: progress, Status: status}, nil
}

// applyProgress 在事务 tx 内把任务进度设为 progress，再逐级重算祖先。
// 只接受叶子任务：有子任务的任务返回 ErrProgressDerived。
// 只有叶子要求进度不回退，祖先取子任务平均值，可以下降。
func applyProgress(tx *gorm.DB, taskID uint, progress int) ([]ProgressChange, error) {
	if !model.ValidProgress(progress) {
		return nil, ErrInvalidProgress
	}
	if err := lockTree(tx, taskID); err != nil {
		return nil, err
	}

	var task model.Task
	if err := tx.Clauses(forUpdate).First(&task, taskID).Error; err != nil {
		return nil, err
	}
	// 新增子任务同样先锁树根，这里的计数在锁内是稳定的
	var children int64
	if err := tx.Model(&model.Task{}).Where("parent_id = ?", task.ID).Count(&children).Error; err != nil {
		return nil, pkgerrors.Wrapf(err, "count children of task %d", task.ID)
	}
	if children > 0 {
		return nil, ErrProgressDerived
	}
	if progress < task.Progress {
		return nil, ErrProgressRegression
	}

	change, err := writeProgress(tx, task.ID, progress)
	if err != nil {
		return nil, err
	}
	changes := []ProgressChange{change}

	parents, err := recomputeAncestors(tx, task.ParentID)
	if err != nil {
		return nil, err
	}
	return append(changes, parents...), nil
}

// recomputeAncestors 从 parentID 开始向上，把每个祖先的进度设为其直接子任务进度的四舍五入平均值。
// 调用方需已持有树根的锁。
func recomputeAncestors(tx *gorm.DB, parentID *uint) ([]ProgressChange, error) {
	var changes []ProgressChange
	for depth := 1; parentID != nil; depth++ {
		if depth > MaxRollupDepth {
			return nil, ErrRollupTooDeep
		}

		var parent model.Task
		if err := tx.Clauses(forUpdate).First(&parent, *parentID).Error; err != nil {
			return nil, pkgerrors.Wrapf(err, "load parent task %d", *parentID)
		}

		var values []int
		if err := tx.Model(&model.Task{}).Clauses(forUpdate).
			Where("parent_id = ?", parent.ID).
			Pluck("progress", &values).Error; err != nil {
			return nil, pkgerrors.Wrapf(err, "load children of task %d", parent.ID)
		}

		avg := averageProgress(values)
		change, err := writeProgress(tx, parent.ID, avg)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
		parentID = parent.ParentID
	}
	return changes, nil
}

// averageProgress 返回四舍五入（0.5 进位）后的平均值；没有子任务时为 0。
func averageProgress(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}
