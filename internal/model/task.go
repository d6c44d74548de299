package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// 任务状态由进度推导：0 -> pending，100 -> completed，其余 -> in_progress。
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

// StatusForProgress 返回进度对应的状态。
func StatusForProgress(progress int) string {
	switch {
	case progress <= MinProgress:
		return TaskStatusPending
	case progress >= MaxProgress:
		return TaskStatusCompleted
	default:
		return TaskStatusInProgress
	}
}

// ValidProgress 判断进度是否在 [0,100]。
func ValidProgress(progress int) bool {
	return progress >= MinProgress && progress <= MaxProgress
}

// AssignmentKind 是任务指派目标的种类。
type AssignmentKind string

const (
	AssignPersonal AssignmentKind = "personal"
	AssignTeam     AssignmentKind = "team"
	AssignDept     AssignmentKind = "dept"
)

var ErrUnknownAssignmentKind = errors.New("unknown assignment kind")

// Assignment 是任务的指派目标：个人(用户 ID)、团队(团队 ID) 或部门(部门 ID)。
// 团队/部门目标在创建任务时解析为具体负责人，写入 Task.AssigneeID。
type Assignment struct {
	Kind     AssignmentKind
	TargetID uint
}

func PersonalAssignment(userID uint) Assignment {
	return Assignment{Kind: AssignPersonal, TargetID: userID}
}

func TeamAssignment(teamID uint) Assignment {
	return Assignment{Kind: AssignTeam, TargetID: teamID}
}

func DeptAssignment(deptID uint) Assignment {
	return Assignment{Kind: AssignDept, TargetID: deptID}
}

// ParseAssignment 从请求里的 assigned_type/assigned_id 构造指派目标。
// 兼容 "department"/"user" 这样的别名。
func ParseAssignment(kind string, targetID uint) (Assignment, error) {
	switch AssignmentKind(strings.ToLower(strings.TrimSpace(kind))) {
	case AssignPersonal, "user":
		return PersonalAssignment(targetID), nil
	case AssignTeam:
		return TeamAssignment(targetID), nil
	case AssignDept, "department":
		return DeptAssignment(targetID), nil
	default:
		return Assignment{}, fmt.Errorf("%w: %q", ErrUnknownAssignmentKind, kind)
	}
}

// Task 对应 biz_task 表。
// AssignedType/AssignedID 保存指派目标本身，AssigneeID 保存解析后的负责人。
type Task struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"type:varchar(255);not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	CreatorID    uint           `gorm:"index;not null" json:"creator_id"`
	AssignedType AssignmentKind `gorm:"type:varchar(16);not null;index:idx_task_target" json:"assigned_type"`
	AssignedID   uint           `gorm:"not null;index:idx_task_target" json:"assigned_id"`
	AssigneeID   uint           `gorm:"index;not null" json:"assignee_id"`
	ParentID     *uint          `gorm:"index" json:"parent_id"`
	StartTime    *time.Time     `json:"start_time"`
	EndTime      *time.Time     `json:"end_time"`
	Status       string         `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	Progress     int            `gorm:"not null;default:0" json:"progress"`
	ImageURL     *string        `gorm:"type:varchar(512)" json:"image_url"`
	CreateTime   time.Time      `gorm:"autoCreateTime" json:"create_time"`
	UpdateTime   time.Time      `gorm:"autoUpdateTime" json:"update_time"`
}

func (Task) TableName() string {
	return "biz_task"
}

// Assignment 返回任务的指派目标。
func (t *Task) Assignment() Assignment {
	return Assignment{Kind: t.AssignedType, TargetID: t.AssignedID}
}

// TaskView 是带有人员/目标名称的任务展示结构。
type TaskView struct {
	Task
	CreatorName  string `json:"creator_name"`
	AssigneeName string `json:"assignee_name"`
	TargetName   string `json:"target_name"`
	SubTaskCount int64  `json:"sub_task_count"`
}

// GanttItem 是甘特图接口的一行，进度为 0~1 的小数，日期格式 YYYY-MM-DD（未设置时为 null）。
type GanttItem struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	Progress     float64 `json:"progress"`
	Status       string  `json:"status"`
	CreatorID    uint    `json:"creator_id"`
	AssignedID   uint    `json:"assigned_id"`
	AssigneeName string  `json:"assignee_name"`
	CreatorName  string  `json:"creator_name"`
	ParentID     *uint   `json:"parent_id"`
	Color        string  `json:"color"`
	IsMilestone  bool    `json:"is_milestone"`
}

// GanttColor 按状态和进度给出甘特图颜色。
func GanttColor(status string, progress int) string {
	switch status {
	case TaskStatusCompleted:
		return "#4CAF50"
	case TaskStatusInProgress:
		switch {
		case progress >= 80:
			return "#2196F3"
		case progress >= 50:
			return "#FF9800"
		default:
			return "#FFC107"
		}
	default:
		return "#9E9E9E"
	}
}
