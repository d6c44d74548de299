package handler

import (
	"net/http"

	"worklog_go/internal/service"
	"worklog_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// TaskHandler 负责任务创建与各类任务视图。
type TaskHandler struct {
	tasks service.TaskService
}

func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// CreateTaskRequest 是创建任务/子任务的请求体。
// assigned_type 取 personal / team / dept，assigned_id 对应 用户/团队/部门 ID。
type CreateTaskRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	CreatorID    uint   `json:"creator_id" binding:"required"`
	AssignedType string `json:"assigned_type" binding:"required"`
	AssignedID   uint   `json:"assigned_id" binding:"required"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	ImageURL     string `json:"image_url"`
	ParentID     uint   `json:"parent_id"`
}

type taskIDRequest struct {
	TaskID uint `json:"task_id" binding:"required"`
}

// subTasksRequest 兼容旧客户端传 task_id。
type subTasksRequest struct {
	ParentID uint `json:"parent_id"`
	TaskID   uint `json:"task_id"`
}

func (req CreateTaskRequest) toInput() (service.CreateTaskInput, error) {
	start, err := parseOptionalTime(req.StartTime)
	if err != nil {
		return service.CreateTaskInput{}, err
	}
	end, err := parseOptionalTime(req.EndTime)
	if err != nil {
		return service.CreateTaskInput{}, err
	}
	in := service.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		CreatorID:    req.CreatorID,
		AssignedType: req.AssignedType,
		AssignedID:   req.AssignedID,
		StartTime:    start,
		EndTime:      end,
		ImageURL:     optionalString(req.ImageURL),
	}
	if req.ParentID != 0 {
		parentID := req.ParentID
		in.ParentID = &parentID
	}
	return in, nil
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("CreateTask: failed to bind request: %v", err)
		respondBadRequest(c, "缺少必填字段")
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondBadRequest(c, "时间格式错误")
		return
	}

	task, err := h.tasks.CreateTask(in)
	if err != nil {
		log.Warnf("CreateTask: %v", err)
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"task_id": task.ID})
}

// CreateSubTask 返回新子任务 ID 以及被重算的祖先进度。
func (h *TaskHandler) CreateSubTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ParentID == 0 {
		respondBadRequest(c, "缺少必填字段")
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondBadRequest(c, "时间格式错误")
		return
	}

	task, changes, err := h.tasks.CreateSubTask(in)
	if err != nil {
		log.Warnf("CreateSubTask: parent %d: %v", req.ParentID, err)
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"task_id": task.ID, "rollup": changes})
}

// GetTasks 返回用户可见的全部任务。
func (h *TaskHandler) GetTasks(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 user_id")
		return
	}
	tasks, err := h.tasks.ListTasksForUser(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tasks)
}

// GetUserTasks 返回甘特图数据，额外带 count。
func (h *TaskHandler) GetUserTasks(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少用户ID")
		return
	}
	items, err := h.tasks.GetGantt(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":  0,
		"data":  items,
		"count": len(items),
		"msg":   "success",
	})
}

func (h *TaskHandler) GetTaskDetail(c *gin.Context) {
	var req taskIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 task_id")
		return
	}
	view, err := h.tasks.GetTaskDetail(req.TaskID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, view)
}

func (h *TaskHandler) GetSubTasks(c *gin.Context) {
	var req subTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "请求体格式错误")
		return
	}
	parentID := req.ParentID
	if parentID == 0 {
		parentID = req.TaskID
	}
	if parentID == 0 {
		respondBadRequest(c, "缺少 parent_id")
		return
	}

	children, err := h.tasks.GetSubTasks(parentID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, children)
}

func (h *TaskHandler) CompanyTopMatters(c *gin.Context) {
	tasks, err := h.tasks.CompanyTopMatters()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tasks)
}

func (h *TaskHandler) CompanyDispatched(c *gin.Context) {
	tasks, err := h.tasks.CompanyDispatched()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tasks)
}

func (h *TaskHandler) PersonalTopItems(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 user_id")
		return
	}
	tasks, err := h.tasks.PersonalTopItems(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tasks)
}
