package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"worklog_go/internal/service"
	"worklog_go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxImageSize 是日志图片的大小上限。
const MaxImageSize = 10 << 20

// maxUploadBody 是上传请求体的上限，为 multipart 头部留出 1MB。
const maxUploadBody = MaxImageSize + 1<<20

var allowedImageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// WorkLogHandler 负责日志提交、查询与图片上传。
type WorkLogHandler struct {
	logs      service.WorkLogService
	uploadDir string
	uploadURL string
}

// NewWorkLogHandler uploadDir 是图片落盘目录，uploadURL 是对外访问前缀（如 /uploads）。
func NewWorkLogHandler(logs service.WorkLogService, uploadDir, uploadURL string) *WorkLogHandler {
	return &WorkLogHandler{logs: logs, uploadDir: uploadDir, uploadURL: uploadURL}
}

// CreateWorkLogRequest 是提交日志的请求体，log_date 格式 YYYY-MM-DD。
type CreateWorkLogRequest struct {
	TaskID    uint     `json:"task_id" binding:"required"`
	UserID    uint     `json:"user_id" binding:"required"`
	Content   string   `json:"content" binding:"required"`
	Keywords  string   `json:"keywords"`
	ImageURL  string   `json:"image_url"`
	LogDate   string   `json:"log_date" binding:"required"`
	Progress  *int     `json:"progress" binding:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type personalLogsRequest struct {
	UserID    uint   `json:"user_id" binding:"required"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// CreateWorkLog 写入日志并汇总进度，返回日志 ID 和每个被更新任务的新进度。
func (h *WorkLogHandler) CreateWorkLog(c *gin.Context) {
	var req CreateWorkLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("CreateWorkLog: failed to bind request: %v", err)
		respondBadRequest(c, "缺少必填字段")
		return
	}

	entry, changes, err := h.logs.CreateWorkLog(service.CreateWorkLogInput{
		TaskID:    req.TaskID,
		UserID:    req.UserID,
		Content:   req.Content,
		Keywords:  req.Keywords,
		ImageURL:  optionalString(req.ImageURL),
		LogDate:   req.LogDate,
		Progress:  req.Progress,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		log.Warnf("CreateWorkLog: task %d user %d: %v", req.TaskID, req.UserID, err)
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"log_id": entry.ID, "rollup": changes})
}

func (h *WorkLogHandler) GetLogs(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 user_id")
		return
	}
	logs, err := h.logs.ListLogs(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, logs)
}

func (h *WorkLogHandler) PersonalLogs(c *gin.Context) {
	var req personalLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 user_id")
		return
	}
	logs, err := h.logs.PersonalLogs(req.UserID, req.StartDate, req.EndDate)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, logs)
}

// UploadImage 接收 multipart 字段 file，保存为 <uuid><ext>，返回可访问的 url。
func (h *WorkLogHandler) UploadImage(c *gin.Context) {
	// 读取时就截断超大请求，不等整个 body 落盘
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondTooLarge(c)
			return
		}
		respondBadRequest(c, "缺少上传文件")
		return
	}
	if file.Size > MaxImageSize {
		respondTooLarge(c)
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedImageExts[ext]; !ok {
		respondBadRequest(c, "不支持的图片格式")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		log.Errorf("UploadImage: create upload dir %s: %v", h.uploadDir, err)
		respondError(c, service.ErrInternal)
		return
	}
	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		log.Errorf("UploadImage: save %s: %v", name, err)
		respondError(c, service.ErrInternal)
		return
	}
	log.Infow("work log image uploaded", "file", name, "size", file.Size)
	respondOK(c, gin.H{"url": strings.TrimRight(h.uploadURL, "/") + "/" + name})
}

func respondTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"code": http.StatusRequestEntityTooLarge,
		"msg":  "图片不能超过 10MB",
	})
}
