package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"worklog_go/internal/model"
	"worklog_go/internal/service"

	"github.com/gin-gonic/gin"
)

// mapServiceError 把 Service 层哨兵错误转换为 HTTP 状态码和对外消息。
// 未识别的错误一律按 500 处理，不向外暴露细节。
func mapServiceError(err error) (httpStatus int, message string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "请求参数错误"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "用户名或密码错误"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "登录已失效"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "无权访问"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "用户不存在"
	case errors.Is(err, service.ErrTaskNotFound):
		return http.StatusNotFound, "任务不存在"
	case errors.Is(err, service.ErrDepartmentNotFound):
		return http.StatusNotFound, "部门不存在"
	case errors.Is(err, service.ErrTeamNotFound):
		return http.StatusNotFound, "团队不存在"
	case errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict, "用户名已存在"
	case errors.Is(err, service.ErrNameTaken):
		return http.StatusConflict, "名称已存在"
	case errors.Is(err, service.ErrProgressRegression):
		return http.StatusConflict, "进度不能低于当前进度"
	case errors.Is(err, service.ErrProgressDerived):
		return http.StatusConflict, "该任务有子任务，进度由子任务汇总"
	case errors.Is(err, service.ErrDepartmentInUse):
		return http.StatusConflict, "部门下仍有团队或关联任务，无法删除"
	case errors.Is(err, service.ErrTeamInUse):
		return http.StatusConflict, "团队下仍有成员或关联任务，无法删除"
	case errors.Is(err, service.ErrUserInUse):
		return http.StatusConflict, "用户仍有关联任务，无法删除"
	case errors.Is(err, service.ErrInvalidTarget):
		return http.StatusUnprocessableEntity, "指派对象没有负责人"
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway, "AI 服务调用失败"
	case errors.Is(err, service.ErrAINotConfigured):
		return http.StatusServiceUnavailable, "AI 服务未配置"
	default:
		return http.StatusInternalServerError, "服务器内部错误"
	}
}

// respondOK 写出 {"code":0,"data":...,"msg":"success"}。
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": data,
		"msg":  "success",
	})
}

// respondError 按 mapServiceError 写出错误响应，code 与 HTTP 状态码一致。
func respondError(c *gin.Context, err error) {
	status, msg := mapServiceError(err)
	c.JSON(status, gin.H{
		"code": status,
		"msg":  msg,
	})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code": http.StatusBadRequest,
		"msg":  msg,
	})
}

// extractBearerToken 从 Authorization 请求头提取 Bearer Token。
// 期望格式：Authorization: Bearer <token>
func extractBearerToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	if strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("empty token")
	}
	return parts[1], nil
}

// getUserFromContext 从 Gin 上下文中读取 AuthMiddleware 注入的用户对象。
// 如果上下文异常，该函数会直接写错误响应并返回 false，调用方只需 `if !ok { return }`。
func getUserFromContext(c *gin.Context) (*model.User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code": http.StatusUnauthorized,
			"msg":  "未登录",
		})
		return nil, false
	}

	user, ok := userVal.(*model.User)
	if !ok {
		respondError(c, service.ErrInternal)
		return nil, false
	}
	return user, true
}

// 客户端提交的时间可能是以下任一格式
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseOptionalTime 解析可选的时间字段，空串返回 nil。
func parseOptionalTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, service.ErrInvalidInput
}

// optionalString 把空串转成 nil，用于 image_url 这类可空列。
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// bindOptionalJSON 与 ShouldBindJSON 相同，但允许空请求体。
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
