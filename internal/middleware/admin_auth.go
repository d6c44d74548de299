package middleware

import (
	"net/http"

	"worklog_go/internal/model"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware 只放行高权限角色（系统管理员、公司领导）。
// 必须挂在 AuthMiddleware 之后。
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get("user")
		if !exists {
			abort(c, http.StatusUnauthorized, "未登录")
			return
		}
		user, ok := userVal.(*model.User)
		if !ok {
			abort(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		if !user.IsHighPrivilege() {
			abort(c, http.StatusForbidden, "无权访问")
			return
		}
		c.Next()
	}
}
