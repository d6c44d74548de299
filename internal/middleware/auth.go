package middleware

import (
	"errors"
	"net/http"
	"strings"

	"worklog_go/internal/service"
	"worklog_go/pkg/token"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 是 JWT 认证中间件，用于保护 /web 管理端和 /logout。
// 工作流程：
//  1. 从请求头 Authorization 中提取 Bearer Token
//  2. 验证 Token 签名和有效期
//  3. 检查 Token 类型必须是 access
//  4. 检查 token 是否已注销（黑名单）
//  5. 根据 Token 中的用户 ID 查询数据库，确认用户仍然存在
//  6. 将 claims 和 user 注入到 Gin 上下文中，后续 Handler 通过 c.Get("user") 获取
func AuthMiddleware(jwtManager *token.JWTManager, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtManager == nil || userService == nil {
			abort(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}

		tokenString, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abort(c, http.StatusUnauthorized, "Authorization 请求头无效")
			return
		}

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil || claims == nil {
			abort(c, http.StatusUnauthorized, "登录已失效")
			return
		}

		// refresh token 不能当 access token 用
		if claims.TokenType != token.TokenTypeAccess {
			abort(c, http.StatusUnauthorized, "token 类型错误")
			return
		}

		revoked, err := userService.IsRevoked(c.Request.Context(), tokenString)
		if err != nil {
			abort(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		if revoked {
			abort(c, http.StatusUnauthorized, "登录已失效")
			return
		}

		// 即使 Token 有效，用户也可能已被删除
		user, err := userService.GetProfile(claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				abort(c, http.StatusUnauthorized, "用户不存在")
			} else {
				abort(c, http.StatusInternalServerError, "服务器内部错误")
			}
			return
		}

		c.Set("claims", claims)
		c.Set("user", user)
		c.Next()
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code": status,
		"msg":  msg,
	})
}

// extractBearerToken 从 Authorization 请求头中提取 Bearer Token。
// 使用 strings.EqualFold 做大小写不敏感比较，兼容 "bearer"、"BEARER" 等写法。
func extractBearerToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	if parts[1] == "" {
		return "", errors.New("empty token")
	}
	return parts[1], nil
}
