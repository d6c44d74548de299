package handler

import (
	"net/http"

	"worklog_go/internal/service"
	"worklog_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UserHandler 负责登录、token 续期与注销。
// /login 保持客户端已有的裸 JSON 约定：成功 {"id":...}，失败 {"error":...}。
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建 UserHandler。
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// LoginRequest 是登录接口请求体。
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshTokenRequest 是续期接口请求体。
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login 校验用户名密码，返回用户 ID 和一对 token。
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: failed to bind request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户名或密码不能为空"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户名或密码不能为空"})
		return
	}

	res, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		log.Warnf("Login: user %q failed: %v", req.Username, err)
		status, msg := mapServiceError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            res.UserID,
		"access_token":  res.AccessToken,
		"refresh_token": res.RefreshToken,
	})
}

// RefreshToken 用 refresh token 换一对新 token。
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 refresh_token")
		return
	}

	access, refresh, err := h.userService.RefreshToken(req.RefreshToken)
	if err != nil {
		log.Warnf("RefreshToken: %v", err)
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Logout 把请求头中的 access token 加入黑名单。
func (h *UserHandler) Logout(c *gin.Context) {
	token, err := extractBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		log.Warnf("Logout: invalid authorization header: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{
			"code": http.StatusUnauthorized,
			"msg":  "Authorization 请求头无效",
		})
		return
	}

	if err := h.userService.Logout(c.Request.Context(), token); err != nil {
		log.Warnf("Logout: failed to logout: %v", err)
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// Profile 返回当前登录用户（由 AuthMiddleware 注入）。
func (h *UserHandler) Profile(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		return
	}
	respondOK(c, user)
}
