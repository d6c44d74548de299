// Package router 组装 gin 路由：业务接口、/web 管理端、静态上传目录和运维接口。
package router

import (
	"context"
	"net/http"
	"time"

	"worklog_go/internal/config"
	"worklog_go/internal/handler"
	"worklog_go/internal/middleware"
	"worklog_go/internal/service"
	"worklog_go/pkg/metrics"
	"worklog_go/pkg/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Handlers 汇总所有 HTTP handler。
type Handlers struct {
	User    *handler.UserHandler
	Org     *handler.OrgHandler
	Task    *handler.TaskHandler
	WorkLog *handler.WorkLogHandler
	Stats   *handler.StatsHandler
	Message *handler.MessageHandler
	Admin   *handler.AdminHandler
}

// Deps 是路由需要的其余依赖。Registry 为 nil 时不暴露 /metrics。
type Deps struct {
	JWTManager  *token.JWTManager
	UserService service.UserService
	Registry    *prometheus.Registry
	// HealthCheck 检查数据库等依赖是否可用
	HealthCheck func(ctx context.Context) error
}

// New 创建 gin.Engine 并注册全部路由。
func New(cfg config.ServerConfig, metricsCfg config.MetricsConfig, h Handlers, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(metrics.HTTPMetricsMiddleware(deps.Registry))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/health", healthHandler(deps.HealthCheck))
	if metricsCfg.Enabled && deps.Registry != nil {
		r.GET(metricsCfg.Path, metrics.Handler(deps.Registry))
	}
	if cfg.UploadDir != "" && cfg.UploadURL != "" {
		r.Static(cfg.UploadURL, cfg.UploadDir)
	}

	api := r.Group(cfg.APIPrefix)
	registerAPI(api, h, deps)
	return r
}

// corsConfig 未配置来源或包含 "*" 时放行所有来源（此时不允许携带凭证）。
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func registerAPI(api *gin.RouterGroup, h Handlers, deps Deps) {
	auth := middleware.AuthMiddleware(deps.JWTManager, deps.UserService)

	api.POST("/login", h.User.Login)
	api.POST("/refresh_token", h.User.RefreshToken)
	api.POST("/logout", auth, h.User.Logout)

	api.POST("/select_department", h.Org.SelectDepartment)
	api.POST("/select_team", h.Org.SelectTeam)
	api.POST("/select_user", h.Org.SelectUser)
	api.POST("/user_info", h.Org.UserInfo)
	api.POST("/get_team_members", h.Org.GetTeamMembers)
	api.POST("/get_task_targets", h.Org.GetTaskTargets)

	api.POST("/create_task", h.Task.CreateTask)
	api.POST("/create_sub_task", h.Task.CreateSubTask)
	api.POST("/get_tasks", h.Task.GetTasks)
	api.POST("/get_user_tasks", h.Task.GetUserTasks)
	api.POST("/get_task_detail", h.Task.GetTaskDetail)
	api.POST("/get_sub_tasks", h.Task.GetSubTasks)
	api.GET("/company_top_matters", h.Task.CompanyTopMatters)
	api.GET("/company_dispatched_tasks", h.Task.CompanyDispatched)
	api.POST("/personal_top_items", h.Task.PersonalTopItems)

	api.POST("/create_work_log", h.WorkLog.CreateWorkLog)
	api.POST("/get_logs", h.WorkLog.GetLogs)
	api.POST("/personal_logs", h.WorkLog.PersonalLogs)
	api.POST("/upload_work_log_image", h.WorkLog.UploadImage)

	api.POST("/ai_analyze", h.Stats.AIAnalyze)
	api.POST("/stats_dashboard", h.Stats.Dashboard)
	api.POST("/get_user_stats", h.Stats.UserStats)

	api.POST("/get_unread_message_count", h.Message.UnreadCount)
	api.POST("/get_user_messages", h.Message.GetUserMessages)

	web := api.Group("/web", auth, middleware.AdminAuthMiddleware())
	{
		web.GET("/profile", h.User.Profile)

		web.GET("/users", h.Admin.ListUsers)
		web.POST("/add_user", h.Admin.AddUser)
		web.POST("/edit_user", h.Admin.EditUser)
		web.POST("/delete_user", h.Admin.DeleteUser)
		web.POST("/find_user", h.Admin.FindUser)

		web.GET("/departments", h.Admin.ListDepartments)
		web.POST("/add_department", h.Admin.AddDepartment)
		web.POST("/edit_department", h.Admin.EditDepartment)
		web.POST("/delete_department", h.Admin.DeleteDepartment)

		web.GET("/teams", h.Admin.ListTeams)
		web.POST("/add_team", h.Admin.AddTeam)
		web.POST("/edit_team", h.Admin.EditTeam)
		web.POST("/delete_team", h.Admin.DeleteTeam)
	}
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"message": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	}
}
