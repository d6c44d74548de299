package handler

import (
	"strconv"

	"worklog_go/internal/service"
	"worklog_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AdminHandler 是 /web 管理端：人员、部门、团队维护。
// 访问控制由路由组上的 AuthMiddleware + AdminAuthMiddleware 负责。
type AdminHandler struct {
	admin service.AdminService
}

func NewAdminHandler(admin service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// UserFormRequest 是新增/编辑用户的表单。编辑时 password 为空表示不修改。
type UserFormRequest struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	TeamID   *uint  `json:"team_id"`
	RoleID   uint   `json:"role_id"`
}

func (r UserFormRequest) toInput() service.UserInput {
	return service.UserInput{
		Username: r.Username,
		Password: r.Password,
		Name:     r.Name,
		Mobile:   r.Mobile,
		Email:    r.Email,
		TeamID:   r.TeamID,
		RoleID:   r.RoleID,
	}
}

type idRequest struct {
	ID uint `json:"id" binding:"required"`
}

type findUserRequest struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required"`
	Mobile string `json:"mobile" binding:"required"`
}

type departmentFormRequest struct {
	ID        uint   `json:"id"`
	DeptName  string `json:"dept_name"`
	ManagerID *uint  `json:"manager_id"`
}

type teamFormRequest struct {
	ID           uint   `json:"id"`
	TeamName     string `json:"team_name"`
	DepartmentID uint   `json:"department_id"`
	LeaderID     *uint  `json:"leader_id"`
}

// ListUsers GET /web/users?page=1&size=20
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		respondBadRequest(c, "page 参数错误")
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil {
		respondBadRequest(c, "size 参数错误")
		return
	}

	users, total, err := h.admin.ListUsers(page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"list":  users,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

func (h *AdminHandler) AddUser(c *gin.Context) {
	var req UserFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "请求体格式错误")
		return
	}
	user, err := h.admin.AddUser(req.toInput())
	if err != nil {
		log.Warnf("AddUser: %q: %v", req.Username, err)
		respondError(c, err)
		return
	}
	log.Infow("user added", "user_id", user.ID, "username", user.Username)
	respondOK(c, user)
}

func (h *AdminHandler) EditUser(c *gin.Context) {
	var req UserFormRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		respondBadRequest(c, "缺少 id")
		return
	}
	user, err := h.admin.EditUser(req.ID, req.toInput())
	if err != nil {
		log.Warnf("EditUser: %d: %v", req.ID, err)
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 id")
		return
	}
	if err := h.admin.DeleteUser(req.ID); err != nil {
		log.Warnf("DeleteUser: %d: %v", req.ID, err)
		respondError(c, err)
		return
	}
	log.Infow("user deleted", "user_id", req.ID)
	respondOK(c, nil)
}

func (h *AdminHandler) FindUser(c *gin.Context) {
	var req findUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "姓名、邮箱、手机号均不能为空")
		return
	}
	user, err := h.admin.FindUser(req.Name, req.Email, req.Mobile)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

func (h *AdminHandler) ListDepartments(c *gin.Context) {
	depts, err := h.admin.ListDepartments()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, depts)
}

func (h *AdminHandler) AddDepartment(c *gin.Context) {
	var req departmentFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "请求体格式错误")
		return
	}
	dept, err := h.admin.AddDepartment(req.DeptName, req.ManagerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dept)
}

func (h *AdminHandler) EditDepartment(c *gin.Context) {
	var req departmentFormRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		respondBadRequest(c, "缺少 id")
		return
	}
	dept, err := h.admin.EditDepartment(req.ID, req.DeptName, req.ManagerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dept)
}

func (h *AdminHandler) DeleteDepartment(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 id")
		return
	}
	if err := h.admin.DeleteDepartment(req.ID); err != nil {
		log.Warnf("DeleteDepartment: %d: %v", req.ID, err)
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

func (h *AdminHandler) ListTeams(c *gin.Context) {
	teams, err := h.admin.ListTeams()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, teams)
}

func (h *AdminHandler) AddTeam(c *gin.Context) {
	var req teamFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "请求体格式错误")
		return
	}
	team, err := h.admin.AddTeam(req.TeamName, req.DepartmentID, req.LeaderID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, team)
}

func (h *AdminHandler) EditTeam(c *gin.Context) {
	var req teamFormRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		respondBadRequest(c, "缺少 id")
		return
	}
	team, err := h.admin.EditTeam(req.ID, req.TeamName, req.DepartmentID, req.LeaderID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, team)
}

func (h *AdminHandler) DeleteTeam(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 id")
		return
	}
	if err := h.admin.DeleteTeam(req.ID); err != nil {
		log.Warnf("DeleteTeam: %d: %v", req.ID, err)
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}
