package handler

import (
	"worklog_go/internal/model"
	"worklog_go/internal/service"
	"worklog_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// OrgHandler 提供 部门 -> 团队 -> 人员 的下拉数据和用户信息。
type OrgHandler struct {
	org service.OrgService
}

func NewOrgHandler(org service.OrgService) *OrgHandler {
	return &OrgHandler{org: org}
}

type selectTeamRequest struct {
	Department string `json:"department"`
}

type selectUserRequest struct {
	Team string `json:"team"`
}

type userIDRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

type teamMembersRequest struct {
	TeamID uint `json:"team_id"`
	UserID uint `json:"user_id"`
}

type taskTargetsRequest struct {
	AssignedType string `json:"assigned_type"`
}

func (h *OrgHandler) SelectDepartment(c *gin.Context) {
	depts, err := h.org.ListDepartments()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, depts)
}

// SelectTeam department 为空时返回全部团队。
func (h *OrgHandler) SelectTeam(c *gin.Context) {
	var req selectTeamRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondBadRequest(c, "请求体格式错误")
		return
	}
	teams, err := h.org.ListTeams(req.Department)
	if err != nil {
		log.Warnf("SelectTeam: department %q: %v", req.Department, err)
		respondError(c, err)
		return
	}
	respondOK(c, teams)
}

// SelectUser team 为空时返回全部人员。
func (h *OrgHandler) SelectUser(c *gin.Context) {
	var req selectUserRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondBadRequest(c, "请求体格式错误")
		return
	}
	users, err := h.org.ListUsers(req.Team)
	if err != nil {
		log.Warnf("SelectUser: team %q: %v", req.Team, err)
		respondError(c, err)
		return
	}
	respondOK(c, users)
}

func (h *OrgHandler) UserInfo(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "缺少 user_id")
		return
	}
	info, err := h.org.GetUserInfo(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, info)
}

// GetTeamMembers 传 team_id 查指定团队；只传 user_id 时查该用户所在团队。
func (h *OrgHandler) GetTeamMembers(c *gin.Context) {
	var req teamMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.TeamID == 0 && req.UserID == 0) {
		respondBadRequest(c, "缺少 team_id 或 user_id")
		return
	}

	teamID := req.TeamID
	if teamID == 0 {
		tid, err := h.org.TeamOfUser(req.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		if tid == nil {
			respondOK(c, []model.TeamMember{})
			return
		}
		teamID = *tid
	}

	members, err := h.org.GetTeamMembers(teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, members)
}

func (h *OrgHandler) GetTaskTargets(c *gin.Context) {
	var req taskTargetsRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondBadRequest(c, "请求体格式错误")
		return
	}
	targets, err := h.org.GetTaskTargets(req.AssignedType)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, targets)
}
