package service

import (
	"errors"
	"strings"

	"worklog_go/internal/model"
	"worklog_go/internal/repository"
	"worklog_go/pkg/log"

	"gorm.io/gorm"
)

// UserBrief 是人员下拉列表的一项。
type UserBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	TeamID   *uint  `json:"team_id,omitempty"`
}

// TaskTargets 是创建任务时可选的指派目标。
type TaskTargets struct {
	Users       []UserBrief        `json:"users,omitempty"`
	Teams       []model.Team       `json:"teams,omitempty"`
	Departments []model.Department `json:"departments,omitempty"`
}

// OrgService 提供 部门 -> 团队 -> 人员 的只读查询。
type OrgService interface {
	ListDepartments() ([]model.Department, error)
	// ListTeams deptName 为空时返回全部团队
	ListTeams(deptName string) ([]model.Team, error)
	// ListUsers teamName 为空时返回全部人员
	ListUsers(teamName string) ([]UserBrief, error)
	// GetUserInfo 角色、团队、部门任一环缺失时对应字段为 nil，不报错
	GetUserInfo(userID uint) (*model.UserInfo, error)
	GetTeamMembers(teamID uint) ([]model.TeamMember, error)
	// TeamOfUser 返回用户所在团队 ID，未加入团队时返回 nil
	TeamOfUser(userID uint) (*uint, error)
	GetTaskTargets(assignedType string) (*TaskTargets, error)
	// VisibilityFor 计算用户的任务可见范围（本人、团队、团队所属部门）
	VisibilityFor(userID uint) (repository.Visibility, error)
}

type orgService struct {
	orgRepo  repository.OrgRepository
	userRepo repository.UserRepository
}

func NewOrgService(orgRepo repository.OrgRepository, userRepo repository.UserRepository) OrgService {
	return &orgService{orgRepo: orgRepo, userRepo: userRepo}
}

func (s *orgService) ListDepartments() ([]model.Department, error) {
	depts, err := s.orgRepo.ListDepartments()
	if err != nil {
		log.Errorf("ListDepartments: %v", err)
		return nil, ErrInternal
	}
	return depts, nil
}

func (s *orgService) ListTeams(deptName string) ([]model.Team, error) {
	var deptID *uint
	if name := strings.TrimSpace(deptName); name != "" {
		dept, err := s.orgRepo.FindDepartmentByName(name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			log.Errorf("ListTeams: failed to query department %q: %v", name, err)
			return nil, ErrInternal
		}
		deptID = &dept.ID
	}

	teams, err := s.orgRepo.ListTeams(deptID)
	if err != nil {
		log.Errorf("ListTeams: %v", err)
		return nil, ErrInternal
	}
	return teams, nil
}

func (s *orgService) ListUsers(teamName string) ([]UserBrief, error) {
	var (
		users []model.User
		err   error
	)
	if name := strings.TrimSpace(teamName); name != "" {
		team, ferr := s.orgRepo.FindTeamByName(name)
		if ferr != nil {
			if errors.Is(ferr, gorm.ErrRecordNotFound) {
				return nil, ErrTeamNotFound
			}
			log.Errorf("ListUsers: failed to query team %q: %v", name, ferr)
			return nil, ErrInternal
		}
		users, err = s.userRepo.FindByTeamID(team.ID)
	} else {
		users, err = s.userRepo.FindAll()
	}
	if err != nil {
		log.Errorf("ListUsers: %v", err)
		return nil, ErrInternal
	}
	return briefs(users), nil
}

func briefs(users []model.User) []UserBrief {
	out := make([]UserBrief, 0, len(users))
	for _, u := range users {
		out = append(out, UserBrief{ID: u.ID, Username: u.Username, Name: u.Name, TeamID: u.TeamID})
	}
	return out
}

func (s *orgService) GetUserInfo(userID uint) (*model.UserInfo, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	info := &model.UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		RoleID:   user.RoleID,
		TeamID:   user.TeamID,
	}

	// 三次查询互相独立地降级：查不到就留 nil
	if role, err := s.orgRepo.FindRoleByID(user.RoleID); err == nil {
		info.RoleName = &role.RoleName
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("GetUserInfo: failed to query role %d: %v", user.RoleID, err)
		return nil, ErrInternal
	}

	if user.TeamID == nil {
		return info, nil
	}
	team, err := s.orgRepo.FindTeamByID(*user.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return info, nil
		}
		log.Errorf("GetUserInfo: failed to query team %d: %v", *user.TeamID, err)
		return nil, ErrInternal
	}
	info.Team = &team.TeamName

	dept, err := s.orgRepo.FindDepartmentByID(team.DepartmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return info, nil
		}
		log.Errorf("GetUserInfo: failed to query department %d: %v", team.DepartmentID, err)
		return nil, ErrInternal
	}
	info.Department = &dept.DeptName
	return info, nil
}

func (s *orgService) findUser(userID uint) (*model.User, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Errorf("failed to query user %d: %v", userID, err)
		return nil, ErrInternal
	}
	return user, nil
}

func (s *orgService) GetTeamMembers(teamID uint) ([]model.TeamMember, error) {
	team, err := s.orgRepo.FindTeamByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		log.Errorf("GetTeamMembers: failed to query team %d: %v", teamID, err)
		return nil, ErrInternal
	}

	users, err := s.userRepo.FindByTeamID(team.ID)
	if err != nil {
		log.Errorf("GetTeamMembers: failed to query members of team %d: %v", teamID, err)
		return nil, ErrInternal
	}
	roles, err := s.orgRepo.ListRoles()
	if err != nil {
		log.Errorf("GetTeamMembers: failed to list roles: %v", err)
		return nil, ErrInternal
	}
	roleNames := make(map[uint]string, len(roles))
	for _, r := range roles {
		roleNames[r.ID] = r.RoleName
	}

	members := make([]model.TeamMember, 0, len(users))
	for _, u := range users {
		m := model.TeamMember{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.Name,
			Mobile:   u.Mobile,
			Email:    u.Email,
			RoleID:   u.RoleID,
			IsLeader: team.LeaderID != nil && *team.LeaderID == u.ID,
		}
		if name, ok := roleNames[u.RoleID]; ok {
			m.RoleName = &name
		}
		members = append(members, m)
	}
	return members, nil
}

func (s *orgService) TeamOfUser(userID uint) (*uint, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}
	return user.TeamID, nil
}

func (s *orgService) GetTaskTargets(assignedType string) (*TaskTargets, error) {
	var kind model.AssignmentKind
	if strings.TrimSpace(assignedType) != "" {
		a, err := model.ParseAssignment(assignedType, 0)
		if err != nil {
			return nil, ErrInvalidInput
		}
		kind = a.Kind
	}

	targets := &TaskTargets{}
	if kind == "" || kind == model.AssignPersonal {
		users, err := s.userRepo.FindAll()
		if err != nil {
			log.Errorf("GetTaskTargets: failed to list users: %v", err)
			return nil, ErrInternal
		}
		targets.Users = briefs(users)
	}
	if kind == "" || kind == model.AssignTeam {
		teams, err := s.orgRepo.ListTeams(nil)
		if err != nil {
			log.Errorf("GetTaskTargets: failed to list teams: %v", err)
			return nil, ErrInternal
		}
		targets.Teams = teams
	}
	if kind == "" || kind == model.AssignDept {
		depts, err := s.orgRepo.ListDepartments()
		if err != nil {
			log.Errorf("GetTaskTargets: failed to list departments: %v", err)
			return nil, ErrInternal
		}
		targets.Departments = depts
	}
	return targets, nil
}

func (s *orgService) VisibilityFor(userID uint) (repository.Visibility, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return repository.Visibility{}, err
	}
	v := repository.Visibility{UserID: user.ID, TeamID: user.TeamID}
	if user.TeamID == nil {
		return v, nil
	}

	team, err := s.orgRepo.FindTeamByID(*user.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return v, nil
		}
		log.Errorf("VisibilityFor: failed to query team %d: %v", *user.TeamID, err)
		return repository.Visibility{}, ErrInternal
	}
	v.DepartmentID = &team.DepartmentID
	return v, nil
}
