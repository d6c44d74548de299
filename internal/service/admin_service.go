package service

import (
	"errors"
	"strings"

	"worklog_go/internal/model"
	"worklog_go/internal/repository"
	"worklog_go/pkg/hash"
	"worklog_go/pkg/log"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UserInput 是新增/编辑用户的表单。编辑时 Password 为空表示不修改密码，
// RoleID 为 0 表示保持原角色；TeamID 按表单原样写入（nil 即移出团队）。
type UserInput struct {
	Username string
	Password string
	Name     string
	Mobile   string
	Email    string
	TeamID   *uint
	RoleID   uint
}

// AdminService 是 Web 管理端的人员与组织维护。
type AdminService interface {
	ListUsers(page, size int) ([]model.User, int64, error)
	AddUser(in UserInput) (*model.User, error)
	EditUser(userID uint, in UserInput) (*model.User, error)
	DeleteUser(userID uint) error
	// FindUser 按 姓名+邮箱+手机号 查找
	FindUser(name, email, mobile string) (*model.User, error)

	ListDepartments() ([]model.Department, error)
	AddDepartment(name string, managerID *uint) (*model.Department, error)
	EditDepartment(deptID uint, name string, managerID *uint) (*model.Department, error)
	DeleteDepartment(deptID uint) error

	ListTeams() ([]model.Team, error)
	AddTeam(name string, deptID uint, leaderID *uint) (*model.Team, error)
	EditTeam(teamID uint, name string, deptID uint, leaderID *uint) (*model.Team, error)
	DeleteTeam(teamID uint) error
}

type adminService struct {
	userRepo repository.UserRepository
	orgRepo  repository.OrgRepository
}

func NewAdminService(userRepo repository.UserRepository, orgRepo repository.OrgRepository) AdminService {
	return &adminService{userRepo: userRepo, orgRepo: orgRepo}
}

func (s *adminService) ListUsers(page, size int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	users, total, err := s.userRepo.FindWithPagination((page-1)*size, size)
	if err != nil {
		log.Errorf("ListUsers: %v", err)
		return nil, 0, ErrInternal
	}
	return users, total, nil
}

// checkUserRefs 校验角色、团队存在。
func (s *adminService) checkUserRefs(in UserInput) error {
	if in.RoleID != 0 {
		if _, err := s.orgRepo.FindRoleByID(in.RoleID); err != nil {
			return notFoundOr(err, ErrInvalidInput, "check role")
		}
	}
	if in.TeamID != nil {
		if _, err := s.orgRepo.FindTeamByID(*in.TeamID); err != nil {
			return notFoundOr(err, ErrTeamNotFound, "check team")
		}
	}
	return nil
}

// usernameTaken 判断用户名是否已被 selfID 以外的用户占用。
func (s *adminService) usernameTaken(username string, selfID uint) (bool, error) {
	existing, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		log.Errorf("check username %q: %v", username, err)
		return false, ErrInternal
	}
	return existing != nil && existing.ID != selfID, nil
}

func (s *adminService) AddUser(in UserInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return nil, ErrInvalidInput
	}
	if in.RoleID == 0 {
		in.RoleID = model.RoleIDEmployee
	}
	if err := s.checkUserRefs(in); err != nil {
		return nil, err
	}
	taken, err := s.usernameTaken(in.Username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserAlreadyExists
	}

	hashed, err := hash.HashPassword(in.Password)
	if err != nil {
		log.Errorf("AddUser: hash password: %v", err)
		return nil, ErrInternal
	}
	user := &model.User{
		Username: in.Username,
		Password: hashed,
		Name:     strings.TrimSpace(in.Name),
		Mobile:   strings.TrimSpace(in.Mobile),
		Email:    strings.TrimSpace(in.Email),
		TeamID:   in.TeamID,
		RoleID:   in.RoleID,
	}
	if err := s.userRepo.Create(user); err != nil {
		log.Errorf("AddUser: insert %q: %v", in.Username, err)
		return nil, ErrInternal
	}
	return user, nil
}

func (s *adminService) EditUser(userID uint, in UserInput) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "EditUser")
	}
	if err := s.checkUserRefs(in); err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Username); name != "" && name != user.Username {
		taken, err := s.usernameTaken(name, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUserAlreadyExists
		}
		user.Username = name
	}
	user.Name = strings.TrimSpace(in.Name)
	user.Mobile = strings.TrimSpace(in.Mobile)
	user.Email = strings.TrimSpace(in.Email)
	user.TeamID = in.TeamID
	if in.RoleID != 0 {
		user.RoleID = in.RoleID
	}

	if err := s.userRepo.Update(user); err != nil {
		log.Errorf("EditUser: update %d: %v", userID, err)
		return nil, ErrInternal
	}
	if in.Password != "" {
		hashed, err := hash.HashPassword(in.Password)
		if err != nil {
			log.Errorf("EditUser: hash password: %v", err)
			return nil, ErrInternal
		}
		if err := s.userRepo.UpdatePassword(user.ID, hashed); err != nil {
			log.Errorf("EditUser: update password of %d: %v", userID, err)
			return nil, ErrInternal
		}
		user.Password = hashed
	}
	return user, nil
}

func (s *adminService) DeleteUser(userID uint) error {
	err := s.userRepo.Delete(userID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserReferenced):
		return ErrUserInUse
	default:
		return notFoundOr(err, ErrUserNotFound, "DeleteUser")
	}
}

func (s *adminService) FindUser(name, email, mobile string) (*model.User, error) {
	name, email, mobile = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(mobile)
	if name == "" || email == "" || mobile == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.FindByIdentity(name, email, mobile)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "FindUser")
	}
	return user, nil
}

func (s *adminService) ListDepartments() ([]model.Department, error) {
	depts, err := s.orgRepo.ListDepartments()
	if err != nil {
		log.Errorf("ListDepartments: %v", err)
		return nil, ErrInternal
	}
	return depts, nil
}

func (s *adminService) checkUserExists(userID *uint) error {
	if userID == nil {
		return nil
	}
	if _, err := s.userRepo.FindByID(*userID); err != nil {
		return notFoundOr(err, ErrUserNotFound, "check user")
	}
	return nil
}

// deptNameTaken 判断部门名是否已被 selfID 以外的部门占用。
func (s *adminService) deptNameTaken(name string, selfID uint) error {
	existing, err := s.orgRepo.FindDepartmentByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		log.Errorf("check department name %q: %v", name, err)
		return ErrInternal
	}
	if existing.ID != selfID {
		return ErrNameTaken
	}
	return nil
}

func (s *adminService) AddDepartment(name string, managerID *uint) (*model.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if err := s.checkUserExists(managerID); err != nil {
		return nil, err
	}
	if err := s.deptNameTaken(name, 0); err != nil {
		return nil, err
	}
	dept := &model.Department{DeptName: name, ManagerID: managerID}
	if err := s.orgRepo.CreateDepartment(dept); err != nil {
		log.Errorf("AddDepartment: insert %q: %v", name, err)
		return nil, ErrInternal
	}
	return dept, nil
}

func (s *adminService) EditDepartment(deptID uint, name string, managerID *uint) (*model.Department, error) {
	dept, err := s.orgRepo.FindDepartmentByID(deptID)
	if err != nil {
		return nil, notFoundOr(err, ErrDepartmentNotFound, "EditDepartment")
	}
	if name = strings.TrimSpace(name); name != "" {
		if err := s.deptNameTaken(name, dept.ID); err != nil {
			return nil, err
		}
		dept.DeptName = name
	}
	if err := s.checkUserExists(managerID); err != nil {
		return nil, err
	}
	dept.ManagerID = managerID

	if err := s.orgRepo.UpdateDepartment(dept); err != nil {
		log.Errorf("EditDepartment: update %d: %v", deptID, err)
		return nil, ErrInternal
	}
	return dept, nil
}

func (s *adminService) DeleteDepartment(deptID uint) error {
	err := s.orgRepo.DeleteDepartment(deptID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDepartmentHasTeams), errors.Is(err, repository.ErrTargetReferenced):
		return ErrDepartmentInUse
	default:
		return notFoundOr(err, ErrDepartmentNotFound, "DeleteDepartment")
	}
}

func (s *adminService) ListTeams() ([]model.Team, error) {
	teams, err := s.orgRepo.ListTeams(nil)
	if err != nil {
		log.Errorf("ListTeams: %v", err)
		return nil, ErrInternal
	}
	return teams, nil
}

func (s *adminService) teamNameTaken(name string, selfID uint) error {
	existing, err := s.orgRepo.FindTeamByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		log.Errorf("check team name %q: %v", name, err)
		return ErrInternal
	}
	if existing.ID != selfID {
		return ErrNameTaken
	}
	return nil
}

func (s *adminService) checkTeamRefs(deptID uint, leaderID *uint) error {
	if _, err := s.orgRepo.FindDepartmentByID(deptID); err != nil {
		return notFoundOr(err, ErrDepartmentNotFound, "check department")
	}
	return s.checkUserExists(leaderID)
}

func (s *adminService) AddTeam(name string, deptID uint, leaderID *uint) (*model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" || deptID == 0 {
		return nil, ErrInvalidInput
	}
	if err := s.checkTeamRefs(deptID, leaderID); err != nil {
		return nil, err
	}
	if err := s.teamNameTaken(name, 0); err != nil {
		return nil, err
	}
	team := &model.Team{TeamName: name, DepartmentID: deptID, LeaderID: leaderID}
	if err := s.orgRepo.CreateTeam(team); err != nil {
		log.Errorf("AddTeam: insert %q: %v", name, err)
		return nil, ErrInternal
	}
	return team, nil
}

func (s *adminService) EditTeam(teamID uint, name string, deptID uint, leaderID *uint) (*model.Team, error) {
	team, err := s.orgRepo.FindTeamByID(teamID)
	if err != nil {
		return nil, notFoundOr(err, ErrTeamNotFound, "EditTeam")
	}
	if deptID == 0 {
		deptID = team.DepartmentID
	}
	if err := s.checkTeamRefs(deptID, leaderID); err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		if err := s.teamNameTaken(name, team.ID); err != nil {
			return nil, err
		}
		team.TeamName = name
	}
	team.DepartmentID = deptID
	team.LeaderID = leaderID

	if err := s.orgRepo.UpdateTeam(team); err != nil {
		log.Errorf("EditTeam: update %d: %v", teamID, err)
		return nil, ErrInternal
	}
	return team, nil
}

func (s *adminService) DeleteTeam(teamID uint) error {
	err := s.orgRepo.DeleteTeam(teamID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrTeamHasMembers), errors.Is(err, repository.ErrTargetReferenced):
		return ErrTeamInUse
	default:
		return notFoundOr(err, ErrTeamNotFound, "DeleteTeam")
	}
}
