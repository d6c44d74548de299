package handler

import (
	"context"

	"worklog_go/internal/model"
	"worklog_go/internal/repository"
	"worklog_go/internal/service"
	"worklog_go/pkg/llm"
)

type fakeUserService struct {
	loginFn            func(username, password string) (*service.LoginResult, error)
	verifyCredentialFn func(username, password string) (*model.User, error)
	refreshTokenFn     func(refreshToken string) (string, string, error)
	logoutFn           func(ctx context.Context, accessToken string) error
	isRevokedFn        func(ctx context.Context, accessToken string) (bool, error)
	getProfileFn       func(userID uint) (*model.User, error)
}

func (f *fakeUserService) Login(username, password string) (*service.LoginResult, error) {
	if f.loginFn != nil {
		return f.loginFn(username, password)
	}
	return &service.LoginResult{}, nil
}

func (f *fakeUserService) VerifyCredential(username, password string) (*model.User, error) {
	if f.verifyCredentialFn != nil {
		return f.verifyCredentialFn(username, password)
	}
	return nil, service.ErrUserNotFound
}

func (f *fakeUserService) RefreshToken(refreshToken string) (string, string, error) {
	if f.refreshTokenFn != nil {
		return f.refreshTokenFn(refreshToken)
	}
	return "", "", nil
}

func (f *fakeUserService) Logout(ctx context.Context, accessToken string) error {
	if f.logoutFn != nil {
		return f.logoutFn(ctx, accessToken)
	}
	return nil
}

func (f *fakeUserService) IsRevoked(ctx context.Context, accessToken string) (bool, error) {
	if f.isRevokedFn != nil {
		return f.isRevokedFn(ctx, accessToken)
	}
	return false, nil
}

func (f *fakeUserService) GetProfile(userID uint) (*model.User, error) {
	if f.getProfileFn != nil {
		return f.getProfileFn(userID)
	}
	return nil, service.ErrUserNotFound
}

type fakeTaskService struct {
	createTaskFn        func(in service.CreateTaskInput) (*model.Task, error)
	createSubTaskFn     func(in service.CreateTaskInput) (*model.Task, []repository.ProgressChange, error)
	getTaskDetailFn     func(taskID uint) (*model.TaskView, error)
	getSubTasksFn       func(parentID uint) ([]model.TaskView, error)
	listTasksForUserFn  func(userID uint) ([]model.TaskView, error)
	getGanttFn          func(userID uint) ([]model.GanttItem, error)
	companyTopFn        func() ([]model.TaskView, error)
	companyDispatchedFn func() ([]model.TaskView, error)
	personalTopItemsFn  func(userID uint) ([]model.TaskView, error)
}

func (f *fakeTaskService) CreateTask(in service.CreateTaskInput) (*model.Task, error) {
	if f.createTaskFn != nil {
		return f.createTaskFn(in)
	}
	return &model.Task{}, nil
}

func (f *fakeTaskService) CreateSubTask(in service.CreateTaskInput) (*model.Task, []repository.ProgressChange, error) {
	if f.createSubTaskFn != nil {
		return f.createSubTaskFn(in)
	}
	return &model.Task{}, nil, nil
}

func (f *fakeTaskService) GetTaskDetail(taskID uint) (*model.TaskView, error) {
	if f.getTaskDetailFn != nil {
		return f.getTaskDetailFn(taskID)
	}
	return nil, service.ErrTaskNotFound
}

func (f *fakeTaskService) GetSubTasks(parentID uint) ([]model.TaskView, error) {
	if f.getSubTasksFn != nil {
		return f.getSubTasksFn(parentID)
	}
	return []model.TaskView{}, nil
}

func (f *fakeTaskService) ListTasksForUser(userID uint) ([]model.TaskView, error) {
	if f.listTasksForUserFn != nil {
		return f.listTasksForUserFn(userID)
	}
	return []model.TaskView{}, nil
}

func (f *fakeTaskService) GetGantt(userID uint) ([]model.GanttItem, error) {
	if f.getGanttFn != nil {
		return f.getGanttFn(userID)
	}
	return []model.GanttItem{}, nil
}

func (f *fakeTaskService) CompanyTopMatters() ([]model.TaskView, error) {
	if f.companyTopFn != nil {
		return f.companyTopFn()
	}
	return []model.TaskView{}, nil
}

func (f *fakeTaskService) CompanyDispatched() ([]model.TaskView, error) {
	if f.companyDispatchedFn != nil {
		return f.companyDispatchedFn()
	}
	return []model.TaskView{}, nil
}

func (f *fakeTaskService) PersonalTopItems(userID uint) ([]model.TaskView, error) {
	if f.personalTopItemsFn != nil {
		return f.personalTopItemsFn(userID)
	}
	return []model.TaskView{}, nil
}

type fakeWorkLogService struct {
	createFn       func(in service.CreateWorkLogInput) (*model.WorkLog, []repository.ProgressChange, error)
	listLogsFn     func(userID uint) ([]model.WorkLogView, error)
	personalLogsFn func(userID uint, startDate, endDate string) ([]model.WorkLogView, error)
}

func (f *fakeWorkLogService) CreateWorkLog(in service.CreateWorkLogInput) (*model.WorkLog, []repository.ProgressChange, error) {
	if f.createFn != nil {
		return f.createFn(in)
	}
	return &model.WorkLog{}, nil, nil
}

func (f *fakeWorkLogService) ListLogs(userID uint) ([]model.WorkLogView, error) {
	if f.listLogsFn != nil {
		return f.listLogsFn(userID)
	}
	return []model.WorkLogView{}, nil
}

func (f *fakeWorkLogService) PersonalLogs(userID uint, startDate, endDate string) ([]model.WorkLogView, error) {
	if f.personalLogsFn != nil {
		return f.personalLogsFn(userID, startDate, endDate)
	}
	return []model.WorkLogView{}, nil
}

type fakeAdminService struct {
	listUsersFn        func(page, size int) ([]model.User, int64, error)
	addUserFn          func(in service.UserInput) (*model.User, error)
	editUserFn         func(userID uint, in service.UserInput) (*model.User, error)
	deleteUserFn       func(userID uint) error
	findUserFn         func(name, email, mobile string) (*model.User, error)
	addDepartmentFn    func(name string, managerID *uint) (*model.Department, error)
	deleteDepartmentFn func(deptID uint) error
	addTeamFn          func(name string, deptID uint, leaderID *uint) (*model.Team, error)
	deleteTeamFn       func(teamID uint) error
}

func (f *fakeAdminService) ListUsers(page, size int) ([]model.User, int64, error) {
	if f.listUsersFn != nil {
		return f.listUsersFn(page, size)
	}
	return []model.User{}, 0, nil
}

func (f *fakeAdminService) AddUser(in service.UserInput) (*model.User, error) {
	if f.addUserFn != nil {
		return f.addUserFn(in)
	}
	return &model.User{Username: in.Username}, nil
}

func (f *fakeAdminService) EditUser(userID uint, in service.UserInput) (*model.User, error) {
	if f.editUserFn != nil {
		return f.editUserFn(userID, in)
	}
	return &model.User{ID: userID}, nil
}

func (f *fakeAdminService) DeleteUser(userID uint) error {
	if f.deleteUserFn != nil {
		return f.deleteUserFn(userID)
	}
	return nil
}

func (f *fakeAdminService) FindUser(name, email, mobile string) (*model.User, error) {
	if f.findUserFn != nil {
		return f.findUserFn(name, email, mobile)
	}
	return nil, service.ErrUserNotFound
}

func (f *fakeAdminService) ListDepartments() ([]model.Department, error) {
	return []model.Department{}, nil
}

func (f *fakeAdminService) AddDepartment(name string, managerID *uint) (*model.Department, error) {
	if f.addDepartmentFn != nil {
		return f.addDepartmentFn(name, managerID)
	}
	return &model.Department{}, nil
}

func (f *fakeAdminService) EditDepartment(deptID uint, name string, managerID *uint) (*model.Department, error) {
	return &model.Department{}, nil
}

func (f *fakeAdminService) DeleteDepartment(deptID uint) error {
	if f.deleteDepartmentFn != nil {
		return f.deleteDepartmentFn(deptID)
	}
	return nil
}

func (f *fakeAdminService) ListTeams() ([]model.Team, error) {
	return []model.Team{}, nil
}

func (f *fakeAdminService) AddTeam(name string, deptID uint, leaderID *uint) (*model.Team, error) {
	if f.addTeamFn != nil {
		return f.addTeamFn(name, deptID, leaderID)
	}
	return &model.Team{}, nil
}

func (f *fakeAdminService) EditTeam(teamID uint, name string, deptID uint, leaderID *uint) (*model.Team, error) {
	return &model.Team{}, nil
}

func (f *fakeAdminService) DeleteTeam(teamID uint) error {
	if f.deleteTeamFn != nil {
		return f.deleteTeamFn(teamID)
	}
	return nil
}

type fakeStatsService struct {
	dashboardFn func(userID uint, days int) (*service.Dashboard, error)
	userStatsFn func(userID uint) (*service.UserStats, error)
}

func (f *fakeStatsService) Dashboard(userID uint, days int) (*service.Dashboard, error) {
	if f.dashboardFn != nil {
		return f.dashboardFn(userID, days)
	}
	return &service.Dashboard{}, nil
}

func (f *fakeStatsService) UserStats(userID uint) (*service.UserStats, error) {
	if f.userStatsFn != nil {
		return f.userStatsFn(userID)
	}
	return &service.UserStats{}, nil
}

type fakeAIService struct {
	analyzeFn func(ctx context.Context, in service.AnalyzeInput) (*llm.Result, error)
}

func (f *fakeAIService) Analyze(ctx context.Context, in service.AnalyzeInput) (*llm.Result, error) {
	if f.analyzeFn != nil {
		return f.analyzeFn(ctx, in)
	}
	return nil, service.ErrAINotConfigured
}

type fakeOrgService struct {
	listTeamsFn      func(deptName string) ([]model.Team, error)
	listUsersFn      func(teamName string) ([]service.UserBrief, error)
	getUserInfoFn    func(userID uint) (*model.UserInfo, error)
	getTeamMembersFn func(teamID uint) ([]model.TeamMember, error)
	teamOfUserFn     func(userID uint) (*uint, error)
	getTaskTargetsFn func(assignedType string) (*service.TaskTargets, error)
}

func (f *fakeOrgService) ListDepartments() ([]model.Department, error) {
	return []model.Department{{ID: 1, DeptName: "研发部"}}, nil
}

func (f *fakeOrgService) ListTeams(deptName string) ([]model.Team, error) {
	if f.listTeamsFn != nil {
		return f.listTeamsFn(deptName)
	}
	return []model.Team{}, nil
}

func (f *fakeOrgService) ListUsers(teamName string) ([]service.UserBrief, error) {
	if f.listUsersFn != nil {
		return f.listUsersFn(teamName)
	}
	return []service.UserBrief{}, nil
}

func (f *fakeOrgService) GetUserInfo(userID uint) (*model.UserInfo, error) {
	if f.getUserInfoFn != nil {
		return f.getUserInfoFn(userID)
	}
	return nil, service.ErrUserNotFound
}

func (f *fakeOrgService) GetTeamMembers(teamID uint) ([]model.TeamMember, error) {
	if f.getTeamMembersFn != nil {
		return f.getTeamMembersFn(teamID)
	}
	return []model.TeamMember{}, nil
}

func (f *fakeOrgService) TeamOfUser(userID uint) (*uint, error) {
	if f.teamOfUserFn != nil {
		return f.teamOfUserFn(userID)
	}
	return nil, nil
}

func (f *fakeOrgService) GetTaskTargets(assignedType string) (*service.TaskTargets, error) {
	if f.getTaskTargetsFn != nil {
		return f.getTaskTargetsFn(assignedType)
	}
	return &service.TaskTargets{}, nil
}

func (f *fakeOrgService) VisibilityFor(userID uint) (repository.Visibility, error) {
	return repository.Visibility{UserID: userID}, nil
}

type fakeMessageService struct {
	unreadCountFn func(userID uint) (int64, error)
	fetchFn       func(userID uint) ([]model.Message, error)
}

func (f *fakeMessageService) UnreadCount(userID uint) (int64, error) {
	if f.unreadCountFn != nil {
		return f.unreadCountFn(userID)
	}
	return 0, nil
}

func (f *fakeMessageService) FetchMessages(userID uint) ([]model.Message, error) {
	if f.fetchFn != nil {
		return f.fetchFn(userID)
	}
	return []model.Message{}, nil
}
