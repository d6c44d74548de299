package service

import (
	"context"
	"time"

	"worklog_go/internal/model"
	"worklog_go/internal/repository"
	"worklog_go/pkg/llm"

	"gorm.io/gorm"
)

func uintPtr(v uint) *uint { return &v }

func intPtr(v int) *int { return &v }

type fakeUserRepo struct {
	createFn             func(user *model.User) error
	findByUsernameFn     func(username string) (*model.User, error)
	findByIDFn           func(userID uint) (*model.User, error)
	findByIdentityFn     func(name, email, mobile string) (*model.User, error)
	findByTeamIDFn       func(teamID uint) ([]model.User, error)
	findAllFn            func() ([]model.User, error)
	findWithPaginationFn func(offset, limit int) ([]model.User, int64, error)
	updateFn             func(user *model.User) error
	updatePasswordFn     func(userID uint, hashed string) error
	deleteFn             func(userID uint) error
}

func (f *fakeUserRepo) Create(user *model.User) error {
	if f.createFn != nil {
		return f.createFn(user)
	}
	return nil
}
func (f *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	if f.findByUsernameFn != nil {
		return f.findByUsernameFn(username)
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) FindByID(userID uint) (*model.User, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(userID)
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) FindByIDs(userIDs []uint) ([]model.User, error) {
	return []model.User{}, nil
}
func (f *fakeUserRepo) FindByIdentity(name, email, mobile string) (*model.User, error) {
	if f.findByIdentityFn != nil {
		return f.findByIdentityFn(name, email, mobile)
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) FindByTeamID(teamID uint) ([]model.User, error) {
	if f.findByTeamIDFn != nil {
		return f.findByTeamIDFn(teamID)
	}
	return []model.User{}, nil
}
func (f *fakeUserRepo) FindAll() ([]model.User, error) {
	if f.findAllFn != nil {
		return f.findAllFn()
	}
	return []model.User{}, nil
}
func (f *fakeUserRepo) FindWithPagination(offset, limit int) ([]model.User, int64, error) {
	if f.findWithPaginationFn != nil {
		return f.findWithPaginationFn(offset, limit)
	}
	return []model.User{}, 0, nil
}
func (f *fakeUserRepo) Update(user *model.User) error {
	if f.updateFn != nil {
		return f.updateFn(user)
	}
	return nil
}
func (f *fakeUserRepo) UpdatePassword(userID uint, hashed string) error {
	if f.updatePasswordFn != nil {
		return f.updatePasswordFn(userID, hashed)
	}
	return nil
}
func (f *fakeUserRepo) Delete(userID uint) error {
	if f.deleteFn != nil {
		return f.deleteFn(userID)
	}
	return nil
}

// usersByID 返回一个按 ID 查表的 findByIDFn。
func usersByID(users ...model.User) func(uint) (*model.User, error) {
	return func(id uint) (*model.User, error) {
		for i := range users {
			if users[i].ID == id {
				u := users[i]
				return &u, nil
			}
		}
		return nil, gorm.ErrRecordNotFound
	}
}

type fakeOrgRepo struct {
	depts []model.Department
	teams []model.Team
	roles []model.Role

	createDepartmentFn func(d *model.Department) error
	updateDepartmentFn func(d *model.Department) error
	deleteDepartmentFn func(id uint) error
	createTeamFn       func(t *model.Team) error
	updateTeamFn       func(t *model.Team) error
	deleteTeamFn       func(id uint) error
	err                error
}

func (f *fakeOrgRepo) ListDepartments() ([]model.Department, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.depts, nil
}
func (f *fakeOrgRepo) FindDepartmentByID(id uint) (*model.Department, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.depts {
		if f.depts[i].ID == id {
			d := f.depts[i]
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeOrgRepo) FindDepartmentByName(name string) (*model.Department, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.depts {
		if f.depts[i].DeptName == name {
			d := f.depts[i]
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeOrgRepo) CreateDepartment(d *model.Department) error {
	if f.createDepartmentFn != nil {
		return f.createDepartmentFn(d)
	}
	return nil
}
func (f *fakeOrgRepo) UpdateDepartment(d *model.Department) error {
	if f.updateDepartmentFn != nil {
		return f.updateDepartmentFn(d)
	}
	return nil
}
func (f *fakeOrgRepo) DeleteDepartment(id uint) error {
	if f.deleteDepartmentFn != nil {
		return f.deleteDepartmentFn(id)
	}
	return nil
}
func (f *fakeOrgRepo) ListTeams(departmentID *uint) ([]model.Team, error) {
	if f.err != nil {
		return nil, f.err
	}
	if departmentID == nil {
		return f.teams, nil
	}
	var out []model.Team
	for _, t := range f.teams {
		if t.DepartmentID == *departmentID {
			out = append(out, t)
		}
	}
	return out, nil
}
func (f *fakeOrgRepo) FindTeamByID(id uint) (*model.Team, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.teams {
		if f.teams[i].ID == id {
			t := f.teams[i]
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeOrgRepo) FindTeamByName(name string) (*model.Team, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.teams {
		if f.teams[i].TeamName == name {
			t := f.teams[i]
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeOrgRepo) FindTeamsByIDs(ids []uint) ([]model.Team, error) {
	return f.teams, nil
}
func (f *fakeOrgRepo) CreateTeam(t *model.Team) error {
	if f.createTeamFn != nil {
		return f.createTeamFn(t)
	}
	return nil
}
func (f *fakeOrgRepo) UpdateTeam(t *model.Team) error {
	if f.updateTeamFn != nil {
		return f.updateTeamFn(t)
	}
	return nil
}
func (f *fakeOrgRepo) DeleteTeam(id uint) error {
	if f.deleteTeamFn != nil {
		return f.deleteTeamFn(id)
	}
	return nil
}
func (f *fakeOrgRepo) ListRoles() ([]model.Role, error) {
	return f.roles, nil
}
func (f *fakeOrgRepo) FindRoleByID(id uint) (*model.Role, error) {
	for i := range f.roles {
		if f.roles[i].ID == id {
			r := f.roles[i]
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// demoOrg 与演示数据一致：研发部(经理 2) 下有 后端组(负责人 3) 和 前端组(无负责人)。
func demoOrg() *fakeOrgRepo {
	return &fakeOrgRepo{
		depts: []model.Department{
			{ID: 1, DeptName: "研发部", ManagerID: uintPtr(2)},
			{ID: 2, DeptName: "市场部"},
		},
		teams: []model.Team{
			{ID: 1, TeamName: "后端组", DepartmentID: 1, LeaderID: uintPtr(3)},
			{ID: 2, TeamName: "前端组", DepartmentID: 1},
		},
		roles: []model.Role{
			{ID: 1, RoleName: "系统管理员"},
			{ID: 2, RoleName: "公司领导"},
			{ID: 3, RoleName: "普通员工"},
		},
	}
}

type fakeTaskRepo struct {
	createFn                  func(task *model.Task, notice *model.Message) error
	createSubTaskFn           func(task *model.Task, notice *model.Message) ([]repository.ProgressChange, error)
	findByIDFn                func(id uint) (*model.Task, error)
	findByIDsFn               func(ids []uint) ([]model.Task, error)
	findViewByIDFn            func(id uint) (*model.TaskView, error)
	findChildrenFn            func(parentID uint) ([]model.TaskView, error)
	findVisibleFn             func(v repository.Visibility, opts repository.ListOptions) ([]model.TaskView, error)
	findByCreatorOrAssigneeFn func(userID uint) ([]model.TaskView, error)
	countVisibleByStatusFn    func(v repository.Visibility) (map[string]int64, error)
	topMattersFn              func(limit int) ([]model.TaskView, error)
	dispatchedFn              func(limit int) ([]model.TaskView, error)
}

func (f *fakeTaskRepo) Create(task *model.Task, notice *model.Message) error {
	if f.createFn != nil {
		return f.createFn(task, notice)
	}
	return nil
}
func (f *fakeTaskRepo) CreateSubTask(task *model.Task, notice *model.Message) ([]repository.ProgressChange, error) {
	if f.createSubTaskFn != nil {
		return f.createSubTaskFn(task, notice)
	}
	return nil, nil
}
func (f *fakeTaskRepo) FindByID(id uint) (*model.Task, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeTaskRepo) FindByIDs(ids []uint) ([]model.Task, error) {
	if f.findByIDsFn != nil {
		return f.findByIDsFn(ids)
	}
	return []model.Task{}, nil
}
func (f *fakeTaskRepo) FindViewByID(id uint) (*model.TaskView, error) {
	if f.findViewByIDFn != nil {
		return f.findViewByIDFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeTaskRepo) FindChildren(parentID uint) ([]model.TaskView, error) {
	if f.findChildrenFn != nil {
		return f.findChildrenFn(parentID)
	}
	return nil, nil
}
func (f *fakeTaskRepo) FindVisible(v repository.Visibility, opts repository.ListOptions) ([]model.TaskView, error) {
	if f.findVisibleFn != nil {
		return f.findVisibleFn(v, opts)
	}
	return nil, nil
}
func (f *fakeTaskRepo) FindByCreatorOrAssignee(userID uint) ([]model.TaskView, error) {
	if f.findByCreatorOrAssigneeFn != nil {
		return f.findByCreatorOrAssigneeFn(userID)
	}
	return nil, nil
}
func (f *fakeTaskRepo) CountVisibleByStatus(v repository.Visibility) (map[string]int64, error) {
	if f.countVisibleByStatusFn != nil {
		return f.countVisibleByStatusFn(v)
	}
	return map[string]int64{}, nil
}
func (f *fakeTaskRepo) FindCompanyTopMatters(limit int) ([]model.TaskView, error) {
	if f.topMattersFn != nil {
		return f.topMattersFn(limit)
	}
	return nil, nil
}
func (f *fakeTaskRepo) FindCompanyDispatched(limit int) ([]model.TaskView, error) {
	if f.dispatchedFn != nil {
		return f.dispatchedFn(limit)
	}
	return nil, nil
}

type fakeWorkLogRepo struct {
	createWithProgressFn func(log *model.WorkLog) ([]repository.ProgressChange, error)
	findRecentByUserFn   func(userID uint, limit int) ([]model.WorkLogView, error)
	findByUserBetweenFn  func(userID uint, from, to time.Time) ([]model.WorkLogView, error)
	findByUserSinceFn    func(userID uint, since time.Time) ([]model.WorkLog, error)
	countByUserFn        func(userID uint) (int64, error)
	countByUserSinceFn   func(userID uint, since time.Time) (int64, error)
}

func (f *fakeWorkLogRepo) CreateWithProgress(log *model.WorkLog) ([]repository.ProgressChange, error) {
	if f.createWithProgressFn != nil {
		return f.createWithProgressFn(log)
	}
	return nil, nil
}
func (f *fakeWorkLogRepo) FindRecentByUser(userID uint, limit int) ([]model.WorkLogView, error) {
	if f.findRecentByUserFn != nil {
		return f.findRecentByUserFn(userID, limit)
	}
	return nil, nil
}
func (f *fakeWorkLogRepo) FindByUserBetween(userID uint, from, to time.Time) ([]model.WorkLogView, error) {
	if f.findByUserBetweenFn != nil {
		return f.findByUserBetweenFn(userID, from, to)
	}
	return nil, nil
}
func (f *fakeWorkLogRepo) FindByUserSince(userID uint, since time.Time) ([]model.WorkLog, error) {
	if f.findByUserSinceFn != nil {
		return f.findByUserSinceFn(userID, since)
	}
	return nil, nil
}
func (f *fakeWorkLogRepo) CountByUser(userID uint) (int64, error) {
	if f.countByUserFn != nil {
		return f.countByUserFn(userID)
	}
	return 0, nil
}
func (f *fakeWorkLogRepo) CountByUserSince(userID uint, since time.Time) (int64, error) {
	if f.countByUserSinceFn != nil {
		return f.countByUserSinceFn(userID, since)
	}
	return 0, nil
}

type fakeMessageRepo struct {
	countUnreadFn      func(userID uint) (int64, error)
	fetchAndMarkReadFn func(userID uint) ([]model.Message, int64, error)
}

func (f *fakeMessageRepo) Create(msg *model.Message) error { return nil }
func (f *fakeMessageRepo) CountUnread(userID uint) (int64, error) {
	if f.countUnreadFn != nil {
		return f.countUnreadFn(userID)
	}
	return 0, nil
}
func (f *fakeMessageRepo) FetchAndMarkRead(userID uint) ([]model.Message, int64, error) {
	if f.fetchAndMarkReadFn != nil {
		return f.fetchAndMarkReadFn(userID)
	}
	return nil, 0, nil
}

type fakeAIRepo struct {
	created []model.AIAnalysis
	err     error
}

func (f *fakeAIRepo) Create(a *model.AIAnalysis) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *a)
	return nil
}
func (f *fakeAIRepo) FindRecentByUser(userID uint, limit int) ([]model.AIAnalysis, error) {
	return f.created, nil
}

type fakeProvider struct {
	name      string
	analyzeFn func(ctx context.Context, req llm.Request) (*llm.Result, error)
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Analyze(ctx context.Context, req llm.Request) (*llm.Result, error) {
	return f.analyzeFn(ctx, req)
}
