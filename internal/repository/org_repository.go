package repository

import (
	"errors"
	"fmt"

	"worklog_go/internal/model"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrDepartmentHasTeams 部门下仍有团队
	ErrDepartmentHasTeams = errors.New("department still has teams")
	// ErrTeamHasMembers 团队下仍有成员
	ErrTeamHasMembers = errors.New("team still has members")
	// ErrTargetReferenced 部门/团队仍被任务作为指派目标引用
	ErrTargetReferenced = errors.New("assignment target is referenced by tasks")
)

// OrgRepository 负责部门、团队、角色的持久化。
type OrgRepository interface {
	ListDepartments() ([]model.Department, error)
	FindDepartmentByID(id uint) (*model.Department, error)
	FindDepartmentByName(name string) (*model.Department, error)
	CreateDepartment(dept *model.Department) error
	UpdateDepartment(dept *model.Department) error
	// DeleteDepartment 有团队或被任务引用时拒绝删除
	DeleteDepartment(id uint) error

	// ListTeams departmentID 为 nil 时返回全部团队
	ListTeams(departmentID *uint) ([]model.Team, error)
	FindTeamByID(id uint) (*model.Team, error)
	FindTeamByName(name string) (*model.Team, error)
	FindTeamsByIDs(ids []uint) ([]model.Team, error)
	CreateTeam(team *model.Team) error
	UpdateTeam(team *model.Team) error
	// DeleteTeam 有成员或被任务引用时拒绝删除
	DeleteTeam(id uint) error

	ListRoles() ([]model.Role, error)
	FindRoleByID(id uint) (*model.Role, error)
}

type orgRepository struct {
	db *gorm.DB
}

func NewOrgRepository(db *gorm.DB) OrgRepository {
	return &orgRepository{db: db}
}

func (r *orgRepository) ListDepartments() ([]model.Department, error) {
	var depts []model.Department
	if err := r.db.Order("id ASC").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

func (r *orgRepository) FindDepartmentByID(id uint) (*model.Department, error) {
	var dept model.Department
	if err := r.db.First(&dept, id).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *orgRepository) FindDepartmentByName(name string) (*model.Department, error) {
	var dept model.Department
	if err := r.db.Where("dept_name = ?", name).First(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *orgRepository) CreateDepartment(dept *model.Department) error {
	if dept == nil {
		return fmt.Errorf("department is nil")
	}
	return r.db.Create(dept).Error
}

func (r *orgRepository) UpdateDepartment(dept *model.Department) error {
	if dept == nil || dept.ID == 0 {
		return fmt.Errorf("department id is required")
	}
	return r.db.Model(&model.Department{}).
		Where("id = ?", dept.ID).
		Select("dept_name", "manager_id").
		Updates(dept).Error
}

// DeleteDepartment 在事务中确认存在、检查下属团队和任务引用后删除。
func (r *orgRepository) DeleteDepartment(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current model.Department
		if err := tx.First(&current, id).Error; err != nil {
			return err
		}

		var teams int64
		if err := tx.Model(&model.Team{}).Where("department_id = ?", id).Count(&teams).Error; err != nil {
			return pkgerrors.Wrap(err, "count department teams")
		}
		if teams > 0 {
			return ErrDepartmentHasTeams
		}

		if err := ensureNotTargeted(tx, model.AssignDept, id); err != nil {
			return err
		}

		res := tx.Delete(&model.Department{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *orgRepository) ListTeams(departmentID *uint) ([]model.Team, error) {
	var teams []model.Team
	q := r.db.Order("id ASC")
	if departmentID != nil {
		q = q.Where("department_id = ?", *departmentID)
	}
	if err := q.Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *orgRepository) FindTeamByID(id uint) (*model.Team, error) {
	var team model.Team
	if err := r.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *orgRepository) FindTeamByName(name string) (*model.Team, error) {
	var team model.Team
	if err := r.db.Where("team_name = ?", name).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *orgRepository) FindTeamsByIDs(ids []uint) ([]model.Team, error) {
	if len(ids) == 0 {
		return []model.Team{}, nil
	}
	var teams []model.Team
	if err := r.db.Where("id IN ?", ids).Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *orgRepository) CreateTeam(team *model.Team) error {
	if team == nil {
		return fmt.Errorf("team is nil")
	}
	return r.db.Create(team).Error
}

func (r *orgRepository) UpdateTeam(team *model.Team) error {
	if team == nil || team.ID == 0 {
		return fmt.Errorf("team id is required")
	}
	return r.db.Model(&model.Team{}).
		Where("id = ?", team.ID).
		Select("team_name", "department_id", "leader_id").
		Updates(team).Error
}

// DeleteTeam 在事务中确认存在、检查成员和任务引用后删除。
func (r *orgRepository) DeleteTeam(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current model.Team
		if err := tx.First(&current, id).Error; err != nil {
			return err
		}

		var members int64
		if err := tx.Model(&model.User{}).Where("team_id = ?", id).Count(&members).Error; err != nil {
			return pkgerrors.Wrap(err, "count team members")
		}
		if members > 0 {
			return ErrTeamHasMembers
		}

		if err := ensureNotTargeted(tx, model.AssignTeam, id); err != nil {
			return err
		}

		res := tx.Delete(&model.Team{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func ensureNotTargeted(tx *gorm.DB, kind model.AssignmentKind, id uint) error {
	var refs int64
	if err := tx.Model(&model.Task{}).
		Where("assigned_type = ? AND assigned_id = ?", kind, id).
		Count(&refs).Error; err != nil {
		return pkgerrors.Wrap(err, "count task references")
	}
	if refs > 0 {
		return ErrTargetReferenced
	}
	return nil
}

func (r *orgRepository) ListRoles() ([]model.Role, error) {
	var roles []model.Role
	if err := r.db.Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *orgRepository) FindRoleByID(id uint) (*model.Role, error) {
	var role model.Role
	if err := r.db.First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
