package repository

import (
	"errors"
	"fmt"

	"worklog_go/internal/model"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrUserReferenced 表示用户仍是某些任务的创建人或负责人，不能删除。
var ErrUserReferenced = errors.New("user is referenced by tasks")

// UserRepository 接口定义了用户数据的持久化操作。
type UserRepository interface {
	Create(user *model.User) error
	FindByUsername(username string) (*model.User, error)
	FindByID(userID uint) (*model.User, error)
	FindByIDs(userIDs []uint) ([]model.User, error)
	// FindByIdentity 按 姓名+邮箱+手机号 三元组精确查找
	FindByIdentity(name, email, mobile string) (*model.User, error)
	FindByTeamID(teamID uint) ([]model.User, error)
	FindAll() ([]model.User, error)
	FindWithPagination(offset, limit int) ([]model.User, int64, error)
	// Update 更新资料字段（不含密码）
	Update(user *model.User) error
	UpdatePassword(userID uint, hashed string) error
	// Delete 删除用户并级联删除其日志、AI 分析和消息；
	// 仍被任务引用时返回 ErrUserReferenced。
	Delete(userID uint) error
}

// userRepository 是 UserRepository 接口的 GORM 实现。
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建一个新的 UserRepository 实例。
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	return r.db.Create(user).Error
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(userID uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(userIDs []uint) ([]model.User, error) {
	if len(userIDs) == 0 {
		return []model.User{}, nil
	}
	var users []model.User
	if err := r.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindByIdentity(name, email, mobile string) (*model.User, error) {
	var user model.User
	err := r.db.Where("name = ? AND email = ? AND mobile = ?", name, email, mobile).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByTeamID(teamID uint) ([]model.User, error) {
	var users []model.User
	if err := r.db.Where("team_id = ?", teamID).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindWithPagination(offset, limit int) ([]model.User, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	var total int64
	if err := r.db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.User{}, 0, nil
	}

	var users []model.User
	if err := r.db.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update 只更新资料字段；用 Select 保证 nil 的 team_id 也会写成 NULL。
func (r *userRepository) Update(user *model.User) error {
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	if user.ID == 0 {
		return fmt.Errorf("user id is required")
	}
	return r.db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Select("username", "name", "mobile", "email", "team_id", "role_id").
		Updates(user).Error
}

func (r *userRepository) UpdatePassword(userID uint, hashed string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("password", hashed).Error
}

func (r *userRepository) Delete(userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		var refs int64
		if err := tx.Model(&model.Task{}).
			Where("creator_id = ? OR assignee_id = ?", userID, userID).
			Count(&refs).Error; err != nil {
			return pkgerrors.Wrap(err, "count task references")
		}
		if refs > 0 {
			return ErrUserReferenced
		}

		if err := tx.Model(&model.Department{}).Where("manager_id = ?", userID).
			Update("manager_id", nil).Error; err != nil {
			return pkgerrors.Wrap(err, "clear department manager")
		}
		if err := tx.Model(&model.Team{}).Where("leader_id = ?", userID).
			Update("leader_id", nil).Error; err != nil {
			return pkgerrors.Wrap(err, "clear team leader")
		}
		for _, m := range []interface{}{&model.WorkLog{}, &model.AIAnalysis{}, &model.Message{}} {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return pkgerrors.Wrapf(err, "cascade delete %T", m)
			}
		}

		res := tx.Delete(&model.User{}, userID)
		if res.Error != nil {
			return pkgerrors.Wrap(res.Error, "delete user")
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
