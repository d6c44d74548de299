package model

import "time"

// 角色 ID 1~2 为高权限（公司级视图），不是完整的权限系统。
const (
	RoleIDMinHighPrivilege uint = 1
	RoleIDMaxHighPrivilege uint = 2
	// RoleIDEmployee 是新建用户的默认角色
	RoleIDEmployee uint = 3
)

// User 对应 sys_user 表。
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Name      string    `gorm:"type:varchar(64);not null;default:''" json:"name"`
	Mobile    string    `gorm:"type:varchar(32);not null;default:''" json:"mobile"`
	Email     string    `gorm:"type:varchar(128);not null;default:''" json:"email"`
	TeamID    *uint     `gorm:"index" json:"team_id"`
	RoleID    uint      `gorm:"not null;default:3" json:"role_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "sys_user"
}

// IsHighPrivilege 判断用户是否具备公司级可见性。
func (u *User) IsHighPrivilege() bool {
	return IsHighPrivilegeRole(u.RoleID)
}

func IsHighPrivilegeRole(roleID uint) bool {
	return roleID >= RoleIDMinHighPrivilege && roleID <= RoleIDMaxHighPrivilege
}

// Role 对应 sys_role 表。
type Role struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	RoleName string `gorm:"type:varchar(64);not null" json:"role_name"`
}

func (Role) TableName() string {
	return "sys_role"
}
