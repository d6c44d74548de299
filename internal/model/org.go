package model

// Department 对应 sys_department 表，ManagerID 是部门任务的默认负责人。
type Department struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	DeptName  string `gorm:"type:varchar(64);uniqueIndex;not null" json:"dept_name"`
	ManagerID *uint  `json:"manager_id"`
}

func (Department) TableName() string {
	return "sys_department"
}

// Team 对应 sys_team 表，LeaderID 是团队任务的默认负责人。
type Team struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	TeamName     string `gorm:"type:varchar(64);uniqueIndex;not null" json:"team_name"`
	DepartmentID uint   `gorm:"index;not null" json:"department_id"`
	LeaderID     *uint  `json:"leader_id"`
}

func (Team) TableName() string {
	return "sys_team"
}

// UserInfo 是用户信息的扁平视图：角色、团队、部门任一环缺失时对应字段为 nil。
type UserInfo struct {
	ID         uint    `json:"id"`
	Username   string  `json:"username"`
	Name       string  `json:"name"`
	RoleID     uint    `json:"role_id"`
	RoleName   *string `json:"role_name"`
	TeamID     *uint   `json:"team_id"`
	Team       *string `json:"team"`
	Department *string `json:"department"`
}

// TeamMember 是团队成员列表的行。
type TeamMember struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Mobile   string  `json:"mobile"`
	Email    string  `json:"email"`
	RoleID   uint    `json:"role_id"`
	RoleName *string `json:"role_name"`
	IsLeader bool    `json:"is_leader"`
}
