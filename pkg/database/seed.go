package database

import (
	"time"

	"worklog_go/internal/model"
	"worklog_go/pkg/hash"
	"worklog_go/pkg/log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword 是演示账号的初始密码。
const DemoPassword = "123456"

func uintPtr(v uint) *uint { return &v }

// SeedDemo 写入一套演示组织、人员、任务和日志。库中已有用户时不做任何事。
func SeedDemo(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Seed skipped: users already exist")
		return nil
	}

	pwd, err := hash.HashPassword(DemoPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	start := today.AddDate(0, 0, -7)
	end := today.AddDate(0, 0, 21)

	return db.Transaction(func(tx *gorm.DB) error {
		roles := []model.Role{
			{ID: 1, RoleName: "系统管理员"},
			{ID: 2, RoleName: "公司领导"},
			{ID: 3, RoleName: "普通员工"},
		}
		// MySQL 迁移已写入角色，这里忽略冲突
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
			return err
		}

		depts := []model.Department{
			{ID: 1, DeptName: "研发部"},
			{ID: 2, DeptName: "市场部"},
		}
		if err := tx.Create(&depts).Error; err != nil {
			return err
		}

		teams := []model.Team{
			{ID: 1, TeamName: "后端组", DepartmentID: 1},
			{ID: 2, TeamName: "前端组", DepartmentID: 1},
			{ID: 3, TeamName: "推广组", DepartmentID: 2},
		}
		if err := tx.Create(&teams).Error; err != nil {
			return err
		}

		users := []model.User{
			{ID: 1, Username: "admin", Password: pwd, Name: "系统管理员", RoleID: 1},
			{ID: 2, Username: "boss", Password: pwd, Name: "张总", RoleID: 2, Mobile: "13800000002"},
			{ID: 3, Username: "lisi", Password: pwd, Name: "李四", RoleID: 3, TeamID: uintPtr(1), Email: "lisi@example.com"},
			{ID: 4, Username: "wangwu", Password: pwd, Name: "王五", RoleID: 3, TeamID: uintPtr(1)},
			{ID: 5, Username: "zhaoliu", Password: pwd, Name: "赵六", RoleID: 3, TeamID: uintPtr(3)},
			{ID: 6, Username: "sunqi", Password: pwd, Name: "孙七", RoleID: 3, TeamID: uintPtr(2)},
		}
		if err := tx.Create(&users).Error; err != nil {
			return err
		}

		// 前端组故意不设负责人，用来演示无效指派目标
		if err := tx.Model(&model.Department{}).Where("id = ?", 1).Update("manager_id", 2).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Department{}).Where("id = ?", 2).Update("manager_id", 5).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Team{}).Where("id = ?", 1).Update("leader_id", 3).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Team{}).Where("id = ?", 3).Update("leader_id", 5).Error; err != nil {
			return err
		}

		tasks := []model.Task{
			{ID: 1, Title: "季度版本发布", Description: "完成本季度版本的开发、测试与上线", CreatorID: 2,
				AssignedType: model.AssignDept, AssignedID: 1, AssigneeID: 2,
				StartTime: &start, EndTime: &end, Status: model.TaskStatusInProgress, Progress: 40},
			{ID: 2, Title: "后端接口开发", Description: "用户与任务接口开发", CreatorID: 2,
				AssignedType: model.AssignTeam, AssignedID: 1, AssigneeID: 3, ParentID: uintPtr(1),
				StartTime: &start, EndTime: &end, Status: model.TaskStatusInProgress, Progress: 60},
			{ID: 3, Title: "接口联调测试", Description: "编写测试用例并完成联调", CreatorID: 3,
				AssignedType: model.AssignPersonal, AssignedID: 4, AssigneeID: 4, ParentID: uintPtr(1),
				StartTime: &start, EndTime: &end, Status: model.TaskStatusInProgress, Progress: 20},
			{ID: 4, Title: "市场推广方案", Description: "输出下季度推广方案文档", CreatorID: 2,
				AssignedType: model.AssignTeam, AssignedID: 3, AssigneeID: 5,
				StartTime: &today, EndTime: &end, Status: model.TaskStatusPending, Progress: 0},
		}
		if err := tx.Create(&tasks).Error; err != nil {
			return err
		}

		logs := []model.WorkLog{
			{TaskID: 2, UserID: 3, Content: "完成用户接口开发并修复登录bug", Keywords: "开发,接口,bug",
				LogDate: today.AddDate(0, 0, -1), Progress: 60},
			{TaskID: 3, UserID: 4, Content: "编写测试用例并验证接口", Keywords: "测试,用例",
				LogDate: today, Progress: 20},
		}
		if err := tx.Create(&logs).Error; err != nil {
			return err
		}

		messages := []model.Message{
			{UserID: 3, TaskID: uintPtr(2), Content: "您有新的任务：后端接口开发"},
			{UserID: 4, TaskID: uintPtr(3), Content: "您有新的任务：接口联调测试"},
			{UserID: 5, TaskID: uintPtr(4), Content: "您有新的任务：市场推广方案"},
		}
		return tx.Create(&messages).Error
	})
}
