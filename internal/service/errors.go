package service

import "errors"

// 哨兵错误：对外统一语义，隐藏底层实现细节。Handler 通过 mapServiceError 转成 HTTP 状态码。
var (
	// ErrInvalidInput 缺少必填字段或取值非法
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials 密码不匹配
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken token 无效、过期或类型不对
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden 当前用户无权执行该操作
	ErrForbidden = errors.New("forbidden")

	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrTeamNotFound       = errors.New("team not found")

	// ErrInvalidTarget 团队没有负责人或部门没有经理，无法解析出任务负责人
	ErrInvalidTarget = errors.New("assignment target has no responsible user")
	// ErrProgressRegression 提交的进度低于任务当前进度
	ErrProgressRegression = errors.New("progress must not decrease")
	// ErrProgressDerived 父任务的进度由子任务汇总，不能直接提交日志
	ErrProgressDerived = errors.New("task has subtasks; progress is derived")

	// ErrUserAlreadyExists 用户名已被占用
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrNameTaken 部门名/团队名重复
	ErrNameTaken = errors.New("name already taken")
	// ErrDepartmentInUse 部门下仍有团队，或被任务引用
	ErrDepartmentInUse = errors.New("department is in use")
	// ErrTeamInUse 团队下仍有成员，或被任务引用
	ErrTeamInUse = errors.New("team is in use")
	// ErrUserInUse 用户仍是任务的创建人或负责人
	ErrUserInUse = errors.New("user is in use")

	// ErrUpstream AI 服务调用失败或返回无法解析
	ErrUpstream = errors.New("upstream service error")
	// ErrAINotConfigured 没有配置任何 AI 服务
	ErrAINotConfigured = errors.New("ai provider not configured")

	// ErrInternal 内部错误（对外不暴露细节）
	ErrInternal = errors.New("internal server error")
)
