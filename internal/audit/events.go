package audit

import "time"

// Status 审计条目结果
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// 后台授权流程中使用的动作标签
const (
	ActionAdminLogin              = "admin_login"
	ActionAdminLogout             = "admin_logout"
	ActionFailedLogin             = "failed_login_attempt"
	ActionUnauthorizedLogin       = "unauthorized_login_attempt"
	ActionLoginWithout2FA         = "login_without_2fa"
	ActionTwoFactorUnconfirmed    = "2fa_verification_unconfirmed"
	ActionInsufficientPermissions = "insufficient_permissions"
)

// ResourceAdminPanel 后台面板资源标识
const ResourceAdminPanel = "admin_panel"

// Entry 一条不可变的管理操作记录
type Entry struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	UserID    string         `json:"user_id"`
	Resource  string         `json:"resource"`
	Status    Status         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
}

// Stats 审计统计快照
type Stats struct {
	Total          int            `json:"total"`
	ByAction       map[string]int `json:"by_action"`
	ByUser         map[string]int `json:"by_user"`
	SuccessRate    float64        `json:"success_rate"`
	RecentActivity int            `json:"recent_activity"`
}

// Recorder 审计写入接口，供授权流程与处理器使用。
// 接口保持窄口径，便于未来换成共享存储实现。
type Recorder interface {
	Record(entry Entry)
}
