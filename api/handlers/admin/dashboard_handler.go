package admin

import (
	"math"
	"net/http"

	response "backend/api/handlers/common"
	auditpkg "backend/internal/audit"
	authpkg "backend/internal/auth"

	"github.com/gin-gonic/gin"
)

const recentActivityLimit = 20

// DashboardHandler 后台总览处理器
type DashboardHandler struct {
	store  *auditpkg.Store
	policy *authpkg.Policy
	audit  auditpkg.Recorder
}

// NewDashboardHandler 创建后台总览处理器
func NewDashboardHandler(store *auditpkg.Store, policy *authpkg.Policy, recorder auditpkg.Recorder) *DashboardHandler {
	return &DashboardHandler{store: store, policy: policy, audit: recorder}
}

// TopEntry 出现次数最多的动作或管理员
type TopEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DashboardData 后台总览数据
type DashboardData struct {
	Total          int              `json:"total"`
	ByAction       map[string]int   `json:"by_action"`
	ByUser         map[string]int   `json:"by_user"`
	SuccessRate    float64          `json:"success_rate"`
	RecentActivity []auditpkg.Entry `json:"recent_activity"`
	UniqueAdmins   int              `json:"unique_admins"`
	TopAction      *TopEntry        `json:"top_action"`
	TopAdmin       *TopEntry        `json:"top_admin"`
	SecurityScore  int              `json:"security_score"`
}

// GetDashboard 返回后台总览
// 已登录但不在授权名单上的会话会被记入审计并重定向回登录页。
// @Summary 后台总览
// @Tags Admin
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /api/admin/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userCtx, exists := authpkg.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Success: false, Message: "未认证"})
		return
	}

	if !h.policy.IsAuthorizedUser(userCtx.Login) {
		h.audit.Record(auditpkg.Entry{
			Action:   auditpkg.ActionInsufficientPermissions,
			UserID:   userCtx.Login,
			Resource: auditpkg.ResourceAdminPanel,
			Status:   auditpkg.StatusFailure,
		})
		c.Redirect(http.StatusFound, "/admin/login?error=AccessDenied")
		c.Abort()
		return
	}

	stats := h.store.Stats()
	recent := h.store.RecentActivity(recentActivityLimit)

	data := DashboardData{
		Total:          stats.Total,
		ByAction:       stats.ByAction,
		ByUser:         stats.ByUser,
		SuccessRate:    stats.SuccessRate,
		RecentActivity: recent,
		UniqueAdmins:   len(stats.ByUser),
		TopAction:      topOf(stats.ByAction),
		TopAdmin:       topOf(stats.ByUser),
		SecurityScore:  securityScore(stats),
	}

	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: data})
}

// topOf 返回计数最高的键；并列时取字典序最小的，保证结果稳定。
func topOf(counts map[string]int) *TopEntry {
	var top *TopEntry
	for key, count := range counts {
		if top == nil || count > top.Count || (count == top.Count && key < top.Key) {
			top = &TopEntry{Key: key, Count: count}
		}
	}
	return top
}

// securityScore 以成功率为基础、近期活跃度加分的粗略健康分，封顶 100。
func securityScore(stats auditpkg.Stats) int {
	score := stats.SuccessRate + float64(stats.RecentActivity)
	return int(math.Round(math.Min(100, score)))
}
