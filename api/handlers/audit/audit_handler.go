package audit

import (
	"net/http"
	"strconv"
	"time"

	response "backend/api/handlers/common"
	auditpkg "backend/internal/audit"

	"github.com/gin-gonic/gin"
)

// AuditHandler 审计日志处理器，所有路由都挂在管理员会话中间件之后。
type AuditHandler struct {
	store *auditpkg.Store
}

// NewAuditHandler 创建审计日志处理器
func NewAuditHandler(store *auditpkg.Store) *AuditHandler {
	return &AuditHandler{store: store}
}

// QueryLogs 按条件查询审计日志
// @Summary 查询审计日志
// @Tags Audit
// @Produce json
// @Param user_id query string false "用户 ID"
// @Param action query string false "动作"
// @Param resource query string false "资源（子串匹配）"
// @Param start_date query string false "起始时间（RFC3339）"
// @Param end_date query string false "结束时间（RFC3339）"
// @Param limit query int false "返回条数"
// @Success 200 {object} response.ListResponse
// @Router /api/admin/audit/logs [get]
func (h *AuditHandler) QueryLogs(c *gin.Context) {
	filter := auditpkg.Filter{
		UserID:   c.Query("user_id"),
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
		Limit:    parseLimit(c.Query("limit"), 0, 1000),
	}

	if t, ok := parseTime(c.Query("start_date")); ok {
		filter.StartDate = &t
	}
	if t, ok := parseTime(c.Query("end_date")); ok {
		filter.EndDate = &t
	}

	logs := h.store.Query(filter)
	c.JSON(http.StatusOK, response.ListResponse{
		Items: toItems(logs),
		Total: len(logs),
	})
}

// GetStats 获取审计统计
// @Summary 审计统计
// @Tags Audit
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /api/admin/audit/stats [get]
func (h *AuditHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, response.APIResponse{
		Success: true,
		Data:    h.store.Stats(),
	})
}

// GetRecentActivity 获取最近活动
// @Summary 最近审计活动
// @Tags Audit
// @Produce json
// @Param limit query int false "返回条数"
// @Success 200 {object} response.ListResponse
// @Router /api/admin/audit/recent [get]
func (h *AuditHandler) GetRecentActivity(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 20, 200)
	logs := h.store.RecentActivity(limit)
	c.JSON(http.StatusOK, response.ListResponse{
		Items: toItems(logs),
		Total: len(logs),
	})
}

// GetUserLogs 获取指定用户的审计日志
// @Summary 指定用户的审计日志
// @Tags Audit
// @Produce json
// @Param userID path string true "用户 ID"
// @Param limit query int false "返回条数"
// @Success 200 {object} response.ListResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /api/admin/audit/users/{userID} [get]
func (h *AuditHandler) GetUserLogs(c *gin.Context) {
	userID := c.Param("userID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "缺少用户 ID"})
		return
	}

	limit := parseLimit(c.Query("limit"), 30, 200)
	logs := h.store.UserLogs(userID, limit)
	c.JSON(http.StatusOK, response.ListResponse{
		Items: toItems(logs),
		Total: len(logs),
	})
}

// ExportLogs 导出指定时间范围的审计日志
// @Summary 导出审计日志
// @Tags Audit
// @Produce json
// @Param start query string false "起始时间（RFC3339）"
// @Param end query string false "结束时间（RFC3339）"
// @Success 200 {string} string "JSON 文本"
// @Failure 500 {object} response.ErrorResponse
// @Router /api/admin/audit/export [get]
func (h *AuditHandler) ExportLogs(c *gin.Context) {
	var start, end *time.Time
	if t, ok := parseTime(c.Query("start")); ok {
		start = &t
	}
	if t, ok := parseTime(c.Query("end")); ok {
		end = &t
	}

	data, err := h.store.Export(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Success: false, Message: "导出失败: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=audit_logs.json")
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(data))
}

func parseTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseLimit(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}

func toItems(logs []auditpkg.Entry) []interface{} {
	items := make([]interface{}, len(logs))
	for i, log := range logs {
		items[i] = log
	}
	return items
}
