package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auditpkg "backend/internal/audit"
	"backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *auditpkg.Store {
	store := auditpkg.NewStore(config.AuditConfig{Enabled: true, RetentionDays: 90})
	store.Record(auditpkg.Entry{
		Action: auditpkg.ActionAdminLogin, UserID: "alice",
		Resource: auditpkg.ResourceAdminPanel, Status: auditpkg.StatusSuccess,
		Timestamp: time.Now().Add(-2 * time.Hour),
	})
	store.Record(auditpkg.Entry{
		Action: auditpkg.ActionFailedLogin, UserID: "mallory",
		Resource: auditpkg.ResourceAdminPanel, Status: auditpkg.StatusFailure,
		Timestamp: time.Now().Add(-1 * time.Hour),
	})
	store.Record(auditpkg.Entry{
		Action: auditpkg.ActionAdminLogout, UserID: "alice",
		Resource: auditpkg.ResourceAdminPanel, Status: auditpkg.StatusSuccess,
	})
	return store
}

func setupAuditRouter(store *auditpkg.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuditHandler(store)
	router := gin.New()
	admin := router.Group("/api/admin/audit")
	{
		admin.GET("/logs", h.QueryLogs)
		admin.GET("/stats", h.GetStats)
		admin.GET("/recent", h.GetRecentActivity)
		admin.GET("/users/:userID", h.GetUserLogs)
		admin.GET("/export", h.ExportLogs)
	}
	return router
}

func TestAuditHandler_QueryLogs(t *testing.T) {
	router := setupAuditRouter(newTestStore())

	t.Run("无条件返回全部且最新在前", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/audit/logs", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Items []auditpkg.Entry `json:"items"`
			Total int              `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, 3, resp.Total)
		assert.Equal(t, auditpkg.ActionAdminLogout, resp.Items[0].Action)
	})

	t.Run("按用户过滤", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/audit/logs?user_id=mallory", nil))

		var resp struct {
			Items []auditpkg.Entry `json:"items"`
			Total int              `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Total)
		assert.Equal(t, auditpkg.ActionFailedLogin, resp.Items[0].Action)
	})

	t.Run("按动作与条数过滤", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/api/admin/audit/logs?action=admin_login&limit=5", nil))

		var resp struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("按时间范围过滤", func(t *testing.T) {
		start := time.Now().Add(-90 * time.Minute).Format(time.RFC3339)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/api/admin/audit/logs?start_date="+start, nil))

		var resp struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Total)
	})
}

func TestAuditHandler_GetStats(t *testing.T) {
	router := setupAuditRouter(newTestStore())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/audit/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data auditpkg.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.ByUser["alice"])
	assert.InDelta(t, 66.67, resp.Data.SuccessRate, 0.01)
}

func TestAuditHandler_GetRecentActivity(t *testing.T) {
	router := setupAuditRouter(newTestStore())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/audit/recent?limit=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []auditpkg.Entry `json:"items"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, auditpkg.ActionAdminLogout, resp.Items[0].Action)
}

func TestAuditHandler_GetUserLogs(t *testing.T) {
	router := setupAuditRouter(newTestStore())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/audit/users/alice", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []auditpkg.Entry `json:"items"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	for _, item := range resp.Items {
		assert.Equal(t, "alice", item.UserID)
	}
}

func TestAuditHandler_ExportLogs(t *testing.T) {
	router := setupAuditRouter(newTestStore())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/audit/export", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "audit_logs.json")

	var logs []auditpkg.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	assert.Len(t, logs, 3)
}
