package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	auditpkg "backend/internal/audit"
	authpkg "backend/internal/auth"
	"backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureRecorder struct {
	entries []auditpkg.Entry
}

func (c *captureRecorder) Record(entry auditpkg.Entry) {
	c.entries = append(c.entries, entry)
}

func testAdminConfig() config.AdminConfig {
	return config.AdminConfig{
		Username: "admin",
		Password: "s3cret",
		Users:    "alice",
		Session: config.SessionConfig{
			Secret:    "test-secret-at-least-32-bytes-long!",
			MaxAge:    7200,
			UpdateAge: 300,
		},
	}
}

func newTestHandler(t *testing.T, cfg config.AdminConfig) (*AuthHandler, *captureRecorder, *authpkg.SessionService) {
	t.Helper()
	rec := &captureRecorder{}
	policy := authpkg.NewPolicy(cfg, authpkg.NewGitHubService(cfg.GitHub), rec)
	sessions := authpkg.NewSessionService(cfg.Session)
	oauth := authpkg.NewOAuth2Service(cfg.GitHub)
	states := authpkg.NewMemoryStateStore(10 * time.Minute)
	return NewAuthHandler(policy, sessions, oauth, states, rec), rec, sessions
}

func setupAuthRouter(h *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/auth/login", h.Login)
	router.GET("/api/auth/oauth/github", h.OAuthStart)
	router.GET("/api/auth/callback/github", h.OAuthCallback)
	router.POST("/api/auth/logout", h.Logout)
	router.GET("/api/auth/session", h.Session)
	router.GET("/api/auth/error", h.ErrorMessage)
	return router
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("正确凭证返回会话Cookie", func(t *testing.T) {
		h, rec, _ := newTestHandler(t, testAdminConfig())
		router := setupAuthRouter(h)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"username":"admin","password":"s3cret"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"login":"admin"`)

		var sessionCookie *http.Cookie
		for _, ck := range w.Result().Cookies() {
			if ck.Name == authpkg.SessionCookieName {
				sessionCookie = ck
			}
		}
		require.NotNil(t, sessionCookie)
		assert.True(t, sessionCookie.HttpOnly)

		require.Len(t, rec.entries, 1)
		assert.Equal(t, auditpkg.ActionAdminLogin, rec.entries[0].Action)
	})

	t.Run("错误凭证返回401与错误码", func(t *testing.T) {
		h, rec, _ := newTestHandler(t, testAdminConfig())
		router := setupAuthRouter(h)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"username":"admin","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), CodeCredentialsError)
		assert.Empty(t, w.Result().Cookies())

		require.Len(t, rec.entries, 1)
		assert.Equal(t, auditpkg.ActionFailedLogin, rec.entries[0].Action)
	})

	t.Run("缺少字段返回400", func(t *testing.T) {
		h, _, _ := newTestHandler(t, testAdminConfig())
		router := setupAuthRouter(h)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"username":"admin"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_OAuthStart(t *testing.T) {
	t.Run("未配置OAuth时返回503", func(t *testing.T) {
		h, _, _ := newTestHandler(t, testAdminConfig())
		router := setupAuthRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/oauth/github", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), CodeConfiguration)
	})

	t.Run("已配置时重定向到授权页并携带state", func(t *testing.T) {
		cfg := testAdminConfig()
		cfg.GitHub.ClientID = "cid"
		cfg.GitHub.ClientSecret = "secret"
		h, _, _ := newTestHandler(t, cfg)
		router := setupAuthRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/oauth/github", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		location := w.Header().Get("Location")
		assert.Contains(t, location, "github.com/login/oauth/authorize")
		assert.Contains(t, location, "state=")
		assert.Contains(t, location, "client_id=cid")
	})
}

func TestAuthHandler_OAuthCallback(t *testing.T) {
	t.Run("无效state重定向到登录页", func(t *testing.T) {
		cfg := testAdminConfig()
		cfg.GitHub.ClientID = "cid"
		cfg.GitHub.ClientSecret = "secret"
		h, _, _ := newTestHandler(t, cfg)
		router := setupAuthRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/api/auth/callback/github?state=forged&code=abc", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin/login?error="+CodeAccessDenied, w.Header().Get("Location"))
	})

	t.Run("缺少参数重定向到登录页", func(t *testing.T) {
		h, _, _ := newTestHandler(t, testAdminConfig())
		router := setupAuthRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/callback/github", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), CodeAccessDenied)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("带会话退出记录用户名", func(t *testing.T) {
		h, rec, sessions := newTestHandler(t, testAdminConfig())
		router := setupAuthRouter(h)

		token, err := sessions.Issue("42", "alice", "")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: authpkg.SessionCookieName, Value: token})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, rec.entries, 1)
		assert.Equal(t, auditpkg.ActionAdminLogout, rec.entries[0].Action)
		assert.Equal(t, "alice", rec.entries[0].UserID)
	})

	t.Run("无会话退出记录unknown", func(t *testing.T) {
		h, rec, _ := newTestHandler(t, testAdminConfig())
		router := setupAuthRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, rec.entries, 1)
		assert.Equal(t, "unknown", rec.entries[0].UserID)
	})
}

func TestAuthHandler_Session(t *testing.T) {
	t.Run("有效会话返回身份", func(t *testing.T) {
		h, _, sessions := newTestHandler(t, testAdminConfig())
		router := setupAuthRouter(h)

		token, err := sessions.Issue("42", "alice", "")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: authpkg.SessionCookieName, Value: token})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"login":"alice"`)
	})

	t.Run("无会话返回401", func(t *testing.T) {
		h, _, _ := newTestHandler(t, testAdminConfig())
		router := setupAuthRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_ErrorMessage(t *testing.T) {
	h, _, _ := newTestHandler(t, testAdminConfig())
	router := setupAuthRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/error?error=AccessDenied", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "You do not have permission to sign in.")
}
