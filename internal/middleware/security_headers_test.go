package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSecurityRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/*path", func(c *gin.Context) {
		c.String(http.StatusOK, GetNonce(c))
	})
	return router
}

func TestSecurityHeaders(t *testing.T) {
	t.Run("每个请求生成独立nonce并写入CSP", func(t *testing.T) {
		router := setupSecurityRouter()

		w1 := httptest.NewRecorder()
		router.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/", nil))
		w2 := httptest.NewRecorder()
		router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/", nil))

		nonce1 := w1.Header().Get(HeaderNonce)
		nonce2 := w2.Header().Get(HeaderNonce)
		require.NotEmpty(t, nonce1)
		assert.NotEqual(t, nonce1, nonce2, "nonce 不得跨请求复用")
		assert.NotContains(t, nonce1, "-")

		csp := w1.Header().Get("Content-Security-Policy")
		assert.Contains(t, csp, "'nonce-"+nonce1+"'")
		assert.Contains(t, csp, "default-src 'self'")
		assert.Contains(t, csp, "'strict-dynamic'")
		assert.Contains(t, csp, "https://www.googletagmanager.com")

		assert.Equal(t, nonce1, w1.Body.String(), "处理器应能通过上下文取到 nonce")
	})

	t.Run("常规路径禁止被嵌入", func(t *testing.T) {
		router := setupSecurityRouter()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/about", nil))

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	})

	t.Run("pdfs路径放宽为同源嵌入", func(t *testing.T) {
		router := setupSecurityRouter()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pdfs/brochure.pdf", nil))

		assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
		assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'self'")
	})

	t.Run("固定安全头齐全", func(t *testing.T) {
		router := setupSecurityRouter()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
		assert.Equal(t, "require-trusted-types-for 'script'", w.Header().Get("Content-Security-Policy-Report-Only"))
		assert.NotEmpty(t, w.Header().Get("Permissions-Policy"))
	})

	t.Run("hl查询参数写入一年期语言Cookie", func(t *testing.T) {
		router := setupSecurityRouter()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?hl=ru", nil))

		cookies := w.Result().Cookies()
		var found *http.Cookie
		for _, ck := range cookies {
			if ck.Name == LocaleCookieName {
				found = ck
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, "ru", found.Value)
		assert.Equal(t, localeCookieMaxAge, found.MaxAge)
		assert.Equal(t, http.SameSiteLaxMode, found.SameSite)
		assert.False(t, found.HttpOnly)
	})

	t.Run("无hl参数不写Cookie", func(t *testing.T) {
		router := setupSecurityRouter()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Empty(t, w.Result().Cookies())
	})
}
