package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookieName 会话 Cookie 名称
const SessionCookieName = "admin_session"

// UserContextKey 用户上下文键
const UserContextKey = "admin_user"

// UserContext 已认证管理员的请求上下文
type UserContext struct {
	UserID string
	Login  string
}

// RequireAdmin 后台会话认证中间件。
// 从会话 Cookie 解析令牌；缺失或无效时，API 请求返回 401，
// 页面请求重定向到登录页。签发时间超过刷新间隔的令牌会被静默换发。
func RequireAdmin(sessions *SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			rejectUnauthenticated(c)
			return
		}

		claims, err := sessions.Validate(token)
		if err != nil {
			rejectUnauthenticated(c)
			return
		}

		if sessions.NeedsRefresh(claims) {
			if refreshed, err := sessions.Refresh(claims); err == nil {
				SetSessionCookie(c, sessions, refreshed)
			}
		}

		c.Set(UserContextKey, &UserContext{
			UserID: claims.UserID,
			Login:  claims.Login,
		})

		c.Next()
	}
}

// GetUserContext 从请求上下文获取已认证管理员
func GetUserContext(c *gin.Context) (*UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	userCtx, ok := value.(*UserContext)
	return userCtx, ok
}

// SetSessionCookie 写入会话 Cookie（HttpOnly + SameSite=Lax）
func SetSessionCookie(c *gin.Context, sessions *SessionService, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, sessions.MaxAgeSeconds(), "/", "", c.Request.TLS != nil, true)
}

// ClearSessionCookie 清除会话 Cookie
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", c.Request.TLS != nil, true)
}

// rejectUnauthenticated API 请求返回 401，页面请求重定向到登录页。
func rejectUnauthenticated(c *gin.Context) {
	if wantsJSON(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "缺少有效的管理会话",
		})
		c.Abort()
		return
	}
	c.Redirect(http.StatusFound, "/admin/login")
	c.Abort()
}

func wantsJSON(c *gin.Context) bool {
	if len(c.Request.URL.Path) >= 5 && c.Request.URL.Path[:5] == "/api/" {
		return true
	}
	return c.GetHeader("Accept") == "application/json"
}
