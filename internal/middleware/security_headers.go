package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NonceKey 响应 nonce 上下文键
const NonceKey = "csp_nonce"

// HeaderNonce 传递给渲染层的 nonce 响应头
const HeaderNonce = "X-Nonce"

// LocaleCookieName 语言偏好 Cookie 名称
const LocaleCookieName = "hl"

const localeCookieMaxAge = 60 * 60 * 24 * 365 // 1 年

// 允许加载的第三方源
const (
	originGTM      = "https://www.googletagmanager.com"
	originGA       = "https://www.google-analytics.com"
	originMaps     = "https://www.google.com https://maps.google.com"
	originMapsAPIs = "https://maps.googleapis.com https://maps.gstatic.com"
)

// SecurityHeaders 安全响应头中间件。
// 每个请求生成一次性 nonce 并通过 X-Nonce 头暴露给渲染层，
// 按固定模板构建 CSP；/pdfs/ 前缀放宽 frame 限制以便同源内嵌文档；
// ?hl= 查询参数写入一年有效的语言偏好 Cookie。无跨请求状态。
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		nonce := generateNonce()

		c.Set(NonceKey, nonce)
		c.Header(HeaderNonce, nonce)

		if hl := c.Query(LocaleCookieName); hl != "" {
			// 非 HttpOnly：前端脚本需要读取语言偏好
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(LocaleCookieName, hl, localeCookieMaxAge, "/", "", false, false)
		}

		isPdf := strings.HasPrefix(c.Request.URL.Path, "/pdfs/")

		c.Header("Content-Security-Policy", buildCSP(nonce, isPdf))
		c.Header("Content-Security-Policy-Report-Only", "require-trusted-types-for 'script'")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("X-Content-Type-Options", "nosniff")
		if isPdf {
			c.Header("X-Frame-Options", "SAMEORIGIN")
		} else {
			c.Header("X-Frame-Options", "DENY")
		}
		c.Header("Permissions-Policy", "geolocation=(), camera=(), microphone=(), interest-cohort=()")

		c.Next()
	}
}

// GetNonce 从 Gin 上下文获取本次请求的 nonce
func GetNonce(c *gin.Context) string {
	return c.GetString(NonceKey)
}

// generateNonce UUID 强度随机值，去掉连字符便于嵌入 CSP。
func generateNonce() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// buildCSP 按固定模板构建 CSP 指令串
func buildCSP(nonce string, isPdf bool) string {
	frameAncestors := "'none'"
	if isPdf {
		frameAncestors = "'self'"
	}

	directives := []string{
		"default-src 'self'",
		"base-uri 'self'",
		"frame-ancestors " + frameAncestors,
		fmt.Sprintf("script-src 'self' 'nonce-%s' 'strict-dynamic' %s %s %s", nonce, originGTM, originGA, originMapsAPIs),
		"connect-src 'self' " + originGA,
		"img-src 'self' data: " + originGA + " " + originMapsAPIs,
		"style-src 'self' 'unsafe-inline'",
		"font-src 'self' data:",
		"frame-src 'self' " + originMaps,
	}
	return strings.Join(directives, "; ")
}
