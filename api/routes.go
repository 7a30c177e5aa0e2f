package api

import (
	"backend/internal/auth"
	middlewarepkg "backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// RegisterRoutes 注册全部路由
func RegisterRoutes(router *gin.Engine, db *gorm.DB, container *AppContainer, h *Handlers) {
	// 系统探针与指标
	router.GET("/health", HealthCheck(db))
	router.GET("/ready", ReadinessCheck(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 站点元数据
	router.GET("/sitemap.xml", h.Content.Sitemap)
	router.GET("/feed.json", h.Content.Feed)

	api := router.Group("/api")
	{
		// 认证
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/logout", h.Auth.Logout)
			authGroup.GET("/session", h.Auth.Session)
			authGroup.GET("/error", h.Auth.ErrorMessage)
			authGroup.GET("/oauth/github", h.Auth.OAuthStart)
			authGroup.GET("/callback/github", h.Auth.OAuthCallback)
		}

		// 联系表单：公开路由，但按来源 IP 限流
		api.POST("/contact", middlewarepkg.RateLimitByIP(container.ContactLimiter), h.Contact.Submit)

		// 公开内容
		api.GET("/destinations", h.Content.ListDestinations)
		api.GET("/destinations/:slug", h.Content.GetDestination)
		api.GET("/services", h.Content.ListServices)
		api.GET("/services/:slug", h.Content.GetService)
		api.GET("/events", h.Content.ListEvents)
		api.GET("/blog", h.Content.ListPosts)
		api.GET("/blog/:slug", h.Content.GetPost)

		// 后台路由：全部要求有效的管理员会话
		admin := api.Group("/admin", auth.RequireAdmin(container.SessionService))
		{
			admin.GET("/dashboard", h.Dashboard.GetDashboard)
			admin.GET("/enquiries", h.Contact.RecentEnquiries)

			auditGroup := admin.Group("/audit")
			{
				auditGroup.GET("/logs", h.Audit.QueryLogs)
				auditGroup.GET("/stats", h.Audit.GetStats)
				auditGroup.GET("/recent", h.Audit.GetRecentActivity)
				auditGroup.GET("/users/:userID", h.Audit.GetUserLogs)
				auditGroup.GET("/export", h.Audit.ExportLogs)
			}
		}
	}
}
