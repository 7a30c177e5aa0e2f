package api

import (
	"time"

	adminHandlers "backend/api/handlers/admin"
	auditHandlers "backend/api/handlers/audit"
	authHandlers "backend/api/handlers/auth"
	contactHandlers "backend/api/handlers/contact"
	contentHandlers "backend/api/handlers/content"

	auditpkg "backend/internal/audit"
	"backend/internal/auth"
	"backend/internal/config"
	"backend/internal/contact"
	"backend/internal/content"
	"backend/internal/infra/queue"
	"backend/internal/mailer"
	middlewarepkg "backend/internal/middleware"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// AppContainer 应用容器，集中管理所有服务依赖
type AppContainer struct {
	// 基础设施
	DB          *gorm.DB
	Config      *config.Config
	RedisClient redis.UniversalClient
	QueueClient queue.Client

	// 认证与审计
	AuditStore     *auditpkg.Store
	GitHubService  *auth.GitHubService
	Policy         *auth.Policy
	SessionService *auth.SessionService
	OAuth2Service  *auth.OAuth2Service
	StateStore     auth.StateStore

	// 业务服务
	Mailer         mailer.Mailer
	ContactService *contact.Service
	ContentService *content.Service

	// 联系表单限流器
	ContactLimiter *middlewarepkg.RateLimiter
}

// NewAppContainer 按依赖顺序组装全部服务。
// redisClient 允许为 nil：OAuth2 state 会退回内存实现。
func NewAppContainer(db *gorm.DB, cfg *config.Config, redisClient redis.UniversalClient) *AppContainer {
	auditStore := auditpkg.NewStore(cfg.Admin.Audit)
	githubService := auth.NewGitHubService(cfg.Admin.GitHub)
	policy := auth.NewPolicy(cfg.Admin, githubService, auditStore)
	sessionService := auth.NewSessionService(cfg.Admin.Session)
	oauth2Service := auth.NewOAuth2Service(cfg.Admin.GitHub)

	var stateStore auth.StateStore
	if redisClient != nil {
		stateStore = auth.NewRedisStateStore(redisClient)
	} else {
		stateStore = auth.NewMemoryStateStore(15 * time.Minute)
	}

	queueClient := queue.NewClient(cfg.Redis)
	smtpMailer := mailer.NewSMTPMailer(cfg.Contact.SMTP)

	verifier := contact.NewTurnstileClient(cfg.Contact.TurnstileSecret)
	contactService := contact.NewService(db, queueClient, verifier)
	contentService := content.NewService(db)

	contactLimiter := middlewarepkg.NewRateLimiter(&middlewarepkg.RateLimiterConfig{
		MaxRequests:     cfg.Contact.RateLimitMax,
		Window:          time.Duration(cfg.Contact.RateLimitWindowMs) * time.Millisecond,
		CleanupInterval: 5 * time.Minute,
	})

	return &AppContainer{
		DB:          db,
		Config:      cfg,
		RedisClient: redisClient,
		QueueClient: queueClient,

		AuditStore:     auditStore,
		GitHubService:  githubService,
		Policy:         policy,
		SessionService: sessionService,
		OAuth2Service:  oauth2Service,
		StateStore:     stateStore,

		Mailer:         smtpMailer,
		ContactService: contactService,
		ContentService: contentService,

		ContactLimiter: contactLimiter,
	}
}

// Close 释放容器持有的资源
func (c *AppContainer) Close() {
	if c.ContactLimiter != nil {
		c.ContactLimiter.Stop()
	}
	if c.QueueClient != nil {
		_ = c.QueueClient.Close()
	}
	if c.RedisClient != nil {
		_ = c.RedisClient.Close()
	}
}

// Handlers 全部 HTTP 处理器
type Handlers struct {
	Auth      *authHandlers.AuthHandler
	Audit     *auditHandlers.AuditHandler
	Dashboard *adminHandlers.DashboardHandler
	Contact   *contactHandlers.ContactHandler
	Content   *contentHandlers.ContentHandler
}

// NewHandlers 基于容器创建处理器
func NewHandlers(c *AppContainer) *Handlers {
	return &Handlers{
		Auth: authHandlers.NewAuthHandler(
			c.Policy, c.SessionService, c.OAuth2Service, c.StateStore, c.AuditStore,
		),
		Audit:     auditHandlers.NewAuditHandler(c.AuditStore),
		Dashboard: adminHandlers.NewDashboardHandler(c.AuditStore, c.Policy, c.AuditStore),
		Contact:   contactHandlers.NewContactHandler(c.ContactService),
		Content:   contentHandlers.NewContentHandler(c.ContentService, c.Config.Site),
	}
}
