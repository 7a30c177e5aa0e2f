package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"backend/internal/audit"
	"backend/internal/config"
	"backend/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ProviderCredentials 本地凭证提供商标识
const ProviderCredentials = "credentials"

// ProviderGitHub GitHub OAuth 提供商标识
const ProviderGitHub = "github"

// SignInContext 一次登录尝试的上下文：提供商与原始档案字段。
// OAuth 档案的可选字段以空字符串表示缺失。
type SignInContext struct {
	Provider          string
	ProfileLogin      string // 提供商档案中的 login
	ProviderAccountID string // 提供商账号 ID
	Email             string
	DisplayName       string
}

// Policy 后台准入策略：白名单、两步验证与仓库协作者校验的组合。
// 每个判定分支恰好写入一条审计记录；所有模糊或出错情况一律拒绝。
type Policy struct {
	cfg      config.AdminConfig
	allow    map[string]struct{}
	verifier CollaboratorVerifier
	audit    audit.Recorder
}

// NewPolicy 创建准入策略
func NewPolicy(cfg config.AdminConfig, verifier CollaboratorVerifier, recorder audit.Recorder) *Policy {
	allow := make(map[string]struct{})
	for _, u := range cfg.AuthorizedUsers() {
		allow[u] = struct{}{}
	}
	return &Policy{
		cfg:      cfg,
		allow:    allow,
		verifier: verifier,
		audit:    recorder,
	}
}

// NormalizeUsername 从登录上下文派生规范化用户名：
// 依次取档案 login、提供商账号 ID、邮箱本地部分，统一小写；全部缺失时为空串。
func NormalizeUsername(sc SignInContext) string {
	if sc.ProfileLogin != "" {
		return strings.ToLower(sc.ProfileLogin)
	}
	if sc.ProviderAccountID != "" {
		return strings.ToLower(sc.ProviderAccountID)
	}
	if sc.Email != "" {
		local, _, _ := strings.Cut(sc.Email, "@")
		return strings.ToLower(local)
	}
	return ""
}

// Authorize 判定该登录上下文是否允许进入后台。
// 检查按序短路，任一环节内的 panic 在此边界恢复并按拒绝处理，
// 不会传播到请求处理器。
func (p *Policy) Authorize(ctx context.Context, sc SignInContext) (granted bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("授权流程异常", zap.Any("panic", r))
			p.audit.Record(audit.Entry{
				Action:   audit.ActionUnauthorizedLogin,
				UserID:   firstNonEmpty(NormalizeUsername(sc), sc.Email, "unknown"),
				Resource: audit.ResourceAdminPanel,
				Status:   audit.StatusFailure,
				Details:  map[string]any{"provider": sc.Provider, "reason": "internal_error"},
			})
			granted = false
		}
	}()

	// 凭证提供商在 VerifyCredentials 中已完成校验
	if sc.Provider == ProviderCredentials {
		return true
	}

	username := NormalizeUsername(sc)

	if username == "" || !p.isAuthorized(username) {
		p.audit.Record(audit.Entry{
			Action:   audit.ActionUnauthorizedLogin,
			UserID:   firstNonEmpty(username, sc.Email, "unknown"),
			Resource: audit.ResourceAdminPanel,
			Status:   audit.StatusFailure,
			Details:  map[string]any{"provider": sc.Provider},
		})
		return false
	}

	if p.cfg.Security.RequireTwoFactor {
		if !p.checkTwoFactor(username, sc.Provider) {
			return false
		}
	}

	if !p.verifier.VerifyUserAccess(ctx, username) {
		p.audit.Record(audit.Entry{
			Action:   audit.ActionInsufficientPermissions,
			UserID:   username,
			Resource: audit.ResourceAdminPanel,
			Status:   audit.StatusFailure,
			Details:  map[string]any{"provider": sc.Provider, "reason": "missing_repository_access"},
		})
		return false
	}

	p.audit.Record(audit.Entry{
		Action:   audit.ActionAdminLogin,
		UserID:   username,
		Resource: audit.ResourceAdminPanel,
		Status:   audit.StatusSuccess,
		Details:  map[string]any{"provider": sc.Provider, "name": sc.DisplayName},
	})
	return true
}

// checkTwoFactor 两步验证判定。
// 明确关闭 2FA 的用户一律拒绝；状态无法确认时按
// two_factor_on_unknown 配置处理（allow: 记录后放行；deny: 拒绝）。
func (p *Policy) checkTwoFactor(username, provider string) bool {
	switch p.verifier.VerifyUser2FA(username) {
	case TwoFactorDisabled:
		p.audit.Record(audit.Entry{
			Action:   audit.ActionLoginWithout2FA,
			UserID:   username,
			Resource: audit.ResourceAdminPanel,
			Status:   audit.StatusFailure,
			Details:  map[string]any{"provider": provider},
		})
		return false

	case TwoFactorUnknown:
		if p.cfg.Security.TwoFactorOnUnknown == "deny" {
			p.audit.Record(audit.Entry{
				Action:   audit.ActionLoginWithout2FA,
				UserID:   username,
				Resource: audit.ResourceAdminPanel,
				Status:   audit.StatusFailure,
				Details:  map[string]any{"provider": provider, "reason": "2fa_status_unknown"},
			})
			return false
		}
		p.audit.Record(audit.Entry{
			Action:   audit.ActionTwoFactorUnconfirmed,
			UserID:   username,
			Resource: audit.ResourceAdminPanel,
			Status:   audit.StatusSuccess,
			Details:  map[string]any{"provider": provider},
		})
		return true

	default: // TwoFactorEnabled
		return true
	}
}

// VerifyCredentials 校验本地管理员凭证。
// 优先使用 bcrypt 哈希，未配置哈希时退化为常数时间明文比较。
// 成功与失败均写入审计。
func (p *Policy) VerifyCredentials(username, password string) bool {
	if username == "" || password == "" {
		return false
	}
	if p.cfg.Username == "" || (p.cfg.Password == "" && p.cfg.PasswordHash == "") {
		logger.Error("管理员凭证未配置，凭证登录不可用")
		return false
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(p.cfg.Username)) == 1

	var passwordOK bool
	if p.cfg.PasswordHash != "" {
		passwordOK = bcrypt.CompareHashAndPassword([]byte(p.cfg.PasswordHash), []byte(password)) == nil
	} else {
		passwordOK = subtle.ConstantTimeCompare([]byte(password), []byte(p.cfg.Password)) == 1
	}

	if usernameOK && passwordOK {
		p.audit.Record(audit.Entry{
			Action:   audit.ActionAdminLogin,
			UserID:   username,
			Resource: audit.ResourceAdminPanel,
			Status:   audit.StatusSuccess,
			Details:  map[string]any{"provider": ProviderCredentials},
		})
		return true
	}

	p.audit.Record(audit.Entry{
		Action:   audit.ActionFailedLogin,
		UserID:   username,
		Resource: audit.ResourceAdminPanel,
		Status:   audit.StatusFailure,
		Details:  map[string]any{"provider": ProviderCredentials, "reason": "invalid_credentials"},
	})
	return false
}

// IsAuthorizedUser 判断规范化用户名是否在白名单内，供看板准入复用。
func (p *Policy) IsAuthorizedUser(username string) bool {
	return p.isAuthorized(strings.ToLower(username))
}

func (p *Policy) isAuthorized(username string) bool {
	_, ok := p.allow[username]
	return ok
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
