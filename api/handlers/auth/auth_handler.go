package auth

import (
	"net/http"
	"strings"
	"time"

	response "backend/api/handlers/common"
	auditpkg "backend/internal/audit"
	authpkg "backend/internal/auth"
	"backend/internal/logger"
	"backend/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const stateTTL = 10 * time.Minute

// AuthHandler 后台登录处理器：本地凭证与 GitHub OAuth 两条路径。
type AuthHandler struct {
	policy   *authpkg.Policy
	sessions *authpkg.SessionService
	oauth    *authpkg.OAuth2Service
	states   authpkg.StateStore
	audit    auditpkg.Recorder
}

// NewAuthHandler 创建登录处理器
func NewAuthHandler(
	policy *authpkg.Policy,
	sessions *authpkg.SessionService,
	oauth *authpkg.OAuth2Service,
	states authpkg.StateStore,
	recorder auditpkg.Recorder,
) *AuthHandler {
	return &AuthHandler{
		policy:   policy,
		sessions: sessions,
		oauth:    oauth,
		states:   states,
		audit:    recorder,
	}
}

// LoginRequest 凭证登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionInfo 会话信息
type SessionInfo struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
}

// Login 凭证登录
// @Summary 管理员凭证登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录凭证"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "参数错误: " + err.Error()})
		return
	}

	if !h.policy.VerifyCredentials(req.Username, req.Password) {
		metrics.AdminLoginTotal.WithLabelValues(authpkg.ProviderCredentials, "failure").Inc()
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Success: false,
			Code:    CodeCredentialsError,
			Message: MessageForCode(CodeCredentialsError),
		})
		return
	}

	login := strings.ToLower(req.Username)
	token, err := h.sessions.Issue(login, login, "")
	if err != nil {
		logger.Error("签发会话失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Success: false,
			Code:    CodeConfiguration,
			Message: MessageForCode(CodeConfiguration),
		})
		return
	}

	metrics.AdminLoginTotal.WithLabelValues(authpkg.ProviderCredentials, "success").Inc()
	authpkg.SetSessionCookie(c, h.sessions, token)
	c.JSON(http.StatusOK, response.APIResponse{
		Success: true,
		Data:    SessionInfo{UserID: login, Login: login},
	})
}

// OAuthStart 跳转到 GitHub 授权页
// @Summary 发起 GitHub OAuth 登录
// @Tags Auth
// @Success 302
// @Failure 503 {object} response.ErrorResponse
// @Router /api/auth/oauth/github [get]
func (h *AuthHandler) OAuthStart(c *gin.Context) {
	if !h.oauth.Enabled() {
		c.JSON(http.StatusServiceUnavailable, response.ErrorResponse{
			Success: false,
			Code:    CodeConfiguration,
			Message: MessageForCode(CodeConfiguration),
		})
		return
	}

	state := uuid.New().String()
	if err := h.states.Save(c.Request.Context(), state, stateTTL); err != nil {
		logger.Error("保存 OAuth state 失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Success: false,
			Code:    CodeConfiguration,
			Message: MessageForCode(CodeConfiguration),
		})
		return
	}

	c.Redirect(http.StatusFound, h.oauth.GetAuthURL(state))
}

// OAuthCallback GitHub 授权回调。
// 任何失败都重定向回登录页并附上笼统错误码，细节只进审计日志。
// @Summary GitHub OAuth 回调
// @Tags Auth
// @Success 302
// @Router /api/auth/callback/github [get]
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	ctx := c.Request.Context()

	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		h.rejectOAuth(c, "missing state or code")
		return
	}

	if err := h.states.Consume(ctx, state); err != nil {
		h.rejectOAuth(c, "state 无效或已过期")
		return
	}

	token, err := h.oauth.ExchangeCode(ctx, code)
	if err != nil {
		logger.Warn("交换授权码失败", zap.Error(err))
		h.rejectOAuth(c, "exchange failed")
		return
	}

	info, err := h.oauth.GetUserInfo(ctx, token)
	if err != nil {
		logger.Warn("获取用户信息失败", zap.Error(err))
		h.rejectOAuth(c, "userinfo failed")
		return
	}

	sc := authpkg.SignInContext{
		Provider:          authpkg.ProviderGitHub,
		ProfileLogin:      info.Login,
		ProviderAccountID: info.ID,
		Email:             info.Email,
		DisplayName:       info.Name,
	}

	if !h.policy.Authorize(ctx, sc) {
		metrics.AdminLoginTotal.WithLabelValues(authpkg.ProviderGitHub, "failure").Inc()
		c.Redirect(http.StatusFound, "/admin/login?error="+CodeAccessDenied)
		return
	}

	login := authpkg.NormalizeUsername(sc)
	sessionToken, err := h.sessions.Issue(info.ID, login, token.AccessToken)
	if err != nil {
		logger.Error("签发会话失败", zap.Error(err))
		c.Redirect(http.StatusFound, "/admin/login?error="+CodeConfiguration)
		return
	}

	metrics.AdminLoginTotal.WithLabelValues(authpkg.ProviderGitHub, "success").Inc()
	authpkg.SetSessionCookie(c, h.sessions, sessionToken)
	c.Redirect(http.StatusFound, "/admin")
}

// rejectOAuth OAuth 流程失败的统一出口
func (h *AuthHandler) rejectOAuth(c *gin.Context, reason string) {
	logger.Warn("OAuth 登录失败", zap.String("reason", reason))
	metrics.AdminLoginTotal.WithLabelValues(authpkg.ProviderGitHub, "failure").Inc()
	c.Redirect(http.StatusFound, "/admin/login?error="+CodeAccessDenied)
}

// Logout 退出登录
// @Summary 退出登录
// @Tags Auth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := "unknown"
	if token, err := c.Cookie(authpkg.SessionCookieName); err == nil && token != "" {
		if claims, err := h.sessions.Validate(token); err == nil {
			userID = claims.Login
		}
	}

	h.audit.Record(auditpkg.Entry{
		Action:   auditpkg.ActionAdminLogout,
		UserID:   userID,
		Resource: auditpkg.ResourceAdminPanel,
		Status:   auditpkg.StatusSuccess,
	})

	authpkg.ClearSessionCookie(c)
	c.JSON(http.StatusOK, response.APIResponse{Success: true})
}

// Session 返回当前会话信息，并在需要时静默换发令牌。
// @Summary 当前会话
// @Tags Auth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	token, err := c.Cookie(authpkg.SessionCookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Success: false, Message: "未登录"})
		return
	}

	claims, err := h.sessions.Validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Success: false, Message: "会话已过期"})
		return
	}

	if h.sessions.NeedsRefresh(claims) {
		if refreshed, err := h.sessions.Refresh(claims); err == nil {
			authpkg.SetSessionCookie(c, h.sessions, refreshed)
		}
	}

	c.JSON(http.StatusOK, response.APIResponse{
		Success: true,
		Data:    SessionInfo{UserID: claims.UserID, Login: claims.Login},
	})
}

// ErrorMessage 错误码转提示文案
// @Summary 登录错误提示
// @Tags Auth
// @Produce json
// @Param error query string false "错误码"
// @Success 200 {object} response.APIResponse
// @Router /api/auth/error [get]
func (h *AuthHandler) ErrorMessage(c *gin.Context) {
	code := c.Query("error")
	c.JSON(http.StatusOK, response.APIResponse{
		Success: true,
		Data: gin.H{
			"code":    code,
			"message": MessageForCode(code),
		},
	})
}
