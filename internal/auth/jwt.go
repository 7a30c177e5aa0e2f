package auth

import (
	"fmt"
	"time"

	"backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims 会话令牌声明：管理员身份与可选的第三方 API 令牌。
type SessionClaims struct {
	UserID      string `json:"uid"`
	Login       string `json:"login"` // 规范化小写身份，用于白名单判定
	AccessToken string `json:"access_token,omitempty"`
	jwt.RegisteredClaims
}

// SessionService 无状态会话令牌服务。
// 令牌在 MaxAge 后过期；签发时间早于 UpdateAge 的令牌会被静默换发。
type SessionService struct {
	secret    []byte
	issuer    string
	maxAge    time.Duration
	updateAge time.Duration
	now       func() time.Time
}

// NewSessionService 创建会话令牌服务
func NewSessionService(cfg config.SessionConfig) *SessionService {
	return &SessionService{
		secret:    []byte(cfg.Secret),
		issuer:    "alxtroy-admin",
		maxAge:    time.Duration(cfg.MaxAge) * time.Second,
		updateAge: time.Duration(cfg.UpdateAge) * time.Second,
		now:       time.Now,
	}
}

// SetNowFunc 替换时间源，仅供测试使用。
func (s *SessionService) SetNowFunc(now func() time.Time) {
	s.now = now
}

// Issue 签发会话令牌
func (s *SessionService) Issue(userID, login, accessToken string) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("会话密钥未配置")
	}

	now := s.now()
	claims := &SessionClaims{
		UserID:      userID,
		Login:       login,
		AccessToken: accessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("签发会话令牌失败: %w", err)
	}
	return signed, nil
}

// Validate 解析并校验会话令牌，过期或无效返回错误。
func (s *SessionService) Validate(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非预期的签名算法: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("令牌校验失败: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("无效的会话令牌")
	}
	return claims, nil
}

// NeedsRefresh 判断令牌是否已过刷新间隔
func (s *SessionService) NeedsRefresh(claims *SessionClaims) bool {
	if claims.IssuedAt == nil {
		return true
	}
	return s.now().Sub(claims.IssuedAt.Time) >= s.updateAge
}

// Refresh 以相同身份换发新令牌（滑动刷新，整体有效期仍受 MaxAge 约束）
func (s *SessionService) Refresh(claims *SessionClaims) (string, error) {
	return s.Issue(claims.UserID, claims.Login, claims.AccessToken)
}

// MaxAgeSeconds 会话最长有效期（秒），用于 Cookie Max-Age。
func (s *SessionService) MaxAgeSeconds() int {
	return int(s.maxAge / time.Second)
}
