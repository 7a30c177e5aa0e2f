package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"backend/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// OAuth2Service GitHub OAuth2 登录服务。
// repo 权限用于后续的仓库协作者校验。
type OAuth2Service struct {
	config *oauth2.Config
}

// OAuth2UserInfo OAuth2 用户信息
type OAuth2UserInfo struct {
	ID      string `json:"id"`      // 提供商用户 ID
	Login   string `json:"login"`   // GitHub 用户名
	Email   string `json:"email"`   // 电子邮件
	Name    string `json:"name"`    // 姓名
	Picture string `json:"picture"` // 头像 URL
}

// NewOAuth2Service 创建 OAuth2 服务
func NewOAuth2Service(cfg config.GitHubConfig) *OAuth2Service {
	return &OAuth2Service{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"read:user", "user:email", "repo"},
			Endpoint:     github.Endpoint,
		},
	}
}

// Enabled 是否已配置 OAuth2 凭据
func (s *OAuth2Service) Enabled() bool {
	return s.config.ClientID != "" && s.config.ClientSecret != ""
}

// GetAuthURL 获取授权 URL
func (s *OAuth2Service) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// ExchangeCode 交换授权码为访问令牌
func (s *OAuth2Service) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("交换授权码失败: %w", err)
	}
	return token, nil
}

// GetUserInfo 获取 GitHub 用户信息
func (s *OAuth2Service) GetUserInfo(ctx context.Context, token *oauth2.Token) (*OAuth2UserInfo, error) {
	client := s.config.Client(ctx, token)

	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, fmt.Errorf("获取 GitHub 用户信息失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var userData struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userData); err != nil {
		return nil, fmt.Errorf("解析用户数据失败: %w", err)
	}

	email := userData.Email
	if email == "" {
		// 公开档案未暴露邮箱时走邮箱端点
		email = s.fetchPrimaryEmail(client)
	}

	name := userData.Name
	if name == "" {
		name = userData.Login
	}

	return &OAuth2UserInfo{
		ID:      fmt.Sprintf("%d", userData.ID),
		Login:   userData.Login,
		Email:   email,
		Name:    name,
		Picture: userData.AvatarURL,
	}, nil
}

// fetchPrimaryEmail 获取主邮箱，失败时返回空串（邮箱仅作为用户名兜底）。
func (s *OAuth2Service) fetchPrimaryEmail(client *http.Client) string {
	resp, err := client.Get("https://api.github.com/user/emails")
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return ""
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email
		}
	}
	if len(emails) > 0 {
		return emails[0].Email
	}
	return ""
}
