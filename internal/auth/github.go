package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"backend/internal/config"
	"backend/internal/logger"

	"go.uber.org/zap"
)

// TwoFactorStatus 两步验证状态
type TwoFactorStatus int

const (
	// TwoFactorUnknown 无法确认（GitHub 未开放 2FA 状态查询 API）
	TwoFactorUnknown TwoFactorStatus = iota
	// TwoFactorEnabled 已确认开启
	TwoFactorEnabled
	// TwoFactorDisabled 已确认未开启
	TwoFactorDisabled
)

// CollaboratorVerifier 协作者校验能力，由身份提供商实现。
type CollaboratorVerifier interface {
	// VerifyUserAccess 确认用户是否拥有目标仓库的协作者权限。
	// 任何网络错误或非预期响应均按无权限处理（fail-closed）。
	VerifyUserAccess(ctx context.Context, username string) bool
	// VerifyUser2FA 查询用户两步验证状态。
	VerifyUser2FA(username string) TwoFactorStatus
}

// GitHubService GitHub 仓库 API 客户端，用于后台准入的协作者校验。
type GitHubService struct {
	cfg        config.GitHubConfig
	httpClient *http.Client
}

// NewGitHubService 创建 GitHub 服务，外呼强制 10 秒超时。
func NewGitHubService(cfg config.GitHubConfig) *GitHubService {
	return &GitHubService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifyUser2FA GitHub 未通过公开 API 暴露 2FA 状态，
// 固定返回 Unknown，由上层策略决定放行或拒绝。
func (s *GitHubService) VerifyUser2FA(_ string) TwoFactorStatus {
	return TwoFactorUnknown
}

// VerifyUserAccess 调用协作者 API：204 视为有权限，404 视为无权限，
// 其余状态码与网络错误记告警并按无权限处理。
func (s *GitHubService) VerifyUserAccess(ctx context.Context, username string) bool {
	ok, err := s.verifyCollaborator(ctx, username)
	if err != nil {
		logger.Error("GitHub 协作者校验失败",
			zap.String("username", username),
			zap.Error(err),
		)
		return false
	}
	return ok
}

func (s *GitHubService) verifyCollaborator(ctx context.Context, username string) (bool, error) {
	owner, repo, err := s.repositoryTuple()
	if err != nil {
		return false, err
	}

	normalized := strings.ToLower(username)
	url := fmt.Sprintf("%s/repos/%s/%s/collaborators/%s", s.cfg.APIBaseURL, owner, repo, normalized)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Authorization", "token "+s.cfg.Token)
	req.Header.Set("X-GitHub-Api-Version", s.cfg.APIVersion)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("请求协作者 API 失败: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		logger.Warn("协作者 API 返回非预期状态码",
			zap.String("username", normalized),
			zap.Int("status", resp.StatusCode),
		)
		return false, nil
	}
}

// repositoryTuple 解析 owner/repo 配置
func (s *GitHubService) repositoryTuple() (string, string, error) {
	parts := strings.SplitN(s.cfg.Repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("无效的仓库配置: %q", s.cfg.Repo)
	}
	return parts[0], parts[1], nil
}
