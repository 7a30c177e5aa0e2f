package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func githubTestConfig(baseURL string) config.GitHubConfig {
	return config.GitHubConfig{
		Repo:       "acme/site",
		Token:      "ghp_test",
		APIBaseURL: baseURL,
		APIVersion: "2022-11-28",
		UserAgent:  "test-agent",
	}
}

func TestGitHubService_VerifyUserAccess(t *testing.T) {
	t.Run("204视为协作者", func(t *testing.T) {
		var gotPath, gotAuth, gotAgent string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			gotAgent = r.Header.Get("User-Agent")
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		svc := NewGitHubService(githubTestConfig(server.URL))
		assert.True(t, svc.VerifyUserAccess(context.Background(), "Alice"))
		assert.Equal(t, "/repos/acme/site/collaborators/alice", gotPath, "用户名应规范化为小写")
		assert.Equal(t, "token ghp_test", gotAuth)
		assert.Equal(t, "test-agent", gotAgent)
	})

	t.Run("404视为非协作者", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		svc := NewGitHubService(githubTestConfig(server.URL))
		assert.False(t, svc.VerifyUserAccess(context.Background(), "alice"))
	})

	t.Run("非预期状态码按无权限处理", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		svc := NewGitHubService(githubTestConfig(server.URL))
		assert.False(t, svc.VerifyUserAccess(context.Background(), "alice"))
	})

	t.Run("网络错误按无权限处理", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // 立刻关闭，制造连接失败

		svc := NewGitHubService(githubTestConfig(server.URL))
		assert.False(t, svc.VerifyUserAccess(context.Background(), "alice"))
	})

	t.Run("仓库配置缺少owner时拒绝", func(t *testing.T) {
		cfg := githubTestConfig("http://unused")
		cfg.Repo = "just-a-repo"

		svc := NewGitHubService(cfg)
		assert.False(t, svc.VerifyUserAccess(context.Background(), "alice"))
	})
}

func TestGitHubService_VerifyUser2FA(t *testing.T) {
	svc := NewGitHubService(githubTestConfig("http://unused"))
	require.Equal(t, TwoFactorUnknown, svc.VerifyUser2FA("anyone"))
}
