package auth

import (
	"context"
	"testing"
	"time"

	"backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionTestConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:    "test-secret-at-least-32-bytes-long!",
		MaxAge:    7200,
		UpdateAge: 300,
	}
}

func TestSessionService_IssueAndValidate(t *testing.T) {
	t.Run("签发的令牌可校验并还原声明", func(t *testing.T) {
		svc := NewSessionService(sessionTestConfig())

		token, err := svc.Issue("42", "alice", "gho_token")
		require.NoError(t, err)

		claims, err := svc.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "42", claims.UserID)
		assert.Equal(t, "alice", claims.Login)
		assert.Equal(t, "gho_token", claims.AccessToken)
	})

	t.Run("密钥未配置时拒绝签发", func(t *testing.T) {
		svc := NewSessionService(config.SessionConfig{MaxAge: 7200, UpdateAge: 300})
		_, err := svc.Issue("42", "alice", "")
		assert.Error(t, err)
	})

	t.Run("篡改的令牌校验失败", func(t *testing.T) {
		svc := NewSessionService(sessionTestConfig())
		token, err := svc.Issue("42", "alice", "")
		require.NoError(t, err)

		_, err = svc.Validate(token + "x")
		assert.Error(t, err)
	})

	t.Run("其他密钥签发的令牌校验失败", func(t *testing.T) {
		svc := NewSessionService(sessionTestConfig())
		other := NewSessionService(config.SessionConfig{Secret: "another-secret-value", MaxAge: 7200, UpdateAge: 300})

		token, err := other.Issue("42", "alice", "")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.Error(t, err)
	})

	t.Run("超过最长有效期的令牌过期", func(t *testing.T) {
		svc := NewSessionService(sessionTestConfig())
		token, err := svc.Issue("42", "alice", "")
		require.NoError(t, err)

		svc.SetNowFunc(func() time.Time { return time.Now().Add(3 * time.Hour) })
		_, err = svc.Validate(token)
		assert.Error(t, err)
	})
}

func TestSessionService_NeedsRefresh(t *testing.T) {
	t.Run("刚签发的令牌不需要刷新", func(t *testing.T) {
		svc := NewSessionService(sessionTestConfig())
		token, err := svc.Issue("42", "alice", "")
		require.NoError(t, err)

		claims, err := svc.Validate(token)
		require.NoError(t, err)
		assert.False(t, svc.NeedsRefresh(claims))
	})

	t.Run("超过刷新间隔后需要刷新", func(t *testing.T) {
		svc := NewSessionService(sessionTestConfig())
		token, err := svc.Issue("42", "alice", "")
		require.NoError(t, err)

		claims, err := svc.Validate(token)
		require.NoError(t, err)

		svc.SetNowFunc(func() time.Time { return time.Now().Add(10 * time.Minute) })
		assert.True(t, svc.NeedsRefresh(claims))
	})

	t.Run("换发保留身份声明", func(t *testing.T) {
		svc := NewSessionService(sessionTestConfig())
		token, err := svc.Issue("42", "alice", "gho_token")
		require.NoError(t, err)

		claims, err := svc.Validate(token)
		require.NoError(t, err)

		refreshed, err := svc.Refresh(claims)
		require.NoError(t, err)

		fresh, err := svc.Validate(refreshed)
		require.NoError(t, err)
		assert.Equal(t, "42", fresh.UserID)
		assert.Equal(t, "alice", fresh.Login)
		assert.Equal(t, "gho_token", fresh.AccessToken)
	})
}

func TestMemoryStateStore(t *testing.T) {
	t.Run("state只能消费一次", func(t *testing.T) {
		store := NewMemoryStateStore(10 * time.Minute)
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, "abc", 5*time.Minute))
		require.NoError(t, store.Consume(ctx, "abc"))
		assert.ErrorIs(t, store.Consume(ctx, "abc"), ErrStateNotFound)
	})

	t.Run("过期的state不可消费", func(t *testing.T) {
		store := NewMemoryStateStore(10 * time.Minute)
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, "abc", -time.Second))
		assert.ErrorIs(t, store.Consume(ctx, "abc"), ErrStateNotFound)
	})

	t.Run("未知state返回未找到", func(t *testing.T) {
		store := NewMemoryStateStore(10 * time.Minute)
		assert.ErrorIs(t, store.Consume(context.Background(), "nope"), ErrStateNotFound)
	})
}
