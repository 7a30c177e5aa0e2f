package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiterConfig 固定窗口限流配置
type RateLimiterConfig struct {
	MaxRequests     int           // 窗口内最大请求数
	Window          time.Duration // 窗口长度
	CleanupInterval time.Duration // 过期窗口清理间隔
}

// DefaultRateLimiterConfig 默认配置：每分钟 10 次
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		MaxRequests:     10,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// clientWindow 单个客户端的计数窗口
type clientWindow struct {
	count       int
	windowStart time.Time
}

// RateLimiter 按客户端键的固定窗口限流器。
// 窗口计数足够应付低频的表单提交场景，不需要令牌桶的平滑特性。
type RateLimiter struct {
	config  *RateLimiterConfig
	clients map[string]*clientWindow
	mu      sync.Mutex
	stopCh  chan struct{}
	now     func() time.Time
}

// NewRateLimiter 创建限流器
func NewRateLimiter(config *RateLimiterConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimiterConfig()
	}

	rl := &RateLimiter{
		config:  config,
		clients: make(map[string]*clientWindow),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	go rl.cleanup()

	return rl
}

// SetNowFunc 替换时间源，仅供测试使用。
func (rl *RateLimiter) SetNowFunc(now func() time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.now = now
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	state, exists := rl.clients[key]

	if !exists || now.Sub(state.windowStart) >= rl.config.Window {
		rl.clients[key] = &clientWindow{count: 1, windowStart: now}
		return true
	}

	if state.count >= rl.config.MaxRequests {
		return false
	}

	state.count++
	return true
}

// cleanup 定期清理过期窗口
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, state := range rl.clients {
				if now.Sub(state.windowStart) >= rl.config.Window {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

// Stop 停止限流器
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// RateLimitByIP 按客户端 IP 限流中间件
func RateLimitByIP(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "请求过于频繁，请稍后重试",
				"code":  "RATE_LIMIT_EXCEEDED",
			})
			return
		}

		c.Next()
	}
}
