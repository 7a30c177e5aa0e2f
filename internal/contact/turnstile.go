package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTurnstileEndpoint Cloudflare Turnstile 校验端点
const DefaultTurnstileEndpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// ErrVerificationFailed 人机校验未通过
var ErrVerificationFailed = errors.New("contact: turnstile verification failed")

// TurnstileVerifier 人机校验能力
type TurnstileVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// TurnstileClient Cloudflare Turnstile 客户端
type TurnstileClient struct {
	secret     string
	endpoint   string
	httpClient *http.Client
}

// NewTurnstileClient 创建 Turnstile 客户端
func NewTurnstileClient(secret string) *TurnstileClient {
	return &TurnstileClient{
		secret:     secret,
		endpoint:   DefaultTurnstileEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetEndpoint 替换校验端点，仅供测试使用。
func (c *TurnstileClient) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// Verify 校验 Turnstile 令牌。
// 校验未通过返回 ErrVerificationFailed，网络或配置问题返回其他错误。
func (c *TurnstileClient) Verify(ctx context.Context, token, remoteIP string) error {
	if c.secret == "" {
		return fmt.Errorf("turnstile secret 未配置")
	}

	params := url.Values{}
	params.Set("secret", c.secret)
	params.Set("response", token)
	if remoteIP != "" && remoteIP != "unknown" {
		params.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("构造校验请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求校验端点失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("校验端点返回 HTTP %d", resp.StatusCode)
	}

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("解析校验响应失败: %w", err)
	}

	if !result.Success {
		return ErrVerificationFailed
	}
	return nil
}
