package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Contact  ContactConfig  `mapstructure:"contact"`
	Site     SiteConfig     `mapstructure:"site"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // debug, release, test
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// DatabaseConfig 数据库配置
// Driver 为 sqlite 时仅使用 Path，其余字段用于 postgres。
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // sqlite, postgres
	Path            string `mapstructure:"path"`   // sqlite 文件路径
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	AutoMigrate     bool   `mapstructure:"auto_migrate"`      // 是否自动迁移表结构
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 连接模式: standalone(单节点), sentinel(哨兵), cluster(集群)
	Mode string `mapstructure:"mode"`

	// 单节点模式配置
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// 哨兵模式配置
	MasterName       string   `mapstructure:"master_name"`
	SentinelAddrs    []string `mapstructure:"sentinel_addrs"`
	SentinelPassword string   `mapstructure:"sentinel_password"`

	// 集群模式配置
	ClusterAddrs []string `mapstructure:"cluster_addrs"`

	// 通用配置
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, /path/to/log
}

// AdminConfig 管理后台配置：凭证登录、GitHub OAuth、会话与审计策略
type AdminConfig struct {
	Username     string `mapstructure:"username"`      // 凭证登录用户名
	Password     string `mapstructure:"password"`      // 明文口令（仅兜底，优先使用 PasswordHash）
	PasswordHash string `mapstructure:"password_hash"` // bcrypt 哈希

	GitHub   GitHubConfig        `mapstructure:"github"`
	Users    string              `mapstructure:"users"` // 逗号分隔的 GitHub 用户名白名单
	Session  SessionConfig       `mapstructure:"session"`
	Security AdminSecurityConfig `mapstructure:"security"`
	Audit    AuditConfig         `mapstructure:"audit"`
}

// GitHubConfig GitHub OAuth 与 API 访问配置
type GitHubConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Repo         string `mapstructure:"repo"`  // owner/repo，协作者校验目标仓库
	Token        string `mapstructure:"token"` // 仓库 API 访问令牌
	RedirectURL  string `mapstructure:"redirect_url"`
	APIBaseURL   string `mapstructure:"api_base_url"` // 默认 https://api.github.com
	APIVersion   string `mapstructure:"api_version"`  // X-GitHub-Api-Version
	UserAgent    string `mapstructure:"user_agent"`
}

// SessionConfig 会话令牌配置
type SessionConfig struct {
	Secret    string `mapstructure:"secret"`     // JWT 签名密钥
	MaxAge    int    `mapstructure:"max_age"`    // 会话最长有效期（秒），默认 7200
	UpdateAge int    `mapstructure:"update_age"` // 令牌刷新间隔（秒），默认 300
	Secure    bool   `mapstructure:"secure"`     // Cookie Secure 标志
}

// AdminSecurityConfig 后台安全策略
type AdminSecurityConfig struct {
	RequireTwoFactor bool `mapstructure:"require_two_factor"`
	// 2FA 状态无法确认时的策略: allow(记录但放行，默认) 或 deny(拒绝)
	TwoFactorOnUnknown string `mapstructure:"two_factor_on_unknown"`
}

// AuditConfig 审计日志配置
type AuditConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	RetentionDays int  `mapstructure:"retention_days"` // 默认 90
}

// ContactConfig 联系表单配置
type ContactConfig struct {
	TurnstileSecret   string     `mapstructure:"turnstile_secret"`
	RateLimitMax      int        `mapstructure:"rate_limit_max"`       // 窗口内最大请求数，默认 10
	RateLimitWindowMs int        `mapstructure:"rate_limit_window_ms"` // 窗口毫秒数，默认 60000
	SMTP              SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig 邮件发送配置
type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	To   string `mapstructure:"to"`
	From string `mapstructure:"from"`
}

// SiteConfig 站点元信息，用于 sitemap 与 feed 生成
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Name    string `mapstructure:"name"`
}

var globalConfig *Config

// Load 加载配置
// env: 环境名称（dev, prod, test）
// configPath: 配置文件路径（可选）
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		v.SetConfigName(env) // dev.yaml, prod.yaml
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("../../config")
	} else {
		v.SetConfigFile(configPath)
	}

	v.SetConfigType("yaml")

	// 读取环境变量（优先级高于配置文件）
	v.SetEnvPrefix("APP") // 环境变量前缀：APP_
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 支持嵌套配置：APP_ADMIN_GITHUB_TOKEN

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyDefaults(&cfg)

	globalConfig = &cfg
	return &cfg, nil
}

// applyDefaults 填充未设置的默认值
func applyDefaults(cfg *Config) {
	if cfg.Admin.Session.MaxAge <= 0 {
		cfg.Admin.Session.MaxAge = 7200
	}
	if cfg.Admin.Session.UpdateAge <= 0 {
		cfg.Admin.Session.UpdateAge = 300
	}
	if cfg.Admin.Audit.RetentionDays <= 0 {
		cfg.Admin.Audit.RetentionDays = 90
	}
	if cfg.Admin.Security.TwoFactorOnUnknown == "" {
		cfg.Admin.Security.TwoFactorOnUnknown = "allow"
	}
	if cfg.Admin.GitHub.APIBaseURL == "" {
		cfg.Admin.GitHub.APIBaseURL = "https://api.github.com"
	}
	if cfg.Admin.GitHub.APIVersion == "" {
		cfg.Admin.GitHub.APIVersion = "2022-11-28"
	}
	if cfg.Admin.GitHub.UserAgent == "" {
		cfg.Admin.GitHub.UserAgent = "AlexanderTroyTours-Admin"
	}
	if cfg.Contact.RateLimitMax <= 0 {
		cfg.Contact.RateLimitMax = 10
	}
	if cfg.Contact.RateLimitWindowMs <= 0 {
		cfg.Contact.RateLimitWindowMs = 60000
	}
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("配置未初始化，请先调用 Load()")
	}
	return globalConfig
}

// AuthorizedUsers 返回规范化后的管理员白名单：
// 逗号分隔的 GitHub 用户名（小写去重）并入凭证登录用户名。
func (c *AdminConfig) AuthorizedUsers() []string {
	seen := make(map[string]struct{})
	var users []string

	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		users = append(users, name)
	}

	for _, u := range strings.Split(c.Users, ",") {
		add(u)
	}
	add(c.Username)

	return users
}

// Validate 启动期配置校验：返回人类可读的问题列表。
// 缺失的配置只会禁用相关功能，不会阻止应用启动。
func (c *AdminConfig) Validate() []string {
	var errs []string

	if c.GitHub.ClientID == "" {
		errs = append(errs, "admin.github.client_id 缺失，GitHub OAuth 登录不可用")
	}
	if c.GitHub.ClientSecret == "" {
		errs = append(errs, "admin.github.client_secret 缺失，GitHub OAuth 登录不可用")
	}
	if c.GitHub.Token == "" {
		errs = append(errs, "admin.github.token 缺失，协作者校验将始终拒绝")
	}
	if len(c.AuthorizedUsers()) == 0 {
		errs = append(errs, "admin.users 为空，没有任何账号可以访问后台")
	}
	if c.Session.Secret == "" {
		errs = append(errs, "admin.session.secret 缺失，无法签发会话令牌")
	}
	if c.Username == "" || (c.Password == "" && c.PasswordHash == "") {
		errs = append(errs, "admin.username/password 未配置，凭证登录不可用")
	}

	return errs
}

// GetDSN 获取 postgres 连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
