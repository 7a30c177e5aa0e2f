package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API 指标
var (
	// APIRequestsTotal API 请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alxtroy_api_requests_total",
			Help: "API 请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration API 请求延迟（秒）
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alxtroy_api_request_duration_seconds",
			Help:    "API 请求延迟分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// 后台准入指标
var (
	// AdminLoginTotal 管理员登录尝试总数
	AdminLoginTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alxtroy_admin_login_total",
			Help: "管理员登录尝试总数",
		},
		[]string{"provider", "outcome"},
	)

	// AuditEntriesTotal 审计记录写入总数
	AuditEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alxtroy_audit_entries_total",
			Help: "审计记录写入总数",
		},
		[]string{"action", "status"},
	)
)

// 联系表单指标
var (
	// ContactSubmissionsTotal 联系表单提交总数
	ContactSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alxtroy_contact_submissions_total",
			Help: "联系表单提交总数",
		},
		[]string{"outcome"}, // accepted, honeypot, verification_failed, rate_limited, invalid
	)
)

// 系统指标
var (
	// DBConnections 数据库连接数
	DBConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "alxtroy_db_connections",
			Help: "数据库连接数",
		},
		[]string{"state"},
	)

	// GoroutineCount Goroutine 数量
	GoroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alxtroy_goroutines",
			Help: "Goroutine 数量",
		},
	)

	// MemoryAlloc 已分配内存（字节）
	MemoryAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alxtroy_memory_alloc_bytes",
			Help: "已分配内存字节数",
		},
	)
)
