package api

import (
	"context"

	"backend/internal/logger"
	"backend/internal/metrics"
	middlewarepkg "backend/internal/middleware"

	"backend/internal/config"
	"backend/internal/content"
	"backend/internal/infra"
	"backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter 设置并返回 Gin 路由和 Worker 服务器
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *worker.Server) {
	router := gin.New()

	// 统一归一化 Redis 配置，优先使用 cfg.Redis，再回退到环境变量
	redisCfg := normalizeRedisConfig(cfg.Redis)
	cfg.Redis = redisCfg

	// 初始化 Redis 客户端（OAuth2 state 存储）
	var redisClient redis.UniversalClient
	if client, err := infra.InitRedis(&redisCfg); err != nil {
		logger.Warn("Redis 不可用，OAuth2 state 将退回内存实现", zap.Error(err))
	} else {
		redisClient = client
	}

	// 组装服务容器与处理器
	container := NewAppContainer(db, cfg, redisClient)
	handlers := NewHandlers(container)

	// 全局中间件
	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(CORS())
	router.Use(middlewarepkg.RequestID())
	router.Use(middlewarepkg.SecurityHeaders())
	router.Use(metrics.PrometheusMiddleware())

	// 系统资源指标采集
	if sqlDB, err := db.DB(); err == nil {
		metrics.NewSystemCollector(sqlDB)
	}

	// 自动迁移开启时写入营销内容种子数据
	if cfg.Database.AutoMigrate {
		if err := content.Seed(context.Background(), db); err != nil {
			logger.Warn("写入内容种子数据失败", zap.Error(err))
		}
	}

	RegisterRoutes(router, db, container, handlers)

	workerServer := worker.NewServer(cfg.Redis, container.Mailer, logger.Get())

	return router, workerServer
}
