package metrics

import (
	"database/sql"
	"runtime"
	"time"
)

// SystemCollector 系统指标收集器
type SystemCollector struct {
	db     *sql.DB
	stopCh chan struct{}
}

// NewSystemCollector 创建系统指标收集器并启动定期采样。
func NewSystemCollector(db *sql.DB) *SystemCollector {
	collector := &SystemCollector{
		db:     db,
		stopCh: make(chan struct{}),
	}

	go collector.collectPeriodically()

	return collector
}

// Stop 停止采样
func (c *SystemCollector) Stop() {
	close(c.stopCh)
}

func (c *SystemCollector) collectPeriodically() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collectOnce()
		case <-c.stopCh:
			return
		}
	}
}

func (c *SystemCollector) collectOnce() {
	if c.db != nil {
		stats := c.db.Stats()
		DBConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
		DBConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
		DBConnections.WithLabelValues("idle").Set(float64(stats.Idle))
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	GoroutineCount.Set(float64(runtime.NumGoroutine()))
	MemoryAlloc.Set(float64(mem.Alloc))
}
