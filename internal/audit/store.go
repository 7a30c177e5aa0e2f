package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"backend/internal/config"
	"backend/internal/metrics"

	"github.com/google/uuid"
)

const twentyFourHours = 24 * time.Hour

// Store 进程内审计日志存储。
//
// 条目按时间戳降序（最新在前）排列；写入采用线性扫描定位插入点，
// 因为条目基本按时间顺序到达，扫描几乎总是在头部结束。
// 统计结果做惰性缓存，写入与清理时失效。
// 写入低频（仅后台操作），用互斥锁串行化即可。
type Store struct {
	mu         sync.Mutex
	entries    []Entry
	statsCache *Stats

	enabled       bool
	retentionDays int
	now           func() time.Time
}

// Filter 审计日志查询条件
type Filter struct {
	UserID    string
	Action    string
	Resource  string // 子串匹配
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// NewStore 创建审计存储
func NewStore(cfg config.AuditConfig) *Store {
	return &Store{
		enabled:       cfg.Enabled,
		retentionDays: cfg.RetentionDays,
		now:           time.Now,
	}
}

// SetNowFunc 替换时间源，仅供测试使用。
func (s *Store) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Record 写入一条审计记录。
// 未设置 ID/时间戳时自动补齐；随后使缓存失效并触发过期清理。
// 审计功能关闭时为空操作。
func (s *Store) Record(entry Entry) {
	if !s.enabled {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	entry.Details = cloneDetails(entry.Details)

	s.insertChronologically(entry)
	s.statsCache = nil
	s.prune()

	metrics.AuditEntriesTotal.WithLabelValues(entry.Action, string(entry.Status)).Inc()
}

// insertChronologically 按时间戳降序插入。
// 允许显式时间戳乱序到达：扫描到第一个严格更早的条目即停。
func (s *Store) insertChronologically(entry Entry) {
	idx := len(s.entries)
	for i, existing := range s.entries {
		if existing.Timestamp.Before(entry.Timestamp) {
			idx = i
			break
		}
	}

	s.entries = append(s.entries, Entry{})
	copy(s.entries[idx+1:], s.entries[idx:])
	s.entries[idx] = entry
}

// prune 清理超出保留窗口的条目。
// 列表降序排列，过期条目集中在尾部，从尾部弹出即可。
// 调用方必须持有锁。
func (s *Store) prune() {
	boundary := s.now().AddDate(0, 0, -s.retentionDays)

	removed := 0
	for len(s.entries) > 0 && s.entries[len(s.entries)-1].Timestamp.Before(boundary) {
		s.entries = s.entries[:len(s.entries)-1]
		removed++
	}

	if removed > 0 {
		s.statsCache = nil
	}
}

// Query 按条件检索审计日志，返回深拷贝。
// 列表降序排列：一旦某条目早于 StartDate 即可终止扫描。
func (s *Store) Query(f Filter) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := f.Limit
	if limit <= 0 {
		limit = len(s.entries)
	}

	var results []Entry
	for _, entry := range s.entries {
		if len(results) >= limit {
			break
		}
		if f.UserID != "" && entry.UserID != f.UserID {
			continue
		}
		if f.Action != "" && entry.Action != f.Action {
			continue
		}
		if f.Resource != "" && !strings.Contains(entry.Resource, f.Resource) {
			continue
		}
		if f.EndDate != nil && entry.Timestamp.After(*f.EndDate) {
			continue
		}
		if f.StartDate != nil && entry.Timestamp.Before(*f.StartDate) {
			break
		}
		results = append(results, cloneEntry(entry))
	}

	return results
}

// RecentActivity 返回最近的 limit 条记录
func (s *Store) RecentActivity(limit int) []Entry {
	return s.Query(Filter{Limit: limit})
}

// UserLogs 返回指定用户的最近记录
func (s *Store) UserLogs(userID string, limit int) []Entry {
	return s.Query(Filter{UserID: userID, Limit: limit})
}

// Stats 返回统计快照（惰性计算，深拷贝返回）。
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.statsCache == nil {
		snapshot := s.computeStats()
		s.statsCache = &snapshot
	}

	return cloneStats(*s.statsCache)
}

// computeStats 单次遍历统计动作/用户/成功计数；
// 近 24 小时计数利用降序排列，遇到更早的条目即终止。
// 调用方必须持有锁。
func (s *Store) computeStats() Stats {
	byAction := make(map[string]int)
	byUser := make(map[string]int)
	successCount := 0

	for _, entry := range s.entries {
		byAction[entry.Action]++
		byUser[entry.UserID]++
		if entry.Status == StatusSuccess {
			successCount++
		}
	}

	cutoff := s.now().Add(-twentyFourHours)
	recent := 0
	for _, entry := range s.entries {
		if entry.Timestamp.Before(cutoff) {
			break
		}
		recent++
	}

	total := len(s.entries)
	successRate := 0.0
	if total > 0 {
		successRate = float64(successCount) / float64(total) * 100
	}

	return Stats{
		Total:          total,
		ByAction:       byAction,
		ByUser:         byUser,
		SuccessRate:    successRate,
		RecentActivity: recent,
	}
}

// Export 导出指定时间范围内的审计日志为 JSON 文本，
// 时间戳为 RFC3339 格式，用于合规取证。
func (s *Store) Export(start, end *time.Time) (string, error) {
	logs := s.Query(Filter{StartDate: start, EndDate: end})
	if logs == nil {
		logs = []Entry{}
	}

	data, err := json.MarshalIndent(logs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("序列化审计日志失败: %w", err)
	}
	return string(data), nil
}

func cloneEntry(entry Entry) Entry {
	entry.Details = cloneDetails(entry.Details)
	return entry
}

func cloneDetails(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		out[k] = v
	}
	return out
}

func cloneStats(stats Stats) Stats {
	byAction := make(map[string]int, len(stats.ByAction))
	for k, v := range stats.ByAction {
		byAction[k] = v
	}
	byUser := make(map[string]int, len(stats.ByUser))
	for k, v := range stats.ByUser {
		byUser[k] = v
	}
	stats.ByAction = byAction
	stats.ByUser = byUser
	return stats
}
