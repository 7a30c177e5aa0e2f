package content

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound 请求的内容不存在
var ErrNotFound = errors.New("content: not found")

// Service 营销内容读取服务
type Service struct {
	db *gorm.DB
}

// NewService 创建内容服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListDestinations 按名称排序返回全部目的地
func (s *Service) ListDestinations(ctx context.Context) ([]Destination, error) {
	var items []Destination
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("查询目的地失败: %w", err)
	}
	return items, nil
}

// GetDestination 按 slug 查询目的地
func (s *Service) GetDestination(ctx context.Context, slug string) (*Destination, error) {
	var item Destination
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询目的地失败: %w", err)
	}
	return &item, nil
}

// ListServices 返回全部服务条目
func (s *Service) ListServices(ctx context.Context) ([]TourService, error) {
	var items []TourService
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("查询服务条目失败: %w", err)
	}
	return items, nil
}

// GetService 按 slug 查询服务条目
func (s *Service) GetService(ctx context.Context, slug string) (*TourService, error) {
	var item TourService
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询服务条目失败: %w", err)
	}
	return &item, nil
}

// ListEvents 按开始时间升序返回活动
func (s *Service) ListEvents(ctx context.Context) ([]Event, error) {
	var items []Event
	if err := s.db.WithContext(ctx).Order("start_date ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("查询活动失败: %w", err)
	}
	return items, nil
}

// ListPosts 按发布时间降序返回已发布文章，草稿不外露。
func (s *Service) ListPosts(ctx context.Context) ([]BlogPost, error) {
	var items []BlogPost
	err := s.db.WithContext(ctx).
		Where("draft = ?", false).
		Order("published_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	return items, nil
}

// GetPost 按 slug 查询已发布文章
func (s *Service) GetPost(ctx context.Context, slug string) (*BlogPost, error) {
	var item BlogPost
	err := s.db.WithContext(ctx).
		Where("slug = ? AND draft = ?", slug, false).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	return &item, nil
}
