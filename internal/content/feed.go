package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// jsonFeed JSON Feed 1.1 结构
type jsonFeed struct {
	Version     string         `json:"version"`
	Title       string         `json:"title"`
	HomePageURL string         `json:"home_page_url"`
	FeedURL     string         `json:"feed_url"`
	Items       []jsonFeedItem `json:"items"`
}

type jsonFeedItem struct {
	ID            string   `json:"id"`
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary,omitempty"`
	ContentText   string   `json:"content_text,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	DatePublished string   `json:"date_published"`
}

// BuildFeed 生成博客的 JSON Feed 1.1
func (s *Service) BuildFeed(ctx context.Context, baseURL, siteName string) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")

	posts, err := s.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	feed := jsonFeed{
		Version:     "https://jsonfeed.org/version/1.1",
		Title:       siteName,
		HomePageURL: base,
		FeedURL:     base + "/feed.json",
		Items:       make([]jsonFeedItem, 0, len(posts)),
	}

	for _, p := range posts {
		var tags []string
		if len(p.Tags) > 0 {
			// tags 列为 JSON 数组，解析失败时留空
			_ = json.Unmarshal(p.Tags, &tags)
		}

		feed.Items = append(feed.Items, jsonFeedItem{
			ID:            base + "/blog/" + p.Slug,
			URL:           base + "/blog/" + p.Slug,
			Title:         p.Title,
			Summary:       p.Excerpt,
			ContentText:   p.Body,
			Tags:          tags,
			DatePublished: p.PublishedAt.Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化 feed 失败: %w", err)
	}
	return data, nil
}
