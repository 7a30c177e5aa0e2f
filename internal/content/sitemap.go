package content

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// 固定营销页路由
var staticRoutes = []string{
	"/", "/about", "/services", "/mice", "/destinations",
	"/gallery", "/blog", "/events", "/contact",
}

// urlSet sitemap 根元素
type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// BuildSitemap 生成 sitemap.xml：静态路由 + 目的地/服务/文章详情页。
func (s *Service) BuildSitemap(ctx context.Context, baseURL string) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, route := range staticRoutes {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + route})
	}

	destinations, err := s.ListDestinations(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range destinations {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     base + "/destinations/" + d.Slug,
			LastMod: d.UpdatedAt.Format(time.RFC3339),
		})
	}

	services, err := s.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	for _, svc := range services {
		if svc.Href != "" && svc.Href != "/services" {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:     base + svc.Href,
				LastMod: svc.UpdatedAt.Format(time.RFC3339),
			})
		}
	}

	posts, err := s.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     base + "/blog/" + p.Slug,
			LastMod: p.PublishedAt.Format(time.RFC3339),
		})
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化 sitemap 失败: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}
