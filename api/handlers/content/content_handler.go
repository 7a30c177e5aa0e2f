package content

import (
	"errors"
	"net/http"

	response "backend/api/handlers/common"
	"backend/internal/config"
	contentpkg "backend/internal/content"

	"github.com/gin-gonic/gin"
)

// ContentHandler 营销内容处理器：目的地、服务、活动、博客与站点元数据。
type ContentHandler struct {
	service *contentpkg.Service
	site    config.SiteConfig
}

// NewContentHandler 创建内容处理器
func NewContentHandler(service *contentpkg.Service, site config.SiteConfig) *ContentHandler {
	return &ContentHandler{service: service, site: site}
}

// ListDestinations 目的地列表
// @Summary 目的地列表
// @Tags Content
// @Produce json
// @Success 200 {object} response.ListResponse
// @Router /api/destinations [get]
func (h *ContentHandler) ListDestinations(c *gin.Context) {
	items, err := h.service.ListDestinations(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(items))
}

// GetDestination 目的地详情
// @Summary 目的地详情
// @Tags Content
// @Produce json
// @Param slug path string true "目的地 slug"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/destinations/{slug} [get]
func (h *ContentHandler) GetDestination(c *gin.Context) {
	item, err := h.service.GetDestination(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: item})
}

// ListServices 服务条目列表
// @Summary 服务条目列表
// @Tags Content
// @Produce json
// @Success 200 {object} response.ListResponse
// @Router /api/services [get]
func (h *ContentHandler) ListServices(c *gin.Context) {
	items, err := h.service.ListServices(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(items))
}

// GetService 服务条目详情
// @Summary 服务条目详情
// @Tags Content
// @Produce json
// @Param slug path string true "服务 slug"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/services/{slug} [get]
func (h *ContentHandler) GetService(c *gin.Context) {
	item, err := h.service.GetService(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: item})
}

// ListEvents 活动列表
// @Summary 活动列表
// @Tags Content
// @Produce json
// @Success 200 {object} response.ListResponse
// @Router /api/events [get]
func (h *ContentHandler) ListEvents(c *gin.Context) {
	items, err := h.service.ListEvents(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(items))
}

// ListPosts 博客文章列表
// @Summary 博客文章列表
// @Tags Content
// @Produce json
// @Success 200 {object} response.ListResponse
// @Router /api/blog [get]
func (h *ContentHandler) ListPosts(c *gin.Context) {
	items, err := h.service.ListPosts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(items))
}

// GetPost 博客文章详情
// @Summary 博客文章详情
// @Tags Content
// @Produce json
// @Param slug path string true "文章 slug"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/blog/{slug} [get]
func (h *ContentHandler) GetPost(c *gin.Context) {
	item, err := h.service.GetPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: item})
}

// Sitemap 站点地图
// @Summary 站点地图
// @Tags Content
// @Produce xml
// @Success 200 {string} string "XML"
// @Router /sitemap.xml [get]
func (h *ContentHandler) Sitemap(c *gin.Context) {
	out, err := h.service.BuildSitemap(c.Request.Context(), h.site.BaseURL)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", out)
}

// Feed JSON Feed
// @Summary 博客 JSON Feed
// @Tags Content
// @Produce json
// @Success 200 {string} string "JSON Feed 1.1"
// @Router /feed.json [get]
func (h *ContentHandler) Feed(c *gin.Context) {
	out, err := h.service.BuildFeed(c.Request.Context(), h.site.BaseURL, h.site.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/feed+json; charset=utf-8", out)
}

func (h *ContentHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, contentpkg.ErrNotFound) {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Success: false, Message: "内容不存在"})
		return
	}
	c.JSON(http.StatusInternalServerError, response.ErrorResponse{Success: false, Message: "查询失败: " + err.Error()})
}

func listOf[T any](items []T) response.ListResponse {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return response.ListResponse{Items: out, Total: len(out)}
}
