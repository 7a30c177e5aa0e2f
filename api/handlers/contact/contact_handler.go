package contact

import (
	"errors"
	"net/http"
	"strconv"

	response "backend/api/handlers/common"
	contactpkg "backend/internal/contact"
	"backend/internal/logger"
	"backend/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContactHandler 联系表单处理器
type ContactHandler struct {
	service *contactpkg.Service
}

// NewContactHandler 创建联系表单处理器
func NewContactHandler(service *contactpkg.Service) *ContactHandler {
	return &ContactHandler{service: service}
}

// SubmitRequest 联系表单提交请求。
// HP 是隐藏的蜜罐字段，真实用户不会填写。
type SubmitRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
	Company string `json:"company"`
	Token   string `json:"token" binding:"required"`
	HP      string `json:"hp"`
}

// Submit 提交联系表单
// @Summary 提交联系表单
// @Tags Contact
// @Accept json
// @Produce json
// @Param request body SubmitRequest true "表单内容"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ContactSubmissionsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "参数错误: " + err.Error()})
		return
	}

	// 蜜罐被填写说明是机器人：假装成功，不留任何痕迹。
	if req.HP != "" {
		metrics.ContactSubmissionsTotal.WithLabelValues("honeypot").Inc()
		c.JSON(http.StatusOK, response.APIResponse{Success: true, Message: "已收到您的留言"})
		return
	}

	sub := contactpkg.Submission{
		Name:      req.Name,
		Email:     req.Email,
		Company:   req.Company,
		Message:   req.Message,
		UserAgent: c.Request.UserAgent(),
		Locale:    c.GetHeader("Accept-Language"),
	}

	err := h.service.Submit(c.Request.Context(), sub, req.Token, c.ClientIP())
	if err != nil {
		if errors.Is(err, contactpkg.ErrVerificationFailed) {
			metrics.ContactSubmissionsTotal.WithLabelValues("verification_failed").Inc()
			c.JSON(http.StatusForbidden, response.ErrorResponse{Success: false, Message: "人机验证未通过"})
			return
		}
		logger.Error("处理联系表单失败", zap.Error(err))
		metrics.ContactSubmissionsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "提交失败，请稍后重试"})
		return
	}

	metrics.ContactSubmissionsTotal.WithLabelValues("accepted").Inc()
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Message: "已收到您的留言"})
}

// RecentEnquiries 返回最近的留言（后台）
// @Summary 最近的留言
// @Tags Contact
// @Produce json
// @Param limit query int false "返回条数"
// @Success 200 {object} response.ListResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/admin/enquiries [get]
func (h *ContactHandler) RecentEnquiries(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	enquiries, err := h.service.RecentEnquiries(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Success: false, Message: "查询失败: " + err.Error()})
		return
	}

	items := make([]interface{}, len(enquiries))
	for i, e := range enquiries {
		items[i] = e
	}
	c.JSON(http.StatusOK, response.ListResponse{Items: items, Total: len(items)})
}
