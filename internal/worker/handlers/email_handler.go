package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"backend/internal/mailer"
	"backend/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// EmailHandler 联系表单邮件任务处理器
type EmailHandler struct {
	mailer mailer.Mailer
	logger *zap.Logger
}

// NewEmailHandler 创建邮件处理器
func NewEmailHandler(m mailer.Mailer, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{mailer: m, logger: logger}
}

// HandleContactEmail 处理联系表单邮件任务
func (h *EmailHandler) HandleContactEmail(ctx context.Context, task *asynq.Task) error {
	var payload tasks.ContactEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload failed: %w", err)
	}

	subject := fmt.Sprintf("New enquiry from %s", payload.Name)
	body := buildEnquiryBody(payload)

	if err := h.mailer.Send(subject, body); err != nil {
		h.logger.Error("联系表单邮件发送失败",
			zap.String("email", payload.Email),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("联系表单邮件已发送", zap.String("email", payload.Email))
	return nil
}

func buildEnquiryBody(p tasks.ContactEmailPayload) string {
	lines := []string{
		"Name: " + p.Name,
		"Email: " + p.Email,
	}
	if p.Company != "" {
		lines = append(lines, "Company: "+p.Company)
	}
	lines = append(lines,
		"Message: "+p.Message,
		"IP Address: "+p.IP,
	)

	return strings.Join(lines, "\n")
}
