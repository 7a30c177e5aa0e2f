package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"backend/internal/infra/queue"
	"backend/internal/logger"
	"backend/internal/worker/tasks"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// Submission 一次联系表单提交
type Submission struct {
	Name      string
	Email     string
	Company   string
	Message   string
	UserAgent string
	Locale    string
}

// Service 联系表单服务：校验人机令牌、入库留言、投递邮件任务。
type Service struct {
	db       *gorm.DB
	queue    queue.Client
	verifier TurnstileVerifier
}

// NewService 创建联系表单服务
func NewService(db *gorm.DB, q queue.Client, verifier TurnstileVerifier) *Service {
	return &Service{db: db, queue: q, verifier: verifier}
}

// Submit 处理一次提交。
// 令牌校验失败返回 ErrVerificationFailed；入库失败中止；
// 邮件任务投递失败只记日志，留言已落库不算丢失。
func (s *Service) Submit(ctx context.Context, sub Submission, token, remoteIP string) error {
	if err := s.verifier.Verify(ctx, token, remoteIP); err != nil {
		return err
	}

	enquiry := Enquiry{
		Name:      sanitize(sub.Name),
		Email:     sanitize(sub.Email),
		Company:   sanitize(sub.Company),
		Message:   sanitize(sub.Message),
		IPAddress: remoteIP,
		Meta:      buildMeta(sub),
	}

	if err := s.db.WithContext(ctx).Create(&enquiry).Error; err != nil {
		return fmt.Errorf("保存留言失败: %w", err)
	}

	if err := s.queue.EnqueueContactEmail(tasks.ContactEmailPayload{
		Name:    enquiry.Name,
		Email:   enquiry.Email,
		Company: enquiry.Company,
		Message: enquiry.Message,
		IP:      remoteIP,
	}); err != nil {
		logger.Error("邮件任务投递失败",
			zap.Uint("enquiry_id", enquiry.ID),
			zap.Error(err),
		)
	}

	return nil
}

// RecentEnquiries 返回最近的留言，供后台查看。
func (s *Service) RecentEnquiries(ctx context.Context, limit int) ([]Enquiry, error) {
	if limit <= 0 {
		limit = 50
	}
	var enquiries []Enquiry
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&enquiries).Error
	if err != nil {
		return nil, fmt.Errorf("查询留言失败: %w", err)
	}
	return enquiries, nil
}

// sanitize 折叠连续空白并裁剪首尾
func sanitize(value string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(value, " "))
}

func buildMeta(sub Submission) datatypes.JSON {
	meta := map[string]string{}
	if sub.UserAgent != "" {
		meta["user_agent"] = sub.UserAgent
	}
	if sub.Locale != "" {
		meta["locale"] = sub.Locale
	}
	if len(meta) == 0 {
		return nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
