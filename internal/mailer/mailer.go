package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"backend/internal/config"
)

// Mailer 邮件发送能力
type Mailer interface {
	Send(subject, body string) error
}

// SMTPMailer 基于 SMTP 的实现，收发件人来自配置。
type SMTPMailer struct {
	cfg  config.SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer 创建 SMTP 发送器
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:  cfg,
		send: smtp.SendMail,
	}
}

// Send 发送一封纯文本邮件
func (m *SMTPMailer) Send(subject, body string) error {
	if m.cfg.Host == "" || m.cfg.User == "" || m.cfg.Pass == "" {
		return fmt.Errorf("SMTP 配置不完整")
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.User
	}
	if m.cfg.To == "" {
		return fmt.Errorf("收件人未配置")
	}

	msg := buildMessage(from, m.cfg.To, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)

	if err := m.send(addr, auth, from, []string{m.cfg.To}, msg); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
