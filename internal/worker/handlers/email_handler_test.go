package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"backend/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMailer struct {
	subject string
	body    string
	err     error
}

func (f *fakeMailer) Send(subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.subject = subject
	f.body = body
	return nil
}

func newContactTask(t *testing.T, payload tasks.ContactEmailPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(tasks.TypeContactEmail, data)
}

func TestEmailHandler_HandleContactEmail(t *testing.T) {
	t.Run("拼装主题与正文后发送", func(t *testing.T) {
		m := &fakeMailer{}
		h := NewEmailHandler(m, zap.NewNop())

		task := newContactTask(t, tasks.ContactEmailPayload{
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Company: "Acme",
			Message: "Planning a trip",
			IP:      "1.2.3.4",
		})

		require.NoError(t, h.HandleContactEmail(context.Background(), task))
		assert.Equal(t, "New enquiry from Jane Doe", m.subject)
		assert.Equal(t,
			"Name: Jane Doe\nEmail: jane@example.com\nCompany: Acme\nMessage: Planning a trip\nIP Address: 1.2.3.4",
			m.body)
	})

	t.Run("公司为空时正文不含Company行", func(t *testing.T) {
		m := &fakeMailer{}
		h := NewEmailHandler(m, zap.NewNop())

		task := newContactTask(t, tasks.ContactEmailPayload{
			Name: "Jane", Email: "jane@example.com", Message: "hi", IP: "1.2.3.4",
		})

		require.NoError(t, h.HandleContactEmail(context.Background(), task))
		assert.NotContains(t, m.body, "Company:")
	})

	t.Run("发送失败返回错误交给asynq重试", func(t *testing.T) {
		m := &fakeMailer{err: assert.AnError}
		h := NewEmailHandler(m, zap.NewNop())

		task := newContactTask(t, tasks.ContactEmailPayload{Name: "Jane"})
		assert.Error(t, h.HandleContactEmail(context.Background(), task))
	})

	t.Run("非法载荷直接报错", func(t *testing.T) {
		h := NewEmailHandler(&fakeMailer{}, zap.NewNop())
		task := asynq.NewTask(tasks.TypeContactEmail, []byte("not-json"))
		assert.Error(t, h.HandleContactEmail(context.Background(), task))
	})
}
