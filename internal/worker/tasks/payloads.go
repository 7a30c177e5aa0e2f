package tasks

// TypeContactEmail 联系表单邮件任务类型
const TypeContactEmail = "email:contact"

// ContactEmailPayload 联系表单邮件任务载荷
type ContactEmailPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Message string `json:"message"`
	IP      string `json:"ip"`
}
