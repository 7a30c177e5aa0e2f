package contact

import (
	"time"

	"gorm.io/datatypes"
)

// Enquiry 联系表单留言，入库备查后再异步发邮件。
type Enquiry struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	Email     string         `gorm:"size:320;not null" json:"email"`
	Company   string         `gorm:"size:200" json:"company,omitempty"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	IPAddress string         `gorm:"size:64" json:"ip_address"`
	Meta      datatypes.JSON `gorm:"type:json" json:"meta,omitempty"` // UA、语言偏好等附加信息
	CreatedAt time.Time      `json:"created_at"`
}

// TableName 指定表名
func (Enquiry) TableName() string {
	return "enquiries"
}
