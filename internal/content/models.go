package content

import (
	"time"

	"gorm.io/datatypes"
)

// Destination 目的地介绍页数据
type Destination struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Slug      string         `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	Region    string         `gorm:"size:100" json:"region"`
	Summary   string         `gorm:"type:text" json:"summary"`
	Details   datatypes.JSON `gorm:"type:json" json:"details"` // 段落数组
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName 指定表名
func (Destination) TableName() string { return "destinations" }

// TourService 接待服务条目
type TourService struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Slug      string         `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Href      string         `gorm:"size:200" json:"href"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Excerpt   string         `gorm:"type:text" json:"excerpt"`
	Details   datatypes.JSON `gorm:"type:json" json:"details"` // 要点数组
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName 指定表名
func (TourService) TableName() string { return "tour_services" }

// Event 活动/展会条目
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Location  string    `gorm:"size:200" json:"location"`
	Summary   string    `gorm:"type:text" json:"summary"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Event) TableName() string { return "events" }

// BlogPost 博客文章。Draft 为真时不出现在公开列表与 feed 中。
type BlogPost struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Slug            string         `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Title           string         `gorm:"size:300;not null" json:"title"`
	Excerpt         string         `gorm:"type:text" json:"excerpt,omitempty"`
	Body            string         `gorm:"type:text" json:"body,omitempty"`
	Tags            datatypes.JSON `gorm:"type:json" json:"tags,omitempty"`
	Draft           bool           `json:"draft"`
	ReadingTimeMins int            `json:"reading_time_mins,omitempty"`
	PublishedAt     time.Time      `json:"published_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// TableName 指定表名
func (BlogPost) TableName() string { return "blog_posts" }
