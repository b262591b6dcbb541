package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ContentItem represents a piece of learning content (article, course,
// video, assessment material) that users interact with and that the
// recommendation engine ranks.
type ContentItem struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Title       string    `json:"title" db:"title" gorm:"not null"`
	Description string    `json:"description" db:"description" gorm:"type:text"`
	ContentType string    `json:"content_type" db:"content_type" gorm:"not null;index"`

	CategoryID *uuid.UUID     `json:"category_id" db:"category_id" gorm:"type:uuid;index"`
	Tags       pq.StringArray `json:"tags" db:"tags" gorm:"type:text[]"`
	Language   string         `json:"language" db:"language"`

	// Engagement counters, incremented on interaction events
	ViewCount     int `json:"view_count" db:"view_count" gorm:"default:0"`
	DownloadCount int `json:"download_count" db:"download_count" gorm:"default:0"`

	IsPublished bool       `json:"is_published" db:"is_published" gorm:"default:true"`
	PublishedAt *time.Time `json:"published_at" db:"published_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the ContentItem model
func (ContentItem) TableName() string {
	return "content_items"
}

// HasTag reports whether the item carries the given tag.
func (c *ContentItem) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
