package models

import (
	"time"

	"github.com/google/uuid"
)

// InteractionType classifies a single user action on a content item
type InteractionType string

const (
	InteractionView     InteractionType = "VIEW"
	InteractionRead     InteractionType = "READ"
	InteractionDownload InteractionType = "DOWNLOAD"
	InteractionShare    InteractionType = "SHARE"
	InteractionPrint    InteractionType = "PRINT"
	InteractionRate     InteractionType = "RATE"
	InteractionComment  InteractionType = "COMMENT"
	InteractionBookmark InteractionType = "BOOKMARK"
)

// ValidInteractionType reports whether t is one of the known interaction types.
func ValidInteractionType(t InteractionType) bool {
	switch t {
	case InteractionView, InteractionRead, InteractionDownload, InteractionShare,
		InteractionPrint, InteractionRate, InteractionComment, InteractionBookmark:
		return true
	}
	return false
}

// ContentInteraction records a single user action on a content item.
// Rating is only set for RATE interactions; at most one BOOKMARK row
// exists per (user, content) pair; toggling deletes rather than duplicates.
type ContentInteraction struct {
	ID              uuid.UUID       `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index:idx_interactions_user;index:idx_interactions_user_content"`
	ContentID       uuid.UUID       `json:"content_id" db:"content_id" gorm:"type:uuid;not null;index:idx_interactions_content;index:idx_interactions_user_content"`
	InteractionType InteractionType `json:"interaction_type" db:"interaction_type" gorm:"not null;index"`

	DurationSeconds      *int     `json:"duration_seconds" db:"duration_seconds"`
	CompletionPercentage *float64 `json:"completion_percentage" db:"completion_percentage"`
	Rating               *int     `json:"rating" db:"rating"`
	Bookmarked           bool     `json:"bookmarked" db:"bookmarked" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`

	// Relationships
	User    User        `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Content ContentItem `json:"content,omitempty" gorm:"foreignKey:ContentID;references:ID"`
}

// TableName sets the table name for the ContentInteraction model
func (ContentInteraction) TableName() string {
	return "content_interactions"
}

// InteractionDetails carries the optional attributes of an interaction event
type InteractionDetails struct {
	DurationSeconds      *int     `json:"duration_seconds,omitempty"`
	CompletionPercentage *float64 `json:"completion_percentage,omitempty"`
	Rating               *int     `json:"rating,omitempty"`
}

// ContentPopularityStats aggregates per-content engagement counts
type ContentPopularityStats struct {
	ContentID     uuid.UUID `json:"content_id"`
	Views         int64     `json:"views"`
	Reads         int64     `json:"reads"`
	Downloads     int64     `json:"downloads"`
	Shares        int64     `json:"shares"`
	Bookmarks     int64     `json:"bookmarks"`
	RatingCount   int64     `json:"rating_count"`
	AverageRating float64   `json:"average_rating"`
}
