package models

import (
	"time"

	"github.com/google/uuid"
)

// RecommendationStatus tracks the lifecycle of a recommendation.
// ACTIVE is the only non-terminal state.
type RecommendationStatus string

const (
	RecommendationActive    RecommendationStatus = "ACTIVE"
	RecommendationClicked   RecommendationStatus = "CLICKED"
	RecommendationDismissed RecommendationStatus = "DISMISSED"
	RecommendationExpired   RecommendationStatus = "EXPIRED"
)

// ValidRecommendationStatus reports whether s is a known status value.
func ValidRecommendationStatus(s RecommendationStatus) bool {
	switch s {
	case RecommendationActive, RecommendationClicked, RecommendationDismissed, RecommendationExpired:
		return true
	}
	return false
}

// RecommendationReason identifies the strategy that produced a recommendation
type RecommendationReason string

const (
	ReasonSimilarContent  RecommendationReason = "SIMILAR_CONTENT"
	ReasonUserInterest    RecommendationReason = "USER_INTEREST"
	ReasonPopular         RecommendationReason = "POPULAR"
	ReasonTrending        RecommendationReason = "TRENDING"
	ReasonAssessmentBased RecommendationReason = "ASSESSMENT_BASED"
	ReasonColleagueUsed   RecommendationReason = "COLLEAGUE_USED"
)

// Recommendation is a scored suggestion of a content item to a user.
// At most one ACTIVE row may exist per (user, content) pair.
type Recommendation struct {
	ID        uuid.UUID            `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    uuid.UUID            `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index:idx_recommendations_user"`
	ContentID uuid.UUID            `json:"content_id" db:"content_id" gorm:"type:uuid;not null;index:idx_recommendations_content"`
	Score     float64              `json:"score" db:"score" gorm:"default:0.0"`
	Reason    RecommendationReason `json:"reason" db:"reason" gorm:"not null"`
	Status    RecommendationStatus `json:"status" db:"status" gorm:"not null;default:ACTIVE;index"`

	ClickedAt   *time.Time `json:"clicked_at" db:"clicked_at"`
	DismissedAt *time.Time `json:"dismissed_at" db:"dismissed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	User    User        `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Content ContentItem `json:"content,omitempty" gorm:"foreignKey:ContentID;references:ID"`
}

// TableName sets the table name for the Recommendation model
func (Recommendation) TableName() string {
	return "recommendations"
}

// IsTerminal reports whether the recommendation has left the ACTIVE state.
func (r *Recommendation) IsTerminal() bool {
	return r.Status != RecommendationActive
}

// CanTransitionTo reports whether the one-way status machine permits a
// transition to next. Only ACTIVE rows may move, and only into a terminal
// state.
func (r *Recommendation) CanTransitionTo(next RecommendationStatus) bool {
	if r.Status != RecommendationActive {
		return false
	}
	switch next {
	case RecommendationClicked, RecommendationDismissed, RecommendationExpired:
		return true
	}
	return false
}
