package models

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentResult records a completed assessment for a user
type AssessmentResult struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID       uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index"`
	AssessmentID uuid.UUID `json:"assessment_id" db:"assessment_id" gorm:"type:uuid;not null;index"`
	Score        float64   `json:"score" db:"score" gorm:"default:0.0"`
	CompletedAt  time.Time `json:"completed_at" db:"completed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// AssessmentContentLink maps an assessment result to remedial or follow-up
// content with a stored relevance score used by the assessment-based
// recommendation strategy.
type AssessmentContentLink struct {
	ID                 uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	AssessmentResultID uuid.UUID `json:"assessment_result_id" db:"assessment_result_id" gorm:"type:uuid;not null;index"`
	ContentID          uuid.UUID `json:"content_id" db:"content_id" gorm:"type:uuid;not null;index"`
	RelevanceScore     float64   `json:"relevance_score" db:"relevance_score" gorm:"default:0.0"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`

	// Relationships
	AssessmentResult AssessmentResult `json:"assessment_result,omitempty" gorm:"foreignKey:AssessmentResultID;references:ID"`
	Content          ContentItem      `json:"content,omitempty" gorm:"foreignKey:ContentID;references:ID"`
}

// TableName methods
func (AssessmentResult) TableName() string {
	return "assessment_results"
}

func (AssessmentContentLink) TableName() string {
	return "assessment_content_links"
}
