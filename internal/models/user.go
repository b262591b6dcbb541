package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a platform member belonging to one organization (tenant)
type User struct {
	ID             uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email          string    `json:"email" db:"email" gorm:"uniqueIndex;not null"`
	DisplayName    string    `json:"display_name" db:"display_name"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id" gorm:"type:uuid;not null;index"`
	Role           string    `json:"role" db:"role"`
	IsActive       bool      `json:"is_active" db:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Interests    []UserInterest       `json:"interests,omitempty" gorm:"foreignKey:UserID"`
	Interactions []ContentInteraction `json:"interactions,omitempty" gorm:"foreignKey:UserID"`
}

// InterestSource describes how a user interest was established
type InterestSource string

const (
	InterestSourceExplicit        InterestSource = "EXPLICIT"
	InterestSourceInferred        InterestSource = "INFERRED"
	InterestSourceAssessment      InterestSource = "ASSESSMENT"
	InterestSourceBrowsingHistory InterestSource = "BROWSING_HISTORY"
)

// UserInterest is a topical affinity for a user, explicit or inferred.
// Confidence is in [0,1] and feeds directly into interest-based
// recommendation scores.
type UserInterest struct {
	ID           uuid.UUID      `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID       uuid.UUID      `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index"`
	InterestArea string         `json:"interest_area" db:"interest_area" gorm:"not null"`
	Confidence   float64        `json:"confidence" db:"confidence" gorm:"default:0.5"`
	Source       InterestSource `json:"source" db:"source" gorm:"not null"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// TableName methods
func (User) TableName() string {
	return "users"
}

func (UserInterest) TableName() string {
	return "user_interests"
}
