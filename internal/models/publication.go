package models

import (
	"time"

	"github.com/google/uuid"
)

// Publication is a bibliographic record. CitationCount, Downloads and Views
// are monotonically incrementing counters. DOI must be globally unique;
// inserting a duplicate is a conflict error.
type Publication struct {
	ID       uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Title    string    `json:"title" db:"title" gorm:"not null"`
	Abstract string    `json:"abstract" db:"abstract" gorm:"type:text"`
	DOI      *string   `json:"doi" db:"doi" gorm:"uniqueIndex"`
	Journal  string    `json:"journal" db:"journal"`
	Field    string    `json:"field" db:"field" gorm:"index"`
	Year     int       `json:"year" db:"year"`

	CitationCount int `json:"citation_count" db:"citation_count" gorm:"default:0"`
	Downloads     int `json:"downloads" db:"downloads" gorm:"default:0"`
	Views         int `json:"views" db:"views" gorm:"default:0"`

	// Altmetric mention counters by source
	SocialMentions    int `json:"social_mentions" db:"social_mentions" gorm:"default:0"`
	NewsMentions      int `json:"news_mentions" db:"news_mentions" gorm:"default:0"`
	BlogMentions      int `json:"blog_mentions" db:"blog_mentions" gorm:"default:0"`
	PolicyMentions    int `json:"policy_mentions" db:"policy_mentions" gorm:"default:0"`
	WikipediaMentions int `json:"wikipedia_mentions" db:"wikipedia_mentions" gorm:"default:0"`

	PublishedAt *time.Time `json:"published_at" db:"published_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Authors []PublicationAuthor `json:"authors,omitempty" gorm:"foreignKey:PublicationID"`
}

// PublicationAuthor links a researcher to a publication with author order
// and contribution-type tags.
type PublicationAuthor struct {
	ID            uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PublicationID uuid.UUID `json:"publication_id" db:"publication_id" gorm:"type:uuid;not null;index"`
	ResearcherID  uuid.UUID `json:"researcher_id" db:"researcher_id" gorm:"type:uuid;not null;index"`
	Position      int       `json:"position" db:"position" gorm:"not null"`
	Contribution  string    `json:"contribution" db:"contribution"` // e.g. "FIRST_AUTHOR", "CORRESPONDING"

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// CitationType classifies the nature of a citation edge
type CitationType string

const (
	CitationDirect     CitationType = "DIRECT"
	CitationIndirect   CitationType = "INDIRECT"
	CitationSelf       CitationType = "SELF"
	CitationSupportive CitationType = "SUPPORTIVE"
	CitationCritical   CitationType = "CRITICAL"
)

// Citation is a directed edge from a source publication to a target
// publication. Importance, Explicitness and Centrality are optional
// 1-10 semantic annotations.
type Citation struct {
	ID                  uuid.UUID    `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SourcePublicationID uuid.UUID    `json:"source_publication_id" db:"source_publication_id" gorm:"type:uuid;not null;index"`
	TargetPublicationID uuid.UUID    `json:"target_publication_id" db:"target_publication_id" gorm:"type:uuid;not null;index"`
	CitationType        CitationType `json:"citation_type" db:"citation_type"`
	CitationText        string       `json:"citation_text" db:"citation_text" gorm:"type:text"`

	// Position of the citation within the citing document
	Section   string `json:"section" db:"section"`
	Page      int    `json:"page" db:"page"`
	Paragraph int    `json:"paragraph" db:"paragraph"`

	// Optional semantics
	Context      string `json:"context" db:"context" gorm:"type:text"`
	Sentiment    string `json:"sentiment" db:"sentiment"`
	Importance   *int   `json:"importance" db:"importance"`
	Explicitness *int   `json:"explicitness" db:"explicitness"`
	Centrality   *int   `json:"centrality" db:"centrality"`

	Verified   bool   `json:"verified" db:"verified" gorm:"default:false"`
	DetectedBy string `json:"detected_by" db:"detected_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`

	// Relationships
	SourcePublication Publication `json:"source_publication,omitempty" gorm:"foreignKey:SourcePublicationID;references:ID"`
	TargetPublication Publication `json:"target_publication,omitempty" gorm:"foreignKey:TargetPublicationID;references:ID"`
}

// SignificanceScore returns the weighted significance of the citation:
// 0.4*importance + 0.3*explicitness + 0.3*centrality, clamped to [0,10].
// It is 0 when any semantic annotation is absent.
func (c *Citation) SignificanceScore() float64 {
	if c.Importance == nil || c.Explicitness == nil || c.Centrality == nil {
		return 0
	}
	score := 0.4*float64(*c.Importance) + 0.3*float64(*c.Explicitness) + 0.3*float64(*c.Centrality)
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// TableName methods
func (Publication) TableName() string {
	return "publications"
}

func (PublicationAuthor) TableName() string {
	return "publication_authors"
}

func (Citation) TableName() string {
	return "citations"
}
