package models

import (
	"time"

	"github.com/google/uuid"
)

// SimilarityType identifies the strategy that produced a similarity edge
type SimilarityType string

const (
	SimilarityContentBased  SimilarityType = "CONTENT_BASED"
	SimilarityCollaborative SimilarityType = "COLLABORATIVE"
	SimilaritySemantic      SimilarityType = "SEMANTIC"
	SimilarityKeyword       SimilarityType = "KEYWORD"
	SimilarityTagBased      SimilarityType = "TAG_BASED"
)

// ContentSimilarity is an undirected, scored edge between two content items
// under one similarity strategy. At most one row exists per unordered pair
// per type; recomputation updates the score in place.
//
// Writers store the pair in canonical order (ContentIDA < ContentIDB by
// string comparison) so the unique index holds; readers still match both
// directions since historic rows may predate canonicalization.
type ContentSimilarity struct {
	ID              uuid.UUID      `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ContentIDA      uuid.UUID      `json:"content_id_a" db:"content_id_a" gorm:"type:uuid;not null;uniqueIndex:idx_similarity_pair_type;index"`
	ContentIDB      uuid.UUID      `json:"content_id_b" db:"content_id_b" gorm:"type:uuid;not null;uniqueIndex:idx_similarity_pair_type;index"`
	SimilarityScore float64        `json:"similarity_score" db:"similarity_score" gorm:"not null"`
	SimilarityType  SimilarityType `json:"similarity_type" db:"similarity_type" gorm:"not null;uniqueIndex:idx_similarity_pair_type"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the ContentSimilarity model
func (ContentSimilarity) TableName() string {
	return "content_similarities"
}

// CanonicalPair returns a and b in canonical storage order.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

// OtherContentID returns the opposite endpoint of the edge from the
// perspective of contentID.
func (s *ContentSimilarity) OtherContentID(contentID uuid.UUID) uuid.UUID {
	if s.ContentIDA == contentID {
		return s.ContentIDB
	}
	return s.ContentIDA
}
