// Package storage provides the storage adapter consumed by the core
// services. The Adapter interface abstracts the relational store; services
// depend only on it and never on a concrete engine. Two implementations
// exist: a gorm/PostgreSQL adapter used in production and an in-memory
// adapter used by tests and local development.
package storage

import (
	"context"
	"time"

	"edurank/internal/models"

	"github.com/google/uuid"
)

// RecommendationFilter narrows recommendation queries. Nil fields mean
// "no filter on this field". Pagination is offset-based; the returned count
// is the total matching rows before pagination.
type RecommendationFilter struct {
	Status      *models.RecommendationStatus
	Reason      *models.RecommendationReason
	MinScore    *float64
	ContentType *string
	CategoryID  *uuid.UUID
	TagID       *string
	Limit       int
	Offset      int
}

// UserStore manages users and organization membership lookups.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	// ListOrganizationUsers returns the active users of an organization,
	// excluding excludeUserID.
	ListOrganizationUsers(ctx context.Context, orgID, excludeUserID uuid.UUID) ([]models.User, error)
}

// InterestStore reads and writes inferred or explicit user interests.
type InterestStore interface {
	CreateUserInterest(ctx context.Context, interest *models.UserInterest) error
	GetUserInterests(ctx context.Context, userID uuid.UUID) ([]models.UserInterest, error)
}

// ContentStore manages content items and the lookups the similarity and
// recommendation strategies need.
type ContentStore interface {
	CreateContentItem(ctx context.Context, item *models.ContentItem) error
	GetContentItem(ctx context.Context, id uuid.UUID) (*models.ContentItem, error)
	// ListContentByType returns up to limit items of the given type,
	// excluding excludeID.
	ListContentByType(ctx context.Context, contentType string, excludeID uuid.UUID, limit int) ([]models.ContentItem, error)
	// ListContentSharingTags returns items sharing at least one of the given
	// tags, excluding excludeID.
	ListContentSharingTags(ctx context.Context, tags []string, excludeID uuid.UUID) ([]models.ContentItem, error)
	// SearchContent matches keyword case-insensitively against title and
	// description.
	SearchContent(ctx context.Context, keyword string, limit int) ([]models.ContentItem, error)
	MostViewedContent(ctx context.Context, limit int) ([]models.ContentItem, error)
	// IncrementContentCounter bumps the per-content engagement counter that
	// corresponds to the interaction type (views, downloads). Types without
	// a counter are a no-op.
	IncrementContentCounter(ctx context.Context, contentID uuid.UUID, typ models.InteractionType) error
}

// InteractionStore manages content interaction rows and the aggregates
// derived from them.
type InteractionStore interface {
	CreateContentInteraction(ctx context.Context, interaction *models.ContentInteraction) error
	// GetUserInteractions returns a user's interactions, most recent first,
	// capped at limit (0 means no cap).
	GetUserInteractions(ctx context.Context, userID uuid.UUID, limit int) ([]models.ContentInteraction, error)
	GetContentInteractions(ctx context.Context, contentID uuid.UUID) ([]models.ContentInteraction, error)
	// FindInteraction returns the first interaction of the given type for
	// the (user, content) pair, or nil when none exists.
	FindInteraction(ctx context.Context, userID, contentID uuid.UUID, typ models.InteractionType) (*models.ContentInteraction, error)
	UpdateContentInteraction(ctx context.Context, interaction *models.ContentInteraction) error
	DeleteContentInteraction(ctx context.Context, id uuid.UUID) error
	// CountContentInteractions counts interactions of one type for a content
	// item, optionally restricted to rows created after since.
	CountContentInteractions(ctx context.Context, contentID uuid.UUID, typ models.InteractionType, since *time.Time) (int64, error)
	// AverageContentRating returns the mean rating and rating count for a
	// content item; (0, 0) when unrated.
	AverageContentRating(ctx context.Context, contentID uuid.UUID) (float64, int64, error)
	// RecentInteractionCounts returns per-content interaction counts for
	// rows created after since.
	RecentInteractionCounts(ctx context.Context, since time.Time) (map[uuid.UUID]int64, error)
	// InteractionsByUsers returns interactions by any of the given users,
	// optionally restricted to the given types.
	InteractionsByUsers(ctx context.Context, userIDs []uuid.UUID, types []models.InteractionType) ([]models.ContentInteraction, error)
}

// SimilarityStore persists pairwise content similarity edges.
type SimilarityStore interface {
	// UpsertContentSimilarity writes an edge keyed by (unordered pair,
	// similarity type), updating the score of an existing row rather than
	// appending.
	UpsertContentSimilarity(ctx context.Context, sim *models.ContentSimilarity) error
	// GetContentSimilarities returns edges touching contentID in either
	// direction, optionally restricted to one similarity type, ordered by
	// score descending.
	GetContentSimilarities(ctx context.Context, contentID uuid.UUID, typ *models.SimilarityType) ([]models.ContentSimilarity, error)
}

// RecommendationStore manages recommendation rows and their lifecycle.
type RecommendationStore interface {
	CreateRecommendation(ctx context.Context, rec *models.Recommendation) error
	GetRecommendation(ctx context.Context, id uuid.UUID) (*models.Recommendation, error)
	// GetUserRecommendations returns a user's recommendations ordered by
	// score desc then created_at desc, plus the total count before
	// pagination.
	GetUserRecommendations(ctx context.Context, userID uuid.UUID, filter RecommendationFilter) ([]models.Recommendation, int64, error)
	// RecommendationExists reports whether any recommendation row, in any
	// status, exists for the (user, content) pair.
	RecommendationExists(ctx context.Context, userID, contentID uuid.UUID) (bool, error)
	CountActiveRecommendations(ctx context.Context, userID uuid.UUID) (int64, error)
	SaveRecommendation(ctx context.Context, rec *models.Recommendation) error
	// ExpireRecommendations flips ACTIVE rows created before olderThan to
	// EXPIRED, for one user when userID is non-nil or globally otherwise,
	// and returns the number of rows flipped.
	ExpireRecommendations(ctx context.Context, userID *uuid.UUID, olderThan time.Time) (int64, error)
}

// AssessmentStore reads assessment results and their linked content.
type AssessmentStore interface {
	CreateAssessmentResult(ctx context.Context, result *models.AssessmentResult) error
	CreateAssessmentContentLink(ctx context.Context, link *models.AssessmentContentLink) error
	// GetUserAssessmentResults returns a user's results, most recent first,
	// capped at limit (0 means no cap).
	GetUserAssessmentResults(ctx context.Context, userID uuid.UUID, limit int) ([]models.AssessmentResult, error)
	GetContentForAssessmentResult(ctx context.Context, assessmentResultID uuid.UUID) ([]models.AssessmentContentLink, error)
}

// PublicationStore manages the publication and citation graph.
type PublicationStore interface {
	// CreatePublication inserts a publication; a duplicate DOI yields a
	// ConflictError.
	CreatePublication(ctx context.Context, pub *models.Publication) error
	GetPublication(ctx context.Context, id uuid.UUID) (*models.Publication, error)
	// GetResearcherPublications returns the publications the researcher
	// authored, in any author position.
	GetResearcherPublications(ctx context.Context, researcherID uuid.UUID) ([]models.Publication, error)
	// CreateCitation inserts a citation edge and increments the target
	// publication's citation counter. A duplicate citation id yields a
	// ConflictError.
	CreateCitation(ctx context.Context, citation *models.Citation) error
	GetCitation(ctx context.Context, id uuid.UUID) (*models.Citation, error)
	// GetPublicationCitations returns citations pointing at the publication.
	GetPublicationCitations(ctx context.Context, targetPublicationID uuid.UUID) ([]models.Citation, error)
}

// MetricStore manages impact metric time series.
type MetricStore interface {
	// AppendMetricValue appends one observation to the entity's metric
	// record, creating the record lazily on first write, and returns the
	// record.
	AppendMetricValue(ctx context.Context, entityID uuid.UUID, entityType models.EntityType, metricType models.MetricType, field string, value *models.MetricValue) (*models.ImpactMetricRecord, error)
	// GetMetricRecord returns the record with its values, or a
	// NotFoundError when no value was ever written.
	GetMetricRecord(ctx context.Context, entityID uuid.UUID, entityType models.EntityType, metricType models.MetricType, field string) (*models.ImpactMetricRecord, error)
}

// Adapter is the full storage surface consumed by the core services.
type Adapter interface {
	UserStore
	InterestStore
	ContentStore
	InteractionStore
	SimilarityStore
	RecommendationStore
	AssessmentStore
	PublicationStore
	MetricStore
}
