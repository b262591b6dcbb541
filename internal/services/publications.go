package services

import (
	"context"

	"edurank/internal/apperr"
	"edurank/internal/models"
	"edurank/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PublicationService manages the publication registry and citation graph
// consumed by the impact engine.
type PublicationService struct {
	store  storage.Adapter
	logger *zap.Logger
}

// NewPublicationService creates a new publication service.
func NewPublicationService(store storage.Adapter, logger *zap.Logger) *PublicationService {
	return &PublicationService{store: store, logger: logger}
}

// CreatePublication registers a publication. DOIs are globally unique;
// collisions surface as a ConflictError from the adapter.
func (s *PublicationService) CreatePublication(ctx context.Context, pub *models.Publication) (*models.Publication, error) {
	if pub.Title == "" {
		return nil, apperr.NewValidation("title", "title is required")
	}
	for i := range pub.Authors {
		if pub.Authors[i].Position <= 0 {
			pub.Authors[i].Position = i + 1
		}
	}
	if err := s.store.CreatePublication(ctx, pub); err != nil {
		return nil, err
	}
	return pub, nil
}

// GetPublication returns one publication with its authors.
func (s *PublicationService) GetPublication(ctx context.Context, id uuid.UUID) (*models.Publication, error) {
	return s.store.GetPublication(ctx, id)
}

// RecordCitation records a citation edge; the target publication's citation
// counter is incremented as part of the write. Semantic annotations, when
// present, must each be in [1,10].
func (s *PublicationService) RecordCitation(ctx context.Context, citation *models.Citation) (*models.Citation, error) {
	if citation.SourcePublicationID == uuid.Nil || citation.TargetPublicationID == uuid.Nil {
		return nil, apperr.NewValidation("publication_id", "source and target publications are required")
	}
	if citation.SourcePublicationID == citation.TargetPublicationID {
		return nil, apperr.NewValidation("publication_id", "a publication cannot cite itself")
	}
	for _, annotation := range []*int{citation.Importance, citation.Explicitness, citation.Centrality} {
		if annotation != nil && (*annotation < 1 || *annotation > 10) {
			return nil, apperr.NewValidation("semantics", "semantic annotations must be between 1 and 10")
		}
	}
	if err := s.store.CreateCitation(ctx, citation); err != nil {
		return nil, err
	}
	return citation, nil
}

// GetPublicationCitations returns the citations pointing at a publication.
func (s *PublicationService) GetPublicationCitations(ctx context.Context, publicationID uuid.UUID) ([]models.Citation, error) {
	return s.store.GetPublicationCitations(ctx, publicationID)
}
