// Package services implements the recommendation and impact-metrics core:
// interaction recording, pairwise content similarity, multi-strategy
// recommendation generation and bibliometric index computation. Services
// receive their storage adapter and logger via constructor injection.
package services

import (
	"context"

	"edurank/internal/apperr"
	"edurank/internal/models"
	"edurank/internal/storage"
	"edurank/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InteractionService records user-content interactions and derives
// per-content popularity statistics.
type InteractionService struct {
	store  storage.Adapter
	logger *zap.Logger
}

// NewInteractionService creates a new interaction service.
func NewInteractionService(store storage.Adapter, logger *zap.Logger) *InteractionService {
	return &InteractionService{store: store, logger: logger}
}

// RecordInteraction inserts one interaction event. Ratings are only valid on
// RATE interactions and must be in [1,5]. View/read/download events also bump
// the content item's engagement counters. At most one BOOKMARK row exists per
// (user, content) pair; recording a second one returns the existing row.
func (s *InteractionService) RecordInteraction(ctx context.Context, userID, contentID uuid.UUID, typ models.InteractionType, details *models.InteractionDetails) (*models.ContentInteraction, error) {
	if !models.ValidInteractionType(typ) {
		return nil, apperr.NewValidation("interaction_type", "unknown interaction type: "+string(typ))
	}

	if typ == models.InteractionBookmark {
		existing, err := s.store.FindInteraction(ctx, userID, contentID, models.InteractionBookmark)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	interaction := &models.ContentInteraction{
		UserID:          userID,
		ContentID:       contentID,
		InteractionType: typ,
		Bookmarked:      typ == models.InteractionBookmark,
	}
	if details != nil {
		if details.Rating != nil {
			if typ != models.InteractionRate {
				return nil, apperr.NewValidation("rating", "rating is only valid on RATE interactions")
			}
			if *details.Rating < 1 || *details.Rating > 5 {
				return nil, apperr.NewValidation("rating", "rating must be between 1 and 5")
			}
			interaction.Rating = details.Rating
		}
		interaction.DurationSeconds = details.DurationSeconds
		if details.CompletionPercentage != nil {
			if *details.CompletionPercentage < 0 || *details.CompletionPercentage > 100 {
				return nil, apperr.NewValidation("completion_percentage", "completion percentage must be between 0 and 100")
			}
			interaction.CompletionPercentage = details.CompletionPercentage
		}
	}
	if typ == models.InteractionRate && interaction.Rating == nil {
		return nil, apperr.NewValidation("rating", "RATE interactions require a rating")
	}

	if err := s.store.CreateContentInteraction(ctx, interaction); err != nil {
		return nil, err
	}
	if err := s.store.IncrementContentCounter(ctx, contentID, typ); err != nil {
		s.logger.Warn("failed to bump content counter",
			zap.String("content_id", contentID.String()),
			zap.Error(err))
	}

	telemetry.InteractionsRecorded.WithLabelValues(string(typ)).Inc()
	return interaction, nil
}

// BookmarkToggle is the outcome of a ToggleBookmark call.
type BookmarkToggle struct {
	Interaction *models.ContentInteraction `json:"interaction"`
	Bookmarked  bool                       `json:"bookmarked"`
}

// ToggleBookmark removes the existing bookmark for the (user, content) pair
// or creates one if none exists. The returned interaction is the removed or
// created row. The gorm adapter runs this as read-then-branch; concurrent
// double-toggles on the same pair may race (last write wins).
func (s *InteractionService) ToggleBookmark(ctx context.Context, userID, contentID uuid.UUID) (*BookmarkToggle, error) {
	existing, err := s.store.FindInteraction(ctx, userID, contentID, models.InteractionBookmark)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := s.store.DeleteContentInteraction(ctx, existing.ID); err != nil {
			return nil, err
		}
		return &BookmarkToggle{Interaction: existing, Bookmarked: false}, nil
	}

	created, err := s.RecordInteraction(ctx, userID, contentID, models.InteractionBookmark, nil)
	if err != nil {
		return nil, err
	}
	return &BookmarkToggle{Interaction: created, Bookmarked: true}, nil
}

// RateContent records a rating in [1,5] for the (user, content) pair,
// updating an existing RATE row in place rather than inserting a duplicate.
func (s *InteractionService) RateContent(ctx context.Context, userID, contentID uuid.UUID, rating int) (*models.ContentInteraction, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.NewValidation("rating", "rating must be between 1 and 5")
	}

	existing, err := s.store.FindInteraction(ctx, userID, contentID, models.InteractionRate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Rating = &rating
		if err := s.store.UpdateContentInteraction(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	return s.RecordInteraction(ctx, userID, contentID, models.InteractionRate,
		&models.InteractionDetails{Rating: &rating})
}

// GetContentPopularityStats aggregates engagement counts and the mean rating
// for one content item.
func (s *InteractionService) GetContentPopularityStats(ctx context.Context, contentID uuid.UUID) (*models.ContentPopularityStats, error) {
	stats := &models.ContentPopularityStats{ContentID: contentID}

	counts := []struct {
		typ  models.InteractionType
		dest *int64
	}{
		{models.InteractionView, &stats.Views},
		{models.InteractionRead, &stats.Reads},
		{models.InteractionDownload, &stats.Downloads},
		{models.InteractionShare, &stats.Shares},
		{models.InteractionBookmark, &stats.Bookmarks},
	}
	for _, c := range counts {
		n, err := s.store.CountContentInteractions(ctx, contentID, c.typ, nil)
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}

	avg, ratingCount, err := s.store.AverageContentRating(ctx, contentID)
	if err != nil {
		return nil, err
	}
	stats.AverageRating = avg
	stats.RatingCount = ratingCount
	return stats, nil
}
