package services

import (
	"context"
	"strings"
	"unicode"

	"edurank/internal/models"
	"edurank/internal/storage"
	"edurank/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// contentCandidateLimit caps how many same-type items a content-based
	// recomputation compares against.
	contentCandidateLimit = 100
	// contentScoreThreshold is the minimum Jaccard score worth persisting;
	// lower scores are discarded, not stored as zero.
	contentScoreThreshold = 0.1
	// minWordLength filters short tokens out of the text vocabulary.
	minWordLength = 3
	// collaborativeMinSharedUsers is the minimum co-interaction overlap for
	// a collaborative edge.
	collaborativeMinSharedUsers = 2
)

// SimilarityService computes and persists pairwise content similarity edges
// under three independent strategies. Each strategy is idempotent: edges are
// upserted by (unordered pair, similarity type).
type SimilarityService struct {
	store  storage.Adapter
	logger *zap.Logger
}

// NewSimilarityService creates a new similarity service.
func NewSimilarityService(store storage.Adapter, logger *zap.Logger) *SimilarityService {
	return &SimilarityService{store: store, logger: logger}
}

// CalculateContentBasedSimilarity compares the target item's title and
// description vocabulary against up to 100 other items of the same content
// type using Jaccard similarity, and stores edges scoring above the
// threshold. It returns the number of edges written.
func (s *SimilarityService) CalculateContentBasedSimilarity(ctx context.Context, contentID uuid.UUID) (int, error) {
	target, err := s.store.GetContentItem(ctx, contentID)
	if err != nil {
		return 0, err
	}

	candidates, err := s.store.ListContentByType(ctx, target.ContentType, contentID, contentCandidateLimit)
	if err != nil {
		return 0, err
	}

	targetWords := tokenizeWords(target.Title + " " + target.Description)
	written := 0
	for i := range candidates {
		candidate := &candidates[i]
		score := jaccardSimilarity(targetWords, tokenizeWords(candidate.Title+" "+candidate.Description))
		if score <= contentScoreThreshold {
			continue
		}
		edge := &models.ContentSimilarity{
			ContentIDA:      contentID,
			ContentIDB:      candidate.ID,
			SimilarityScore: score,
			SimilarityType:  models.SimilarityContentBased,
		}
		if err := s.store.UpsertContentSimilarity(ctx, edge); err != nil {
			return written, err
		}
		telemetry.SimilarityEdgesWritten.WithLabelValues(string(models.SimilarityContentBased)).Inc()
		written++
	}

	s.logger.Debug("content-based similarity recomputed",
		zap.String("content_id", contentID.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("edges", written))
	return written, nil
}

// CalculateTagBasedSimilarity scores candidates sharing at least one tag with
// the target as (shared tags / target tag count). The normalization is by the
// target's tag count, not a symmetric Jaccard, so the measure is asymmetric.
func (s *SimilarityService) CalculateTagBasedSimilarity(ctx context.Context, contentID uuid.UUID) (int, error) {
	target, err := s.store.GetContentItem(ctx, contentID)
	if err != nil {
		return 0, err
	}
	if len(target.Tags) == 0 {
		return 0, nil
	}

	candidates, err := s.store.ListContentSharingTags(ctx, target.Tags, contentID)
	if err != nil {
		return 0, err
	}

	targetTags := make(map[string]struct{}, len(target.Tags))
	for _, tag := range target.Tags {
		targetTags[tag] = struct{}{}
	}

	written := 0
	for i := range candidates {
		candidate := &candidates[i]
		shared := 0
		for _, tag := range candidate.Tags {
			if _, ok := targetTags[tag]; ok {
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		edge := &models.ContentSimilarity{
			ContentIDA:      contentID,
			ContentIDB:      candidate.ID,
			SimilarityScore: float64(shared) / float64(len(target.Tags)),
			SimilarityType:  models.SimilarityTagBased,
		}
		if err := s.store.UpsertContentSimilarity(ctx, edge); err != nil {
			return written, err
		}
		telemetry.SimilarityEdgesWritten.WithLabelValues(string(models.SimilarityTagBased)).Inc()
		written++
	}
	return written, nil
}

// CalculateCollaborativeSimilarity scores other items by co-interaction:
// (users shared with target / users who interacted with target), keeping
// edges with at least two shared users.
func (s *SimilarityService) CalculateCollaborativeSimilarity(ctx context.Context, contentID uuid.UUID) (int, error) {
	interactions, err := s.store.GetContentInteractions(ctx, contentID)
	if err != nil {
		return 0, err
	}

	targetUsers := make(map[uuid.UUID]struct{})
	for i := range interactions {
		targetUsers[interactions[i].UserID] = struct{}{}
	}
	if len(targetUsers) == 0 {
		return 0, nil
	}

	userIDs := make([]uuid.UUID, 0, len(targetUsers))
	for id := range targetUsers {
		userIDs = append(userIDs, id)
	}
	coInteractions, err := s.store.InteractionsByUsers(ctx, userIDs, nil)
	if err != nil {
		return 0, err
	}

	// shared user sets per co-interacted content item
	sharedUsers := make(map[uuid.UUID]map[uuid.UUID]struct{})
	for i := range coInteractions {
		other := coInteractions[i].ContentID
		if other == contentID {
			continue
		}
		if sharedUsers[other] == nil {
			sharedUsers[other] = make(map[uuid.UUID]struct{})
		}
		sharedUsers[other][coInteractions[i].UserID] = struct{}{}
	}

	written := 0
	for other, users := range sharedUsers {
		if len(users) < collaborativeMinSharedUsers {
			continue
		}
		edge := &models.ContentSimilarity{
			ContentIDA:      contentID,
			ContentIDB:      other,
			SimilarityScore: float64(len(users)) / float64(len(targetUsers)),
			SimilarityType:  models.SimilarityCollaborative,
		}
		if err := s.store.UpsertContentSimilarity(ctx, edge); err != nil {
			return written, err
		}
		telemetry.SimilarityEdgesWritten.WithLabelValues(string(models.SimilarityCollaborative)).Inc()
		written++
	}
	return written, nil
}

// CalculateAllSimilarities runs all three strategies for one content item and
// returns the total number of edges written.
func (s *SimilarityService) CalculateAllSimilarities(ctx context.Context, contentID uuid.UUID) (int, error) {
	total := 0
	n, err := s.CalculateContentBasedSimilarity(ctx, contentID)
	total += n
	if err != nil {
		return total, err
	}
	n, err = s.CalculateTagBasedSimilarity(ctx, contentID)
	total += n
	if err != nil {
		return total, err
	}
	n, err = s.CalculateCollaborativeSimilarity(ctx, contentID)
	total += n
	return total, err
}

// RefreshTopContent recomputes all similarity strategies for the n most
// viewed content items. The background scheduler drives this.
func (s *SimilarityService) RefreshTopContent(ctx context.Context, n int) error {
	items, err := s.store.MostViewedContent(ctx, n)
	if err != nil {
		return err
	}
	for i := range items {
		if _, err := s.CalculateAllSimilarities(ctx, items[i].ID); err != nil {
			s.logger.Warn("similarity refresh failed for content",
				zap.String("content_id", items[i].ID.String()),
				zap.Error(err))
		}
	}
	return nil
}

// tokenizeWords case-folds text, splits on whitespace and punctuation, and
// keeps distinct words longer than minWordLength characters.
func tokenizeWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, word := range fields {
		if len(word) > minWordLength {
			words[word] = struct{}{}
		}
	}
	return words
}

// jaccardSimilarity returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
func jaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for word := range a {
		if _, ok := b[word]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
