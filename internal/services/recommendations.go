package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"edurank/internal/apperr"
	"edurank/internal/models"
	"edurank/internal/storage"
	"edurank/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultRecommendationLimit is the generation limit when the caller
	// does not supply one.
	DefaultRecommendationLimit = 20
	// recommendationExpiryDays is the age at which ACTIVE recommendations
	// are swept to EXPIRED.
	recommendationExpiryDays = 30
	// recentInteractionsForSimilar is how many of the user's latest
	// interactions seed the similar-content strategy.
	recentInteractionsForSimilar = 5
	// trendingDayRange is the trailing window for the trending strategy.
	trendingDayRange = 7

	// Raw-score divisors. The strategies intentionally produce scores on
	// different, uncalibrated scales; see DESIGN.md before changing these.
	popularityViewDivisor       = 100.0
	trendingInteractionDivisor  = 50.0
	colleagueInteractionDivisor = 10.0
)

// strategyWeights allocates the sub-quota of each generation strategy.
// Quotas are ceil(needed * weight) per strategy independently, so the
// realized total may overshoot; the hard limit is enforced at the final read.
var strategyWeights = []struct {
	reason models.RecommendationReason
	weight float64
}{
	{models.ReasonSimilarContent, 0.20},
	{models.ReasonUserInterest, 0.20},
	{models.ReasonAssessmentBased, 0.20},
	{models.ReasonPopular, 0.15},
	{models.ReasonTrending, 0.15},
	{models.ReasonColleagueUsed, 0.10},
}

// candidate is a scored (content, reason) pair produced by one strategy.
type candidate struct {
	contentID uuid.UUID
	score     float64
}

// GenerationResult is the response of a generation call. Triggered is false
// when the user already had enough ACTIVE recommendations and nothing new
// was generated.
type GenerationResult struct {
	Triggered       bool                    `json:"triggered"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// RecommendationService orchestrates the candidate-generation strategies
// into a deduplicated recommendation set per user and manages the
// recommendation lifecycle.
type RecommendationService struct {
	store  storage.Adapter
	logger *zap.Logger
	now    func() time.Time
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(store storage.Adapter, logger *zap.Logger) *RecommendationService {
	return &RecommendationService{store: store, logger: logger, now: time.Now}
}

// GenerateRecommendations tops a user's ACTIVE recommendation set up to
// limit. It first sweeps expired rows, then, if the active count is below
// the limit, runs the six strategies with weighted quotas and returns the
// ACTIVE set sorted by score desc then created_at desc, capped at limit.
//
// A failing strategy contributes nothing instead of aborting the call; only
// storage failures propagate.
func (s *RecommendationService) GenerateRecommendations(ctx context.Context, userID uuid.UUID, limit int) (*GenerationResult, error) {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	cutoff := s.now().AddDate(0, 0, -recommendationExpiryDays)
	if _, err := s.store.ExpireRecommendations(ctx, &userID, cutoff); err != nil {
		return nil, err
	}

	activeCount, err := s.store.CountActiveRecommendations(ctx, userID)
	if err != nil {
		return nil, err
	}

	triggered := false
	if activeCount < int64(limit) {
		needed := limit - int(activeCount)
		if err := s.runStrategies(ctx, userID, needed); err != nil {
			return nil, err
		}
		triggered = true
	}

	recs, err := s.activeRecommendations(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return &GenerationResult{Triggered: triggered, Recommendations: recs}, nil
}

func (s *RecommendationService) activeRecommendations(ctx context.Context, userID uuid.UUID, limit int) ([]models.Recommendation, error) {
	status := models.RecommendationActive
	recs, _, err := s.store.GetUserRecommendations(ctx, userID, storage.RecommendationFilter{
		Status: &status,
		Limit:  limit,
	})
	return recs, err
}

// runStrategies executes each strategy with its independent ceil() quota.
func (s *RecommendationService) runStrategies(ctx context.Context, userID uuid.UUID, needed int) error {
	for _, sw := range strategyWeights {
		quota := int(math.Ceil(float64(needed) * sw.weight))
		if quota == 0 {
			continue
		}

		candidates, err := s.generateCandidates(ctx, userID, sw.reason, quota)
		if err != nil {
			var se *apperr.StorageError
			if errors.As(err, &se) {
				return err
			}
			telemetry.StrategyFailures.WithLabelValues(string(sw.reason)).Inc()
			s.logger.Warn("recommendation strategy failed softly",
				zap.String("strategy", string(sw.reason)),
				zap.String("user_id", userID.String()),
				zap.Error(err))
			continue
		}

		if err := s.insertCandidates(ctx, userID, sw.reason, candidates, quota); err != nil {
			return err
		}
	}
	return nil
}

func (s *RecommendationService) generateCandidates(ctx context.Context, userID uuid.UUID, reason models.RecommendationReason, quota int) ([]candidate, error) {
	switch reason {
	case models.ReasonSimilarContent:
		return s.similarContentCandidates(ctx, userID)
	case models.ReasonUserInterest:
		return s.interestCandidates(ctx, userID, quota)
	case models.ReasonAssessmentBased:
		return s.assessmentCandidates(ctx, userID)
	case models.ReasonPopular:
		return s.popularityCandidates(ctx, quota)
	case models.ReasonTrending:
		return s.trendingCandidates(ctx, trendingDayRange)
	case models.ReasonColleagueUsed:
		return s.colleagueCandidates(ctx, userID)
	}
	return nil, nil
}

// insertCandidates writes up to quota candidates, skipping any content the
// user already has a recommendation for in any status.
func (s *RecommendationService) insertCandidates(ctx context.Context, userID uuid.UUID, reason models.RecommendationReason, candidates []candidate, quota int) error {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	inserted := 0
	seen := make(map[uuid.UUID]struct{})
	for _, c := range candidates {
		if inserted >= quota {
			break
		}
		if _, dup := seen[c.contentID]; dup {
			continue
		}
		seen[c.contentID] = struct{}{}

		exists, err := s.store.RecommendationExists(ctx, userID, c.contentID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		rec := &models.Recommendation{
			UserID:    userID,
			ContentID: c.contentID,
			Score:     c.score,
			Reason:    reason,
			Status:    models.RecommendationActive,
		}
		err = s.store.CreateRecommendation(ctx, rec)
		if err != nil {
			var ce *apperr.ConflictError
			if errors.As(err, &ce) {
				// lost a concurrent insert race for the same pair
				continue
			}
			return err
		}
		telemetry.RecommendationsGenerated.WithLabelValues(string(reason)).Inc()
		inserted++
	}
	return nil
}

// similarContentCandidates walks similarity edges from the user's five most
// recent interactions; the candidate score is the edge's similarity score.
func (s *RecommendationService) similarContentCandidates(ctx context.Context, userID uuid.UUID) ([]candidate, error) {
	recent, err := s.store.GetUserInteractions(ctx, userID, recentInteractionsForSimilar)
	if err != nil {
		return nil, err
	}

	interacted := make(map[uuid.UUID]struct{}, len(recent))
	for i := range recent {
		interacted[recent[i].ContentID] = struct{}{}
	}

	var candidates []candidate
	for i := range recent {
		edges, err := s.store.GetContentSimilarities(ctx, recent[i].ContentID, nil)
		if err != nil {
			return nil, err
		}
		for j := range edges {
			neighbor := edges[j].OtherContentID(recent[i].ContentID)
			if _, own := interacted[neighbor]; own {
				continue
			}
			candidates = append(candidates, candidate{contentID: neighbor, score: edges[j].SimilarityScore})
		}
	}
	return candidates, nil
}

// interestCandidates matches each interest area against content titles and
// descriptions; the candidate score is the interest's confidence.
func (s *RecommendationService) interestCandidates(ctx context.Context, userID uuid.UUID, quota int) ([]candidate, error) {
	interests, err := s.store.GetUserInterests(ctx, userID)
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	for i := range interests {
		matches, err := s.store.SearchContent(ctx, interests[i].InterestArea, quota*2)
		if err != nil {
			return nil, err
		}
		for j := range matches {
			candidates = append(candidates, candidate{contentID: matches[j].ID, score: interests[i].Confidence})
		}
	}
	return candidates, nil
}

// assessmentCandidates pulls content linked to the user's recent assessment
// results; the candidate score is the stored relevance score of the link.
func (s *RecommendationService) assessmentCandidates(ctx context.Context, userID uuid.UUID) ([]candidate, error) {
	results, err := s.store.GetUserAssessmentResults(ctx, userID, recentInteractionsForSimilar)
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	for i := range results {
		links, err := s.store.GetContentForAssessmentResult(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
		for j := range links {
			candidates = append(candidates, candidate{contentID: links[j].ContentID, score: links[j].RelevanceScore})
		}
	}
	return candidates, nil
}

// popularityCandidates scores the most viewed items as view_count / 100.
// The score is deliberately not clamped; very popular items exceed 1.
func (s *RecommendationService) popularityCandidates(ctx context.Context, quota int) ([]candidate, error) {
	items, err := s.store.MostViewedContent(ctx, quota*2)
	if err != nil {
		return nil, err
	}

	candidates := make([]candidate, 0, len(items))
	for i := range items {
		if items[i].ViewCount == 0 {
			continue
		}
		candidates = append(candidates, candidate{
			contentID: items[i].ID,
			score:     float64(items[i].ViewCount) / popularityViewDivisor,
		})
	}
	return candidates, nil
}

// trendingCandidates scores items by interaction volume over the trailing
// dayRange days as recent_count / 50.
func (s *RecommendationService) trendingCandidates(ctx context.Context, dayRange int) ([]candidate, error) {
	since := s.now().AddDate(0, 0, -dayRange)
	counts, err := s.store.RecentInteractionCounts(ctx, since)
	if err != nil {
		return nil, err
	}

	candidates := make([]candidate, 0, len(counts))
	for contentID, count := range counts {
		candidates = append(candidates, candidate{
			contentID: contentID,
			score:     float64(count) / trendingInteractionDivisor,
		})
	}
	return candidates, nil
}

// colleagueCandidates scores content by how many users of the same
// organization viewed, bookmarked or rated it, as colleague_count / 10.
func (s *RecommendationService) colleagueCandidates(ctx context.Context, userID uuid.UUID) ([]candidate, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	colleagues, err := s.store.ListOrganizationUsers(ctx, user.OrganizationID, userID)
	if err != nil {
		return nil, err
	}
	if len(colleagues) == 0 {
		return nil, nil
	}

	colleagueIDs := make([]uuid.UUID, len(colleagues))
	for i := range colleagues {
		colleagueIDs[i] = colleagues[i].ID
	}
	interactions, err := s.store.InteractionsByUsers(ctx, colleagueIDs, []models.InteractionType{
		models.InteractionView,
		models.InteractionBookmark,
		models.InteractionRate,
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int)
	for i := range interactions {
		counts[interactions[i].ContentID]++
	}
	candidates := make([]candidate, 0, len(counts))
	for contentID, count := range counts {
		candidates = append(candidates, candidate{
			contentID: contentID,
			score:     float64(count) / colleagueInteractionDivisor,
		})
	}
	return candidates, nil
}

// ListRecommendations returns a user's recommendations matching the filter,
// plus the total count before pagination.
func (s *RecommendationService) ListRecommendations(ctx context.Context, userID uuid.UUID, filter storage.RecommendationFilter) ([]models.Recommendation, int64, error) {
	return s.store.GetUserRecommendations(ctx, userID, filter)
}

// UpdateRecommendationStatus performs a one-way status transition. Attempts
// to move a terminal recommendation are rejected with a ValidationError.
func (s *RecommendationService) UpdateRecommendationStatus(ctx context.Context, id uuid.UUID, status models.RecommendationStatus) (*models.Recommendation, error) {
	if !models.ValidRecommendationStatus(status) {
		return nil, apperr.NewValidation("status", "unknown status: "+string(status))
	}

	rec, err := s.store.GetRecommendation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.CanTransitionTo(status) {
		return nil, apperr.NewValidation("status",
			"cannot transition from "+string(rec.Status)+" to "+string(status))
	}

	now := s.now()
	rec.Status = status
	switch status {
	case models.RecommendationClicked:
		rec.ClickedAt = &now
	case models.RecommendationDismissed:
		rec.DismissedAt = &now
	}
	if err := s.store.SaveRecommendation(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkClicked transitions a recommendation to CLICKED.
func (s *RecommendationService) MarkClicked(ctx context.Context, id uuid.UUID) (*models.Recommendation, error) {
	return s.UpdateRecommendationStatus(ctx, id, models.RecommendationClicked)
}

// MarkDismissed transitions a recommendation to DISMISSED.
func (s *RecommendationService) MarkDismissed(ctx context.Context, id uuid.UUID) (*models.Recommendation, error) {
	return s.UpdateRecommendationStatus(ctx, id, models.RecommendationDismissed)
}

// ProcessRecommendationFeedback records explicit relevance feedback.
// Negative feedback forces a DISMISSED transition as a side effect.
func (s *RecommendationService) ProcessRecommendationFeedback(ctx context.Context, id uuid.UUID, isRelevant bool) (*models.Recommendation, error) {
	if !isRelevant {
		return s.MarkDismissed(ctx, id)
	}
	return s.store.GetRecommendation(ctx, id)
}

// ExpireStale sweeps ACTIVE recommendations older than the expiry threshold
// across all users. The background scheduler drives this.
func (s *RecommendationService) ExpireStale(ctx context.Context) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -recommendationExpiryDays)
	expired, err := s.store.ExpireRecommendations(ctx, nil, cutoff)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.logger.Info("expired stale recommendations", zap.Int64("count", expired))
	}
	return expired, nil
}
