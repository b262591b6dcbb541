package services

import (
	"context"
	"testing"
	"time"

	"edurank/internal/models"
	"edurank/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRecommendationFixture() (*RecommendationService, *storage.MemoryAdapter) {
	store := storage.NewMemoryAdapter()
	return NewRecommendationService(store, zap.NewNop()), store
}

func createOrgUser(t *testing.T, store storage.Adapter, orgID uuid.UUID) *models.User {
	t.Helper()
	user := &models.User{
		Email:          uuid.NewString() + "@example.edu",
		OrganizationID: orgID,
		IsActive:       true,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestGenerateRecommendations_ColdStartUsesPopularityAndTrending(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	orgID := uuid.New()
	user := createOrgUser(t, store, orgID)

	// popular content with view history, plus recent interactions from
	// another organization's users so trending has signal
	popular := createContent(t, store, "Campus Orientation Guide", "", "ARTICLE")
	popular.ViewCount = 250
	require.NoError(t, store.CreateContentItem(ctx, popular)) // re-add with views
	other := createOrgUser(t, store, uuid.New())
	for i := 0; i < 5; i++ {
		require.NoError(t, store.CreateContentInteraction(ctx, &models.ContentInteraction{
			UserID: other.ID, ContentID: popular.ID, InteractionType: models.InteractionView,
		}))
	}

	result, err := service.GenerateRecommendations(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.True(t, result.Triggered)
	require.NotEmpty(t, result.Recommendations)

	for _, rec := range result.Recommendations {
		assert.Contains(t, []models.RecommendationReason{
			models.ReasonPopular, models.ReasonTrending,
		}, rec.Reason, "cold-start users only get popularity and trending sources")
	}
}

func TestGenerateRecommendations_EmptyWorldDoesNotError(t *testing.T) {
	service, store := newRecommendationFixture()
	user := createOrgUser(t, store, uuid.New())

	result, err := service.GenerateRecommendations(context.Background(), user.ID, 20)
	require.NoError(t, err)
	assert.True(t, result.Triggered)
	assert.Empty(t, result.Recommendations)
}

func TestGenerateRecommendations_ActiveUniquenessPerPair(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	popular := createContent(t, store, "Deep Work Habits", "", "ARTICLE")
	popular.ViewCount = 500
	require.NoError(t, store.CreateContentItem(ctx, popular))

	for i := 0; i < 3; i++ {
		_, err := service.GenerateRecommendations(ctx, user.ID, 20)
		require.NoError(t, err)
	}

	status := models.RecommendationActive
	recs, _, err := store.GetUserRecommendations(ctx, user.ID, storage.RecommendationFilter{Status: &status})
	require.NoError(t, err)

	seen := make(map[uuid.UUID]int)
	for _, rec := range recs {
		seen[rec.ContentID]++
	}
	for contentID, n := range seen {
		assert.Equal(t, 1, n, "duplicate ACTIVE recommendation for content %s", contentID)
	}
}

func TestGenerateRecommendations_ReturnsExistingWhenSaturated(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	for i := 0; i < 5; i++ {
		item := createContent(t, store, "Item", "", "ARTICLE")
		require.NoError(t, store.CreateRecommendation(ctx, &models.Recommendation{
			UserID:    user.ID,
			ContentID: item.ID,
			Score:     float64(i) / 10,
			Reason:    models.ReasonPopular,
			Status:    models.RecommendationActive,
		}))
	}

	result, err := service.GenerateRecommendations(ctx, user.ID, 5)
	require.NoError(t, err)
	assert.False(t, result.Triggered, "saturated users get the existing set back")
	assert.Len(t, result.Recommendations, 5)

	// sorted by score descending
	for i := 1; i < len(result.Recommendations); i++ {
		assert.GreaterOrEqual(t, result.Recommendations[i-1].Score, result.Recommendations[i].Score)
	}
}

func TestGenerateRecommendations_SweepsExpiredFirst(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	item := createContent(t, store, "Old News", "", "ARTICLE")

	stale := &models.Recommendation{
		UserID:    user.ID,
		ContentID: item.ID,
		Reason:    models.ReasonPopular,
		Status:    models.RecommendationActive,
		CreatedAt: time.Now().AddDate(0, 0, -31),
	}
	require.NoError(t, store.CreateRecommendation(ctx, stale))

	_, err := service.GenerateRecommendations(ctx, user.ID, 20)
	require.NoError(t, err)

	reloaded, err := store.GetRecommendation(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationExpired, reloaded.Status)
}

func TestGenerateRecommendations_HardLimitAfterQuotaOvershoot(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	for i := 0; i < 30; i++ {
		item := createContent(t, store, "Popular Item", "", "ARTICLE")
		item.ViewCount = 100 + i
		require.NoError(t, store.CreateContentItem(ctx, item))
	}

	result, err := service.GenerateRecommendations(ctx, user.ID, 5)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Recommendations), 5,
		"independent ceil() quotas may overshoot, the final read caps at limit")
}

func TestGenerateRecommendations_SimilarContentStrategy(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	seen := createContent(t, store, "Read Already", "", "ARTICLE")
	neighbor := createContent(t, store, "Neighbor", "", "ARTICLE")

	require.NoError(t, store.CreateContentInteraction(ctx, &models.ContentInteraction{
		UserID: user.ID, ContentID: seen.ID, InteractionType: models.InteractionRead,
	}))
	require.NoError(t, store.UpsertContentSimilarity(ctx, &models.ContentSimilarity{
		ContentIDA:      seen.ID,
		ContentIDB:      neighbor.ID,
		SimilarityScore: 0.85,
		SimilarityType:  models.SimilarityContentBased,
	}))

	result, err := service.GenerateRecommendations(ctx, user.ID, 20)
	require.NoError(t, err)

	var found *models.Recommendation
	for i := range result.Recommendations {
		if result.Recommendations[i].ContentID == neighbor.ID {
			found = &result.Recommendations[i]
		}
		if result.Recommendations[i].Reason == models.ReasonSimilarContent {
			assert.NotEqual(t, seen.ID, result.Recommendations[i].ContentID,
				"already-interacted content is not re-recommended by the similar-content strategy")
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, models.ReasonSimilarContent, found.Reason)
	assert.Equal(t, 0.85, found.Score, "the neighbor edge score is the candidate score")
}

func TestGenerateRecommendations_InterestStrategy(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	match := createContent(t, store, "Spaced Repetition in Practice", "memory techniques", "ARTICLE")
	createContent(t, store, "Unrelated", "nothing to see", "ARTICLE")

	require.NoError(t, store.CreateUserInterest(ctx, &models.UserInterest{
		UserID:       user.ID,
		InterestArea: "spaced repetition",
		Confidence:   0.9,
		Source:       models.InterestSourceExplicit,
	}))

	result, err := service.GenerateRecommendations(ctx, user.ID, 20)
	require.NoError(t, err)

	var found *models.Recommendation
	for i := range result.Recommendations {
		if result.Recommendations[i].ContentID == match.ID {
			found = &result.Recommendations[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, models.ReasonUserInterest, found.Reason)
	assert.Equal(t, 0.9, found.Score, "interest confidence is the candidate score")
}

func TestGenerateRecommendations_ColleagueStrategy(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	orgID := uuid.New()
	user := createOrgUser(t, store, orgID)
	colleagueA := createOrgUser(t, store, orgID)
	colleagueB := createOrgUser(t, store, orgID)
	outsider := createOrgUser(t, store, uuid.New())

	item := createContent(t, store, "Org Favorite", "", "ARTICLE")
	for _, u := range []*models.User{colleagueA, colleagueB} {
		require.NoError(t, store.CreateContentInteraction(ctx, &models.ContentInteraction{
			UserID: u.ID, ContentID: item.ID, InteractionType: models.InteractionView,
		}))
	}
	// outsider interactions and non-qualifying types must not count
	require.NoError(t, store.CreateContentInteraction(ctx, &models.ContentInteraction{
		UserID: outsider.ID, ContentID: item.ID, InteractionType: models.InteractionView,
	}))
	require.NoError(t, store.CreateContentInteraction(ctx, &models.ContentInteraction{
		UserID: colleagueA.ID, ContentID: item.ID, InteractionType: models.InteractionPrint,
	}))

	candidates, err := service.colleagueCandidates(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, item.ID, candidates[0].contentID)
	assert.InDelta(t, 2.0/10.0, candidates[0].score, 1e-9)
}

func TestGenerateRecommendations_AssessmentStrategy(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	remedial := createContent(t, store, "Fractions Refresher", "", "COURSE")

	result := &models.AssessmentResult{
		UserID:       user.ID,
		AssessmentID: uuid.New(),
		Score:        0.4,
		CompletedAt:  time.Now(),
	}
	require.NoError(t, store.CreateAssessmentResult(ctx, result))
	require.NoError(t, store.CreateAssessmentContentLink(ctx, &models.AssessmentContentLink{
		AssessmentResultID: result.ID,
		ContentID:          remedial.ID,
		RelevanceScore:     0.75,
	}))

	candidates, err := service.assessmentCandidates(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, remedial.ID, candidates[0].contentID)
	assert.Equal(t, 0.75, candidates[0].score)
}

func TestPopularityScoreNotClamped(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	item := createContent(t, store, "Viral Lecture", "", "VIDEO")
	item.ViewCount = 1000
	require.NoError(t, store.CreateContentItem(ctx, item))

	candidates, err := service.popularityCandidates(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.Equal(t, 10.0, candidates[0].score, "view_count/100 is not clamped above 1")
}

func TestUpdateRecommendationStatus_Monotonic(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	item := createContent(t, store, "Some Item", "", "ARTICLE")
	rec := &models.Recommendation{
		UserID:    user.ID,
		ContentID: item.ID,
		Reason:    models.ReasonPopular,
		Status:    models.RecommendationActive,
	}
	require.NoError(t, store.CreateRecommendation(ctx, rec))

	clicked, err := service.MarkClicked(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationClicked, clicked.Status)
	require.NotNil(t, clicked.ClickedAt)

	// terminal states admit no further transitions
	_, err = service.MarkDismissed(ctx, rec.ID)
	assert.Error(t, err)
	_, err = service.UpdateRecommendationStatus(ctx, rec.ID, models.RecommendationActive)
	assert.Error(t, err)

	reloaded, err := store.GetRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationClicked, reloaded.Status)
}

func TestUpdateRecommendationStatus_UnknownStatusRejected(t *testing.T) {
	service, _ := newRecommendationFixture()
	_, err := service.UpdateRecommendationStatus(context.Background(), uuid.New(), "ARCHIVED")
	assert.Error(t, err)
}

func TestProcessRecommendationFeedback(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	item := createContent(t, store, "Maybe Relevant", "", "ARTICLE")
	rec := &models.Recommendation{
		UserID:    user.ID,
		ContentID: item.ID,
		Reason:    models.ReasonTrending,
		Status:    models.RecommendationActive,
	}
	require.NoError(t, store.CreateRecommendation(ctx, rec))

	t.Run("negative feedback dismisses", func(t *testing.T) {
		updated, err := service.ProcessRecommendationFeedback(ctx, rec.ID, false)
		require.NoError(t, err)
		assert.Equal(t, models.RecommendationDismissed, updated.Status)
		assert.NotNil(t, updated.DismissedAt)
	})

	t.Run("positive feedback leaves status alone", func(t *testing.T) {
		other := &models.Recommendation{
			UserID:    user.ID,
			ContentID: createContent(t, store, "Another", "", "ARTICLE").ID,
			Reason:    models.ReasonTrending,
			Status:    models.RecommendationActive,
		}
		require.NoError(t, store.CreateRecommendation(ctx, other))

		updated, err := service.ProcessRecommendationFeedback(ctx, other.ID, true)
		require.NoError(t, err)
		assert.Equal(t, models.RecommendationActive, updated.Status)
	})
}

func TestExpireStaleSweepsAllUsers(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		user := createOrgUser(t, store, uuid.New())
		item := createContent(t, store, "Stale", "", "ARTICLE")
		require.NoError(t, store.CreateRecommendation(ctx, &models.Recommendation{
			UserID:    user.ID,
			ContentID: item.ID,
			Reason:    models.ReasonPopular,
			Status:    models.RecommendationActive,
			CreatedAt: time.Now().AddDate(0, 0, -45),
		}))
	}

	expired, err := service.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)
}

func TestListRecommendationsFilters(t *testing.T) {
	service, store := newRecommendationFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	article := createContent(t, store, "Article", "", "ARTICLE", "math")
	video := createContent(t, store, "Video", "", "VIDEO")

	require.NoError(t, store.CreateRecommendation(ctx, &models.Recommendation{
		UserID: user.ID, ContentID: article.ID, Score: 0.9,
		Reason: models.ReasonPopular, Status: models.RecommendationActive,
	}))
	require.NoError(t, store.CreateRecommendation(ctx, &models.Recommendation{
		UserID: user.ID, ContentID: video.ID, Score: 0.2,
		Reason: models.ReasonTrending, Status: models.RecommendationActive,
	}))

	t.Run("min score", func(t *testing.T) {
		minScore := 0.5
		recs, count, err := service.ListRecommendations(ctx, user.ID, storage.RecommendationFilter{MinScore: &minScore})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		require.Len(t, recs, 1)
		assert.Equal(t, article.ID, recs[0].ContentID)
	})

	t.Run("content type", func(t *testing.T) {
		contentType := "VIDEO"
		recs, count, err := service.ListRecommendations(ctx, user.ID, storage.RecommendationFilter{ContentType: &contentType})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		require.Len(t, recs, 1)
		assert.Equal(t, video.ID, recs[0].ContentID)
	})

	t.Run("tag", func(t *testing.T) {
		tag := "math"
		_, count, err := service.ListRecommendations(ctx, user.ID, storage.RecommendationFilter{TagID: &tag})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("count is pre-pagination total", func(t *testing.T) {
		recs, count, err := service.ListRecommendations(ctx, user.ID, storage.RecommendationFilter{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
		assert.Len(t, recs, 1)
	})
}
