package services

import (
	"context"
	"testing"

	"edurank/internal/models"
	"edurank/internal/storage"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSimilarityFixture() (*SimilarityService, *storage.MemoryAdapter) {
	store := storage.NewMemoryAdapter()
	return NewSimilarityService(store, zap.NewNop()), store
}

func createContent(t *testing.T, store storage.Adapter, title, description, contentType string, tags ...string) *models.ContentItem {
	t.Helper()
	item := &models.ContentItem{
		Title:       title,
		Description: description,
		ContentType: contentType,
		Tags:        pq.StringArray(tags),
	}
	require.NoError(t, store.CreateContentItem(context.Background(), item))
	return item
}

func TestTokenizeWords(t *testing.T) {
	words := tokenizeWords("The Quick, brown fox jumps over the lazy dog!")
	// words of length <= 3 are dropped; comparison is case-folded
	assert.Contains(t, words, "quick")
	assert.Contains(t, words, "jumps")
	assert.NotContains(t, words, "the")
	assert.NotContains(t, words, "fox")
	assert.NotContains(t, words, "dog")
}

func TestJaccardSimilarityBounds(t *testing.T) {
	a := tokenizeWords("linear algebra foundations for machine learning")
	b := tokenizeWords("linear algebra foundations for machine learning")
	c := tokenizeWords("organic chemistry laboratory safety procedures")

	assert.Equal(t, 1.0, jaccardSimilarity(a, b), "identical texts score 1.0")
	assert.Equal(t, 0.0, jaccardSimilarity(a, c), "disjoint vocabularies score 0.0")
	assert.Equal(t, 0.0, jaccardSimilarity(nil, nil), "empty sets score 0.0")

	partial := jaccardSimilarity(a, tokenizeWords("machine learning with neural networks"))
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 1.0)
}

func TestContentBasedSimilarity(t *testing.T) {
	service, store := newSimilarityFixture()
	ctx := context.Background()

	target := createContent(t, store, "Introduction to Linear Algebra",
		"vectors matrices eigenvalues decomposition", "COURSE")
	near := createContent(t, store, "Advanced Linear Algebra",
		"matrices eigenvalues spectral decomposition", "COURSE")
	far := createContent(t, store, "Renaissance Painting Techniques",
		"pigments brushwork composition chiaroscuro", "COURSE")
	createContent(t, store, "Linear Algebra Video Series",
		"vectors matrices eigenvalues decomposition", "VIDEO") // different type, never compared

	written, err := service.CalculateContentBasedSimilarity(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	typ := models.SimilarityContentBased
	edges, err := store.GetContentSimilarities(ctx, target.ID, &typ)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, near.ID, edges[0].OtherContentID(target.ID))
	assert.Greater(t, edges[0].SimilarityScore, contentScoreThreshold)
	assert.LessOrEqual(t, edges[0].SimilarityScore, 1.0)

	// the disjoint item is not stored as a zero edge
	edgesFar, err := store.GetContentSimilarities(ctx, far.ID, &typ)
	require.NoError(t, err)
	assert.Empty(t, edgesFar)
}

func TestContentBasedSimilarityIdempotent(t *testing.T) {
	service, store := newSimilarityFixture()
	ctx := context.Background()

	target := createContent(t, store, "Study Skills for First-Year Students",
		"planning notes revision exams strategies", "ARTICLE")
	createContent(t, store, "Revision Strategies Before Exams",
		"planning revision exams strategies practice", "ARTICLE")

	first, err := service.CalculateContentBasedSimilarity(ctx, target.ID)
	require.NoError(t, err)
	second, err := service.CalculateContentBasedSimilarity(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	typ := models.SimilarityContentBased
	edges, err := store.GetContentSimilarities(ctx, target.ID, &typ)
	require.NoError(t, err)
	assert.Len(t, edges, first, "recomputation upserts rather than duplicates")
}

func TestTagBasedSimilarityAsymmetricNormalization(t *testing.T) {
	service, store := newSimilarityFixture()
	ctx := context.Background()

	// target has 4 tags, candidate shares 2 of them but has only 2 tags total
	target := createContent(t, store, "Calculus Workbook", "", "ARTICLE",
		"math", "calculus", "exercises", "undergraduate")
	candidate := createContent(t, store, "Calculus Cheat Sheet", "", "ARTICLE",
		"math", "calculus")

	written, err := service.CalculateTagBasedSimilarity(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	typ := models.SimilarityTagBased
	edges, err := store.GetContentSimilarities(ctx, target.ID, &typ)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	// normalized by the target's tag count: 2 shared / 4 target tags
	assert.InDelta(t, 0.5, edges[0].SimilarityScore, 1e-9)

	// recomputed from the candidate's side the same edge becomes 2/2 = 1.0:
	// the normalization is by whichever item is the target of the run
	_, err = service.CalculateTagBasedSimilarity(ctx, candidate.ID)
	require.NoError(t, err)
	edges, err = store.GetContentSimilarities(ctx, candidate.ID, &typ)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.InDelta(t, 1.0, edges[0].SimilarityScore, 1e-9)
}

func TestTagBasedSimilarityNoTags(t *testing.T) {
	service, store := newSimilarityFixture()
	target := createContent(t, store, "Untagged", "", "ARTICLE")

	written, err := service.CalculateTagBasedSimilarity(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Zero(t, written)
}

func TestCollaborativeSimilarity(t *testing.T) {
	service, store := newSimilarityFixture()
	ctx := context.Background()

	contentA := createContent(t, store, "Content A", "", "ARTICLE")
	contentB := createContent(t, store, "Content B", "", "ARTICLE")

	u1, u2, u3, u4 := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	for _, userID := range []uuid.UUID{u1, u2, u3} {
		require.NoError(t, store.CreateContentInteraction(ctx, &models.ContentInteraction{
			UserID: userID, ContentID: contentA.ID, InteractionType: models.InteractionView,
		}))
	}
	for _, userID := range []uuid.UUID{u2, u3, u4} {
		require.NoError(t, store.CreateContentInteraction(ctx, &models.ContentInteraction{
			UserID: userID, ContentID: contentB.ID, InteractionType: models.InteractionView,
		}))
	}

	written, err := service.CalculateCollaborativeSimilarity(ctx, contentA.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	typ := models.SimilarityCollaborative
	edges, err := store.GetContentSimilarities(ctx, contentA.ID, &typ)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	// |{u2,u3}| / |{u1,u2,u3}| = 2/3
	assert.InDelta(t, 2.0/3.0, edges[0].SimilarityScore, 1e-9)
	assert.Equal(t, contentB.ID, edges[0].OtherContentID(contentA.ID))
}

func TestCollaborativeSimilarityRequiresTwoSharedUsers(t *testing.T) {
	service, store := newSimilarityFixture()
	ctx := context.Background()

	contentA := createContent(t, store, "Content A", "", "ARTICLE")
	contentB := createContent(t, store, "Content B", "", "ARTICLE")

	shared := uuid.New()
	require.NoError(t, store.CreateContentInteraction(ctx, &models.ContentInteraction{
		UserID: shared, ContentID: contentA.ID, InteractionType: models.InteractionView,
	}))
	require.NoError(t, store.CreateContentInteraction(ctx, &models.ContentInteraction{
		UserID: shared, ContentID: contentB.ID, InteractionType: models.InteractionView,
	}))

	written, err := service.CalculateCollaborativeSimilarity(ctx, contentA.ID)
	require.NoError(t, err)
	assert.Zero(t, written, "a single shared user is below the overlap floor")
}

func TestCollaborativeSimilarityNoInteractions(t *testing.T) {
	service, store := newSimilarityFixture()
	target := createContent(t, store, "Lonely Content", "", "ARTICLE")

	written, err := service.CalculateCollaborativeSimilarity(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Zero(t, written)
}
