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

func TestHIndex(t *testing.T) {
	t.Run("standard citation profile", func(t *testing.T) {
		assert.Equal(t, 4, HIndex([]int{10, 8, 5, 4, 3}))
	})

	t.Run("all zero citations", func(t *testing.T) {
		assert.Equal(t, 0, HIndex([]int{0, 0, 0}))
	})

	t.Run("single highly cited publication", func(t *testing.T) {
		assert.Equal(t, 1, HIndex([]int{100}))
	})

	t.Run("empty list", func(t *testing.T) {
		assert.Equal(t, 0, HIndex(nil))
	})

	t.Run("unsorted input", func(t *testing.T) {
		assert.Equal(t, 4, HIndex([]int{3, 10, 4, 8, 5}))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		counts := []int{3, 10, 4}
		HIndex(counts)
		assert.Equal(t, []int{3, 10, 4}, counts)
	})
}

func TestGIndex(t *testing.T) {
	t.Run("cumulative sums exceed squares", func(t *testing.T) {
		// cumulative sums 10,18,23,27,30; 30 >= 25 so g = 5
		assert.Equal(t, 5, GIndex([]int{10, 8, 5, 4, 3}))
	})

	t.Run("empty list", func(t *testing.T) {
		assert.Equal(t, 0, GIndex(nil))
	})

	t.Run("all zero citations", func(t *testing.T) {
		assert.Equal(t, 0, GIndex([]int{0, 0, 0}))
	})

	t.Run("g-index at least h-index", func(t *testing.T) {
		counts := []int{25, 19, 12, 7, 7, 5, 2, 1}
		assert.GreaterOrEqual(t, GIndex(counts), HIndex(counts))
	})
}

func TestI10Index(t *testing.T) {
	assert.Equal(t, 2, I10Index([]int{12, 10, 9, 5}))
	assert.Equal(t, 0, I10Index(nil))
	assert.Equal(t, 0, I10Index([]int{9, 9, 9}))
}

func TestAltmetricComposite(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, AltmetricComposite(10, 2, 3, 1, 4), AltmetricComposite(10, 2, 3, 1, 4))
	})

	t.Run("zero mentions yield zero", func(t *testing.T) {
		assert.Equal(t, 0.0, AltmetricComposite(0, 0, 0, 0, 0))
	})

	t.Run("monotonic in every source", func(t *testing.T) {
		base := AltmetricComposite(5, 5, 5, 5, 5)
		assert.Greater(t, AltmetricComposite(6, 5, 5, 5, 5), base)
		assert.Greater(t, AltmetricComposite(5, 6, 5, 5, 5), base)
		assert.Greater(t, AltmetricComposite(5, 5, 6, 5, 5), base)
		assert.Greater(t, AltmetricComposite(5, 5, 5, 6, 5), base)
		assert.Greater(t, AltmetricComposite(5, 5, 5, 5, 6), base)
	})
}

func TestCitationSignificance(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	t.Run("weighted sum of annotations", func(t *testing.T) {
		citation := models.Citation{
			Importance:   intPtr(8),
			Explicitness: intPtr(5),
			Centrality:   intPtr(7),
		}
		// 0.4*8 + 0.3*5 + 0.3*7 = 6.8
		assert.InDelta(t, 6.8, citation.SignificanceScore(), 1e-9)
	})

	t.Run("zero when semantics absent", func(t *testing.T) {
		citation := models.Citation{Importance: intPtr(8)}
		assert.Equal(t, 0.0, citation.SignificanceScore())
	})

	t.Run("clamped to ten", func(t *testing.T) {
		citation := models.Citation{
			Importance:   intPtr(10),
			Explicitness: intPtr(10),
			Centrality:   intPtr(10),
		}
		assert.Equal(t, 10.0, citation.SignificanceScore())
	})
}

func seedResearcher(t *testing.T, store storage.Adapter, citationCounts []int) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	researcherID := uuid.New()
	for i, count := range citationCounts {
		doi := uuid.NewString()
		pub := &models.Publication{
			Title:         "publication",
			DOI:           &doi,
			Field:         "education",
			CitationCount: count,
			Authors: []models.PublicationAuthor{
				{ResearcherID: researcherID, Position: i + 1},
			},
		}
		require.NoError(t, store.CreatePublication(ctx, pub))
	}
	return researcherID
}

func TestCalculateResearcherMetrics(t *testing.T) {
	store := storage.NewMemoryAdapter()
	service := NewImpactService(store, zap.NewNop())
	ctx := context.Background()

	researcherID := seedResearcher(t, store, []int{10, 8, 5, 4, 3})

	metrics, err := service.CalculateResearcherMetrics(ctx, researcherID)
	require.NoError(t, err)

	assert.Equal(t, 5, metrics.PublicationCount)
	assert.Equal(t, 30, metrics.TotalCitations)
	assert.Equal(t, 4, metrics.HIndex)
	assert.Equal(t, 5, metrics.GIndex)
	assert.Equal(t, 1, metrics.I10Index)
	assert.InDelta(t, 6.0, metrics.CitationsPerPaper, 1e-9)

	// results are appended to the researcher's metric history
	record, err := store.GetMetricRecord(ctx, researcherID, models.EntityResearcher, models.MetricHIndex, "")
	require.NoError(t, err)
	require.Len(t, record.Values, 1)
	assert.Equal(t, 4.0, record.Values[0].Value)
	assert.Equal(t, metricSource, record.Values[0].Source)
}

func TestCalculateResearcherMetrics_NoPublications(t *testing.T) {
	store := storage.NewMemoryAdapter()
	service := NewImpactService(store, zap.NewNop())

	metrics, err := service.CalculateResearcherMetrics(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 0, metrics.HIndex)
	assert.Equal(t, 0, metrics.GIndex)
	assert.Equal(t, 0, metrics.I10Index)
	assert.Equal(t, 0.0, metrics.CitationsPerPaper)
}

func TestCalculateResearcherMetrics_HistoryAppends(t *testing.T) {
	store := storage.NewMemoryAdapter()
	service := NewImpactService(store, zap.NewNop())
	ctx := context.Background()

	researcherID := seedResearcher(t, store, []int{12, 11, 10})

	_, err := service.CalculateResearcherMetrics(ctx, researcherID)
	require.NoError(t, err)
	_, err = service.CalculateResearcherMetrics(ctx, researcherID)
	require.NoError(t, err)

	record, err := store.GetMetricRecord(ctx, researcherID, models.EntityResearcher, models.MetricHIndex, "")
	require.NoError(t, err)
	assert.Len(t, record.Values, 2, "recomputation appends, never overwrites")
}

func TestLatestMetricValueByDate(t *testing.T) {
	record := models.ImpactMetricRecord{
		Values: []models.MetricValue{
			{Value: 3, Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
			{Value: 5, Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
			{Value: 4, Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	latest := record.LatestValue()
	require.NotNil(t, latest)
	assert.Equal(t, 5.0, latest.Value, "latest is max by date, not by append order")
}

func TestCalculateFieldNormalizedImpact(t *testing.T) {
	store := storage.NewMemoryAdapter()
	service := NewImpactService(store, zap.NewNop())
	ctx := context.Background()

	researcherID := seedResearcher(t, store, []int{20, 20, 41})

	impact, err := service.CalculateFieldNormalizedImpact(ctx, researcherID, "education")
	require.NoError(t, err)
	assert.InDelta(t, 81.0/8.1, impact, 1e-9)

	t.Run("unknown field falls back to default average", func(t *testing.T) {
		impact, err := service.CalculateFieldNormalizedImpact(ctx, researcherID, "underwater_basket_weaving")
		require.NoError(t, err)
		assert.InDelta(t, 8.1, impact, 1e-9)
	})
}

func TestCalculatePublicationAltmetrics(t *testing.T) {
	store := storage.NewMemoryAdapter()
	service := NewImpactService(store, zap.NewNop())
	ctx := context.Background()

	pub := &models.Publication{
		Title:             "attention in the classroom",
		SocialMentions:    40,
		NewsMentions:      2,
		BlogMentions:      3,
		PolicyMentions:    1,
		WikipediaMentions: 1,
	}
	require.NoError(t, store.CreatePublication(ctx, pub))

	score, err := service.CalculatePublicationAltmetrics(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, AltmetricComposite(40, 2, 3, 1, 1), score)

	record, err := store.GetMetricRecord(ctx, pub.ID, models.EntityPublication, models.MetricAltmetricScore, "")
	require.NoError(t, err)
	require.Len(t, record.Values, 1)
	assert.Equal(t, score, record.Values[0].Value)
}

func TestPublicationIdentifierConflict(t *testing.T) {
	store := storage.NewMemoryAdapter()
	service := NewPublicationService(store, zap.NewNop())
	ctx := context.Background()

	doi := "10.1000/edu.2026.001"
	_, err := service.CreatePublication(ctx, &models.Publication{Title: "first", DOI: &doi})
	require.NoError(t, err)

	_, err = service.CreatePublication(ctx, &models.Publication{Title: "second", DOI: &doi})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflict")
}

func TestRecordCitationIncrementsTargetCount(t *testing.T) {
	store := storage.NewMemoryAdapter()
	service := NewPublicationService(store, zap.NewNop())
	ctx := context.Background()

	source := &models.Publication{Title: "citing paper"}
	target := &models.Publication{Title: "cited paper"}
	require.NoError(t, store.CreatePublication(ctx, source))
	require.NoError(t, store.CreatePublication(ctx, target))

	_, err := service.RecordCitation(ctx, &models.Citation{
		SourcePublicationID: source.ID,
		TargetPublicationID: target.ID,
		CitationType:        models.CitationDirect,
	})
	require.NoError(t, err)

	reloaded, err := store.GetPublication(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.CitationCount)
}

func TestRecordCitationValidation(t *testing.T) {
	store := storage.NewMemoryAdapter()
	service := NewPublicationService(store, zap.NewNop())
	ctx := context.Background()

	pub := &models.Publication{Title: "solo"}
	require.NoError(t, store.CreatePublication(ctx, pub))

	t.Run("self citation rejected", func(t *testing.T) {
		_, err := service.RecordCitation(ctx, &models.Citation{
			SourcePublicationID: pub.ID,
			TargetPublicationID: pub.ID,
		})
		assert.Error(t, err)
	})

	t.Run("annotation out of range rejected", func(t *testing.T) {
		other := &models.Publication{Title: "other"}
		require.NoError(t, store.CreatePublication(ctx, other))
		eleven := 11
		_, err := service.RecordCitation(ctx, &models.Citation{
			SourcePublicationID: pub.ID,
			TargetPublicationID: other.ID,
			Importance:          &eleven,
		})
		assert.Error(t, err)
	})
}
