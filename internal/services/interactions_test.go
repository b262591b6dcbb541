package services

import (
	"context"
	"testing"

	"edurank/internal/apperr"
	"edurank/internal/models"
	"edurank/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newInteractionFixture() (*InteractionService, *storage.MemoryAdapter) {
	store := storage.NewMemoryAdapter()
	return NewInteractionService(store, zap.NewNop()), store
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func TestRecordInteraction(t *testing.T) {
	service, store := newInteractionFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	item := createContent(t, store, "Linear Algebra Notes", "", "ARTICLE")

	t.Run("view bumps the content counter", func(t *testing.T) {
		interaction, err := service.RecordInteraction(ctx, user.ID, item.ID, models.InteractionView, nil)
		require.NoError(t, err)
		assert.Equal(t, models.InteractionView, interaction.InteractionType)
		assert.NotEqual(t, uuid.Nil, interaction.ID)

		reloaded, err := store.GetContentItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, reloaded.ViewCount)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := service.RecordInteraction(ctx, user.ID, item.ID, "SNEEZE", nil)
		require.Error(t, err)
		var ve *apperr.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("rating only valid on RATE", func(t *testing.T) {
		_, err := service.RecordInteraction(ctx, user.ID, item.ID, models.InteractionView,
			&models.InteractionDetails{Rating: intPtr(4)})
		var ve *apperr.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("RATE requires a rating", func(t *testing.T) {
		_, err := service.RecordInteraction(ctx, user.ID, item.ID, models.InteractionRate, nil)
		var ve *apperr.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("rating bounds", func(t *testing.T) {
		for _, rating := range []int{0, 6, -1} {
			_, err := service.RecordInteraction(ctx, user.ID, item.ID, models.InteractionRate,
				&models.InteractionDetails{Rating: intPtr(rating)})
			assert.Error(t, err, "rating %d should be rejected", rating)
		}
	})

	t.Run("completion percentage bounds", func(t *testing.T) {
		_, err := service.RecordInteraction(ctx, user.ID, item.ID, models.InteractionRead,
			&models.InteractionDetails{CompletionPercentage: floatPtr(100.5)})
		var ve *apperr.ValidationError
		assert.ErrorAs(t, err, &ve)

		interaction, err := service.RecordInteraction(ctx, user.ID, item.ID, models.InteractionRead,
			&models.InteractionDetails{CompletionPercentage: floatPtr(87.5), DurationSeconds: intPtr(420)})
		require.NoError(t, err)
		require.NotNil(t, interaction.CompletionPercentage)
		assert.Equal(t, 87.5, *interaction.CompletionPercentage)
	})
}

func TestRecordBookmarkIsIdempotent(t *testing.T) {
	service, store := newInteractionFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	item := createContent(t, store, "Bookmarked Once", "", "ARTICLE")

	first, err := service.RecordInteraction(ctx, user.ID, item.ID, models.InteractionBookmark, nil)
	require.NoError(t, err)

	second, err := service.RecordInteraction(ctx, user.ID, item.ID, models.InteractionBookmark, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "re-recording a bookmark returns the existing row")

	stats, err := service.GetContentPopularityStats(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Bookmarks)

	// the toggle still removes the single row
	toggle, err := service.ToggleBookmark(ctx, user.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, toggle.Bookmarked)
	assert.Equal(t, first.ID, toggle.Interaction.ID)
}

func TestToggleBookmarkRoundTrip(t *testing.T) {
	service, store := newInteractionFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	item := createContent(t, store, "Bookmarkable", "", "ARTICLE")

	first, err := service.ToggleBookmark(ctx, user.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, first.Bookmarked)
	assert.True(t, first.Interaction.Bookmarked)

	second, err := service.ToggleBookmark(ctx, user.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, second.Bookmarked)
	assert.Equal(t, first.Interaction.ID, second.Interaction.ID)

	// back to the original state: no bookmark row remains
	existing, err := store.FindInteraction(ctx, user.ID, item.ID, models.InteractionBookmark)
	require.NoError(t, err)
	assert.Nil(t, existing)

	third, err := service.ToggleBookmark(ctx, user.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, third.Bookmarked)
	assert.NotEqual(t, first.Interaction.ID, third.Interaction.ID)
}

func TestRateContentUpsertsInPlace(t *testing.T) {
	service, store := newInteractionFixture()
	ctx := context.Background()

	user := createOrgUser(t, store, uuid.New())
	item := createContent(t, store, "Ratable", "", "VIDEO")

	first, err := service.RateContent(ctx, user.ID, item.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 3, *first.Rating)

	second, err := service.RateContent(ctx, user.ID, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "re-rating updates the existing row")
	assert.Equal(t, 5, *second.Rating)

	avg, count, err := store.AverageContentRating(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 5.0, avg)

	_, err = service.RateContent(ctx, user.ID, item.ID, 0)
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestGetContentPopularityStats(t *testing.T) {
	service, store := newInteractionFixture()
	ctx := context.Background()

	item := createContent(t, store, "Stats Target", "", "ARTICLE")
	alice := createOrgUser(t, store, uuid.New())
	bob := createOrgUser(t, store, uuid.New())

	for _, typ := range []models.InteractionType{
		models.InteractionView, models.InteractionView, models.InteractionRead,
		models.InteractionDownload, models.InteractionShare,
	} {
		_, err := service.RecordInteraction(ctx, alice.ID, item.ID, typ, nil)
		require.NoError(t, err)
	}
	_, err := service.ToggleBookmark(ctx, bob.ID, item.ID)
	require.NoError(t, err)
	_, err = service.RateContent(ctx, alice.ID, item.ID, 4)
	require.NoError(t, err)
	_, err = service.RateContent(ctx, bob.ID, item.ID, 2)
	require.NoError(t, err)

	stats, err := service.GetContentPopularityStats(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Views)
	assert.Equal(t, int64(1), stats.Reads)
	assert.Equal(t, int64(1), stats.Downloads)
	assert.Equal(t, int64(1), stats.Shares)
	assert.Equal(t, int64(1), stats.Bookmarks)
	assert.Equal(t, int64(2), stats.RatingCount)
	assert.Equal(t, 3.0, stats.AverageRating)
}

func TestGetContentPopularityStatsEmpty(t *testing.T) {
	service, _ := newInteractionFixture()

	stats, err := service.GetContentPopularityStats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, stats.Views)
	assert.Zero(t, stats.RatingCount)
	assert.Zero(t, stats.AverageRating)
}
