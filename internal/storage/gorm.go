package storage

import (
	"context"
	"errors"
	"time"

	"edurank/internal/apperr"
	"edurank/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAdapter implements Adapter on top of a gorm PostgreSQL connection.
// The *gorm.DB must be opened with TranslateError enabled so duplicate-key
// violations surface as gorm.ErrDuplicatedKey.
type GormAdapter struct {
	db *gorm.DB
}

// NewGormAdapter creates a storage adapter backed by the given connection.
func NewGormAdapter(db *gorm.DB) *GormAdapter {
	return &GormAdapter{db: db}
}

var _ Adapter = (*GormAdapter)(nil)

// --- users ---

func (a *GormAdapter) CreateUser(ctx context.Context, user *models.User) error {
	err := a.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.NewConflict("user", "email already registered")
	}
	return apperr.WrapStorage("CreateUser", err)
}

func (a *GormAdapter) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFound("user", id.String())
	}
	if err != nil {
		return nil, apperr.WrapStorage("GetUser", err)
	}
	return &user, nil
}

func (a *GormAdapter) ListOrganizationUsers(ctx context.Context, orgID, excludeUserID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := a.db.WithContext(ctx).
		Where("organization_id = ? AND id != ? AND is_active = ?", orgID, excludeUserID, true).
		Find(&users).Error
	return users, apperr.WrapStorage("ListOrganizationUsers", err)
}

// --- interests ---

func (a *GormAdapter) CreateUserInterest(ctx context.Context, interest *models.UserInterest) error {
	return apperr.WrapStorage("CreateUserInterest", a.db.WithContext(ctx).Create(interest).Error)
}

func (a *GormAdapter) GetUserInterests(ctx context.Context, userID uuid.UUID) ([]models.UserInterest, error) {
	var interests []models.UserInterest
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("confidence DESC").
		Find(&interests).Error
	return interests, apperr.WrapStorage("GetUserInterests", err)
}

// --- content ---

func (a *GormAdapter) CreateContentItem(ctx context.Context, item *models.ContentItem) error {
	return apperr.WrapStorage("CreateContentItem", a.db.WithContext(ctx).Create(item).Error)
}

func (a *GormAdapter) GetContentItem(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	var item models.ContentItem
	err := a.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFound("content", id.String())
	}
	if err != nil {
		return nil, apperr.WrapStorage("GetContentItem", err)
	}
	return &item, nil
}

func (a *GormAdapter) ListContentByType(ctx context.Context, contentType string, excludeID uuid.UUID, limit int) ([]models.ContentItem, error) {
	var items []models.ContentItem
	q := a.db.WithContext(ctx).
		Where("content_type = ? AND id != ?", contentType, excludeID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&items).Error
	return items, apperr.WrapStorage("ListContentByType", err)
}

func (a *GormAdapter) ListContentSharingTags(ctx context.Context, tags []string, excludeID uuid.UUID) ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := a.db.WithContext(ctx).
		Where("tags && ? AND id != ?", pq.StringArray(tags), excludeID).
		Find(&items).Error
	return items, apperr.WrapStorage("ListContentSharingTags", err)
}

func (a *GormAdapter) SearchContent(ctx context.Context, keyword string, limit int) ([]models.ContentItem, error) {
	var items []models.ContentItem
	pattern := "%" + keyword + "%"
	q := a.db.WithContext(ctx).
		Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&items).Error
	return items, apperr.WrapStorage("SearchContent", err)
}

func (a *GormAdapter) MostViewedContent(ctx context.Context, limit int) ([]models.ContentItem, error) {
	var items []models.ContentItem
	q := a.db.WithContext(ctx).Order("view_count DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&items).Error
	return items, apperr.WrapStorage("MostViewedContent", err)
}

func (a *GormAdapter) IncrementContentCounter(ctx context.Context, contentID uuid.UUID, typ models.InteractionType) error {
	var column string
	switch typ {
	case models.InteractionView, models.InteractionRead:
		column = "view_count"
	case models.InteractionDownload:
		column = "download_count"
	default:
		return nil
	}
	err := a.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("id = ?", contentID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
	return apperr.WrapStorage("IncrementContentCounter", err)
}

// --- interactions ---

func (a *GormAdapter) CreateContentInteraction(ctx context.Context, interaction *models.ContentInteraction) error {
	return apperr.WrapStorage("CreateContentInteraction", a.db.WithContext(ctx).Create(interaction).Error)
}

func (a *GormAdapter) GetUserInteractions(ctx context.Context, userID uuid.UUID, limit int) ([]models.ContentInteraction, error) {
	var interactions []models.ContentInteraction
	q := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&interactions).Error
	return interactions, apperr.WrapStorage("GetUserInteractions", err)
}

func (a *GormAdapter) GetContentInteractions(ctx context.Context, contentID uuid.UUID) ([]models.ContentInteraction, error) {
	var interactions []models.ContentInteraction
	err := a.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("created_at DESC").
		Find(&interactions).Error
	return interactions, apperr.WrapStorage("GetContentInteractions", err)
}

func (a *GormAdapter) FindInteraction(ctx context.Context, userID, contentID uuid.UUID, typ models.InteractionType) (*models.ContentInteraction, error) {
	var interaction models.ContentInteraction
	err := a.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ? AND interaction_type = ?", userID, contentID, typ).
		First(&interaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.WrapStorage("FindInteraction", err)
	}
	return &interaction, nil
}

func (a *GormAdapter) UpdateContentInteraction(ctx context.Context, interaction *models.ContentInteraction) error {
	return apperr.WrapStorage("UpdateContentInteraction", a.db.WithContext(ctx).Save(interaction).Error)
}

func (a *GormAdapter) DeleteContentInteraction(ctx context.Context, id uuid.UUID) error {
	return apperr.WrapStorage("DeleteContentInteraction",
		a.db.WithContext(ctx).Delete(&models.ContentInteraction{}, "id = ?", id).Error)
}

func (a *GormAdapter) CountContentInteractions(ctx context.Context, contentID uuid.UUID, typ models.InteractionType, since *time.Time) (int64, error) {
	var count int64
	q := a.db.WithContext(ctx).Model(&models.ContentInteraction{}).
		Where("content_id = ? AND interaction_type = ?", contentID, typ)
	if since != nil {
		q = q.Where("created_at > ?", *since)
	}
	err := q.Count(&count).Error
	return count, apperr.WrapStorage("CountContentInteractions", err)
}

func (a *GormAdapter) AverageContentRating(ctx context.Context, contentID uuid.UUID) (float64, int64, error) {
	var result struct {
		Avg   *float64
		Count int64
	}
	err := a.db.WithContext(ctx).Model(&models.ContentInteraction{}).
		Select("AVG(rating) AS avg, COUNT(rating) AS count").
		Where("content_id = ? AND interaction_type = ? AND rating IS NOT NULL", contentID, models.InteractionRate).
		Scan(&result).Error
	if err != nil {
		return 0, 0, apperr.WrapStorage("AverageContentRating", err)
	}
	if result.Avg == nil {
		return 0, 0, nil
	}
	return *result.Avg, result.Count, nil
}

func (a *GormAdapter) RecentInteractionCounts(ctx context.Context, since time.Time) (map[uuid.UUID]int64, error) {
	var rows []struct {
		ContentID uuid.UUID
		Count     int64
	}
	err := a.db.WithContext(ctx).Model(&models.ContentInteraction{}).
		Select("content_id, COUNT(*) AS count").
		Where("created_at > ?", since).
		Group("content_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.WrapStorage("RecentInteractionCounts", err)
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.ContentID] = row.Count
	}
	return counts, nil
}

func (a *GormAdapter) InteractionsByUsers(ctx context.Context, userIDs []uuid.UUID, types []models.InteractionType) ([]models.ContentInteraction, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var interactions []models.ContentInteraction
	q := a.db.WithContext(ctx).Where("user_id IN ?", userIDs)
	if len(types) > 0 {
		q = q.Where("interaction_type IN ?", types)
	}
	err := q.Find(&interactions).Error
	return interactions, apperr.WrapStorage("InteractionsByUsers", err)
}

// --- similarities ---

func (a *GormAdapter) UpsertContentSimilarity(ctx context.Context, sim *models.ContentSimilarity) error {
	sim.ContentIDA, sim.ContentIDB = models.CanonicalPair(sim.ContentIDA, sim.ContentIDB)
	err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "content_id_a"},
			{Name: "content_id_b"},
			{Name: "similarity_type"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"similarity_score": sim.SimilarityScore,
			"updated_at":       time.Now(),
		}),
	}).Create(sim).Error
	return apperr.WrapStorage("UpsertContentSimilarity", err)
}

func (a *GormAdapter) GetContentSimilarities(ctx context.Context, contentID uuid.UUID, typ *models.SimilarityType) ([]models.ContentSimilarity, error) {
	var sims []models.ContentSimilarity
	q := a.db.WithContext(ctx).
		Where("content_id_a = ? OR content_id_b = ?", contentID, contentID)
	if typ != nil {
		q = q.Where("similarity_type = ?", *typ)
	}
	err := q.Order("similarity_score DESC").Find(&sims).Error
	return sims, apperr.WrapStorage("GetContentSimilarities", err)
}

// --- recommendations ---

func (a *GormAdapter) CreateRecommendation(ctx context.Context, rec *models.Recommendation) error {
	err := a.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.NewConflict("recommendation", "recommendation already exists for user and content")
	}
	return apperr.WrapStorage("CreateRecommendation", err)
}

func (a *GormAdapter) GetRecommendation(ctx context.Context, id uuid.UUID) (*models.Recommendation, error) {
	var rec models.Recommendation
	err := a.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFound("recommendation", id.String())
	}
	if err != nil {
		return nil, apperr.WrapStorage("GetRecommendation", err)
	}
	return &rec, nil
}

func (a *GormAdapter) GetUserRecommendations(ctx context.Context, userID uuid.UUID, filter RecommendationFilter) ([]models.Recommendation, int64, error) {
	q := a.db.WithContext(ctx).Model(&models.Recommendation{}).
		Where("recommendations.user_id = ?", userID)

	if filter.Status != nil {
		q = q.Where("recommendations.status = ?", *filter.Status)
	}
	if filter.Reason != nil {
		q = q.Where("recommendations.reason = ?", *filter.Reason)
	}
	if filter.MinScore != nil {
		q = q.Where("recommendations.score >= ?", *filter.MinScore)
	}
	if filter.ContentType != nil || filter.CategoryID != nil || filter.TagID != nil {
		q = q.Joins("JOIN content_items ON content_items.id = recommendations.content_id")
		if filter.ContentType != nil {
			q = q.Where("content_items.content_type = ?", *filter.ContentType)
		}
		if filter.CategoryID != nil {
			q = q.Where("content_items.category_id = ?", *filter.CategoryID)
		}
		if filter.TagID != nil {
			q = q.Where("content_items.tags @> ?", pq.StringArray{*filter.TagID})
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.WrapStorage("GetUserRecommendations", err)
	}

	q = q.Order("recommendations.score DESC, recommendations.created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var recs []models.Recommendation
	if err := q.Preload("Content").Find(&recs).Error; err != nil {
		return nil, 0, apperr.WrapStorage("GetUserRecommendations", err)
	}
	return recs, total, nil
}

func (a *GormAdapter) RecommendationExists(ctx context.Context, userID, contentID uuid.UUID) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&models.Recommendation{}).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Count(&count).Error
	return count > 0, apperr.WrapStorage("RecommendationExists", err)
}

func (a *GormAdapter) CountActiveRecommendations(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&models.Recommendation{}).
		Where("user_id = ? AND status = ?", userID, models.RecommendationActive).
		Count(&count).Error
	return count, apperr.WrapStorage("CountActiveRecommendations", err)
}

func (a *GormAdapter) SaveRecommendation(ctx context.Context, rec *models.Recommendation) error {
	return apperr.WrapStorage("SaveRecommendation", a.db.WithContext(ctx).Save(rec).Error)
}

func (a *GormAdapter) ExpireRecommendations(ctx context.Context, userID *uuid.UUID, olderThan time.Time) (int64, error) {
	q := a.db.WithContext(ctx).Model(&models.Recommendation{}).
		Where("status = ? AND created_at < ?", models.RecommendationActive, olderThan)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	result := q.Updates(map[string]interface{}{
		"status":     models.RecommendationExpired,
		"updated_at": time.Now(),
	})
	return result.RowsAffected, apperr.WrapStorage("ExpireRecommendations", result.Error)
}

// --- assessments ---

func (a *GormAdapter) CreateAssessmentResult(ctx context.Context, result *models.AssessmentResult) error {
	return apperr.WrapStorage("CreateAssessmentResult", a.db.WithContext(ctx).Create(result).Error)
}

func (a *GormAdapter) CreateAssessmentContentLink(ctx context.Context, link *models.AssessmentContentLink) error {
	return apperr.WrapStorage("CreateAssessmentContentLink", a.db.WithContext(ctx).Create(link).Error)
}

func (a *GormAdapter) GetUserAssessmentResults(ctx context.Context, userID uuid.UUID, limit int) ([]models.AssessmentResult, error) {
	var results []models.AssessmentResult
	q := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&results).Error
	return results, apperr.WrapStorage("GetUserAssessmentResults", err)
}

func (a *GormAdapter) GetContentForAssessmentResult(ctx context.Context, assessmentResultID uuid.UUID) ([]models.AssessmentContentLink, error) {
	var links []models.AssessmentContentLink
	err := a.db.WithContext(ctx).
		Where("assessment_result_id = ?", assessmentResultID).
		Order("relevance_score DESC").
		Find(&links).Error
	return links, apperr.WrapStorage("GetContentForAssessmentResult", err)
}

// --- publications ---

func (a *GormAdapter) CreatePublication(ctx context.Context, pub *models.Publication) error {
	err := a.db.WithContext(ctx).Create(pub).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.NewConflict("publication", "identifier already registered")
	}
	return apperr.WrapStorage("CreatePublication", err)
}

func (a *GormAdapter) GetPublication(ctx context.Context, id uuid.UUID) (*models.Publication, error) {
	var pub models.Publication
	err := a.db.WithContext(ctx).Preload("Authors").Where("id = ?", id).First(&pub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFound("publication", id.String())
	}
	if err != nil {
		return nil, apperr.WrapStorage("GetPublication", err)
	}
	return &pub, nil
}

func (a *GormAdapter) GetResearcherPublications(ctx context.Context, researcherID uuid.UUID) ([]models.Publication, error) {
	var pubs []models.Publication
	err := a.db.WithContext(ctx).
		Joins("JOIN publication_authors ON publication_authors.publication_id = publications.id").
		Where("publication_authors.researcher_id = ?", researcherID).
		Find(&pubs).Error
	return pubs, apperr.WrapStorage("GetResearcherPublications", err)
}

func (a *GormAdapter) CreateCitation(ctx context.Context, citation *models.Citation) error {
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(citation).Error; err != nil {
			return err
		}
		return tx.Model(&models.Publication{}).
			Where("id = ?", citation.TargetPublicationID).
			UpdateColumn("citation_count", gorm.Expr("citation_count + 1")).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.NewConflict("citation", "citation already recorded")
	}
	return apperr.WrapStorage("CreateCitation", err)
}

func (a *GormAdapter) GetCitation(ctx context.Context, id uuid.UUID) (*models.Citation, error) {
	var citation models.Citation
	err := a.db.WithContext(ctx).Where("id = ?", id).First(&citation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFound("citation", id.String())
	}
	if err != nil {
		return nil, apperr.WrapStorage("GetCitation", err)
	}
	return &citation, nil
}

func (a *GormAdapter) GetPublicationCitations(ctx context.Context, targetPublicationID uuid.UUID) ([]models.Citation, error) {
	var citations []models.Citation
	err := a.db.WithContext(ctx).
		Where("target_publication_id = ?", targetPublicationID).
		Find(&citations).Error
	return citations, apperr.WrapStorage("GetPublicationCitations", err)
}

// --- metrics ---

func (a *GormAdapter) AppendMetricValue(ctx context.Context, entityID uuid.UUID, entityType models.EntityType, metricType models.MetricType, field string, value *models.MetricValue) (*models.ImpactMetricRecord, error) {
	var record models.ImpactMetricRecord
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("entity_id = ? AND entity_type = ? AND metric_type = ? AND field = ?",
			entityID, entityType, metricType, field).
			First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record = models.ImpactMetricRecord{
				EntityID:   entityID,
				EntityType: entityType,
				MetricType: metricType,
				Field:      field,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		value.RecordID = record.ID
		return tx.Create(value).Error
	})
	if err != nil {
		return nil, apperr.WrapStorage("AppendMetricValue", err)
	}
	return a.GetMetricRecord(ctx, entityID, entityType, metricType, field)
}

func (a *GormAdapter) GetMetricRecord(ctx context.Context, entityID uuid.UUID, entityType models.EntityType, metricType models.MetricType, field string) (*models.ImpactMetricRecord, error) {
	var record models.ImpactMetricRecord
	err := a.db.WithContext(ctx).Preload("Values").
		Where("entity_id = ? AND entity_type = ? AND metric_type = ? AND field = ?",
			entityID, entityType, metricType, field).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFound("metric record", entityID.String())
	}
	if err != nil {
		return nil, apperr.WrapStorage("GetMetricRecord", err)
	}
	return &record, nil
}
