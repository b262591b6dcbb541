package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"edurank/internal/apperr"
	"edurank/internal/models"

	"github.com/google/uuid"
)

// MemoryAdapter is an in-memory Adapter used by tests and local development.
// All methods are safe for concurrent use; the single mutex also makes the
// read-then-write sequences inside methods atomic, which closes the toggle
// and duplicate-recommendation races the relational adapter documents.
type MemoryAdapter struct {
	mu sync.RWMutex

	users        map[uuid.UUID]models.User
	interests    map[uuid.UUID]models.UserInterest
	content      map[uuid.UUID]models.ContentItem
	interactions map[uuid.UUID]models.ContentInteraction
	similarities map[uuid.UUID]models.ContentSimilarity
	recs         map[uuid.UUID]models.Recommendation
	results      map[uuid.UUID]models.AssessmentResult
	links        map[uuid.UUID]models.AssessmentContentLink
	publications map[uuid.UUID]models.Publication
	citations    map[uuid.UUID]models.Citation
	records      map[uuid.UUID]models.ImpactMetricRecord
	values       map[uuid.UUID]models.MetricValue
}

// NewMemoryAdapter creates an empty in-memory storage adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		users:        make(map[uuid.UUID]models.User),
		interests:    make(map[uuid.UUID]models.UserInterest),
		content:      make(map[uuid.UUID]models.ContentItem),
		interactions: make(map[uuid.UUID]models.ContentInteraction),
		similarities: make(map[uuid.UUID]models.ContentSimilarity),
		recs:         make(map[uuid.UUID]models.Recommendation),
		results:      make(map[uuid.UUID]models.AssessmentResult),
		links:        make(map[uuid.UUID]models.AssessmentContentLink),
		publications: make(map[uuid.UUID]models.Publication),
		citations:    make(map[uuid.UUID]models.Citation),
		records:      make(map[uuid.UUID]models.ImpactMetricRecord),
		values:       make(map[uuid.UUID]models.MetricValue),
	}
}

var _ Adapter = (*MemoryAdapter)(nil)

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func ensureTime(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// --- users ---

func (m *MemoryAdapter) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return apperr.NewConflict("user", "email already registered")
		}
	}
	ensureID(&user.ID)
	ensureTime(&user.CreatedAt)
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryAdapter) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, apperr.NewNotFound("user", id.String())
	}
	return &user, nil
}

func (m *MemoryAdapter) ListOrganizationUsers(_ context.Context, orgID, excludeUserID uuid.UUID) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []models.User
	for _, user := range m.users {
		if user.OrganizationID == orgID && user.ID != excludeUserID && user.IsActive {
			users = append(users, user)
		}
	}
	return users, nil
}

// --- interests ---

func (m *MemoryAdapter) CreateUserInterest(_ context.Context, interest *models.UserInterest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ensureID(&interest.ID)
	ensureTime(&interest.CreatedAt)
	m.interests[interest.ID] = *interest
	return nil
}

func (m *MemoryAdapter) GetUserInterests(_ context.Context, userID uuid.UUID) ([]models.UserInterest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var interests []models.UserInterest
	for _, interest := range m.interests {
		if interest.UserID == userID {
			interests = append(interests, interest)
		}
	}
	sort.Slice(interests, func(i, j int) bool {
		return interests[i].Confidence > interests[j].Confidence
	})
	return interests, nil
}

// --- content ---

func (m *MemoryAdapter) CreateContentItem(_ context.Context, item *models.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ensureID(&item.ID)
	ensureTime(&item.CreatedAt)
	m.content[item.ID] = *item
	return nil
}

func (m *MemoryAdapter) GetContentItem(_ context.Context, id uuid.UUID) (*models.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.content[id]
	if !ok {
		return nil, apperr.NewNotFound("content", id.String())
	}
	return &item, nil
}

func (m *MemoryAdapter) ListContentByType(_ context.Context, contentType string, excludeID uuid.UUID, limit int) ([]models.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []models.ContentItem
	for _, item := range m.content {
		if item.ContentType == contentType && item.ID != excludeID {
			items = append(items, item)
		}
	}
	sortContentByCreated(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *MemoryAdapter) ListContentSharingTags(_ context.Context, tags []string, excludeID uuid.UUID) ([]models.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[tag] = struct{}{}
	}
	var items []models.ContentItem
	for _, item := range m.content {
		if item.ID == excludeID {
			continue
		}
		for _, tag := range item.Tags {
			if _, ok := tagSet[tag]; ok {
				items = append(items, item)
				break
			}
		}
	}
	sortContentByCreated(items)
	return items, nil
}

func (m *MemoryAdapter) SearchContent(_ context.Context, keyword string, limit int) ([]models.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(keyword)
	var items []models.ContentItem
	for _, item := range m.content {
		if strings.Contains(strings.ToLower(item.Title), needle) ||
			strings.Contains(strings.ToLower(item.Description), needle) {
			items = append(items, item)
		}
	}
	sortContentByCreated(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *MemoryAdapter) MostViewedContent(_ context.Context, limit int) ([]models.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]models.ContentItem, 0, len(m.content))
	for _, item := range m.content {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].ViewCount != items[j].ViewCount {
			return items[i].ViewCount > items[j].ViewCount
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *MemoryAdapter) IncrementContentCounter(_ context.Context, contentID uuid.UUID, typ models.InteractionType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.content[contentID]
	if !ok {
		return nil
	}
	switch typ {
	case models.InteractionView, models.InteractionRead:
		item.ViewCount++
	case models.InteractionDownload:
		item.DownloadCount++
	default:
		return nil
	}
	m.content[contentID] = item
	return nil
}

func sortContentByCreated(items []models.ContentItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}

// --- interactions ---

func (m *MemoryAdapter) CreateContentInteraction(_ context.Context, interaction *models.ContentInteraction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ensureID(&interaction.ID)
	ensureTime(&interaction.CreatedAt)
	m.interactions[interaction.ID] = *interaction
	return nil
}

func (m *MemoryAdapter) GetUserInteractions(_ context.Context, userID uuid.UUID, limit int) ([]models.ContentInteraction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var interactions []models.ContentInteraction
	for _, interaction := range m.interactions {
		if interaction.UserID == userID {
			interactions = append(interactions, interaction)
		}
	}
	sortInteractionsByCreated(interactions)
	if limit > 0 && len(interactions) > limit {
		interactions = interactions[:limit]
	}
	return interactions, nil
}

func (m *MemoryAdapter) GetContentInteractions(_ context.Context, contentID uuid.UUID) ([]models.ContentInteraction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var interactions []models.ContentInteraction
	for _, interaction := range m.interactions {
		if interaction.ContentID == contentID {
			interactions = append(interactions, interaction)
		}
	}
	sortInteractionsByCreated(interactions)
	return interactions, nil
}

func (m *MemoryAdapter) FindInteraction(_ context.Context, userID, contentID uuid.UUID, typ models.InteractionType) (*models.ContentInteraction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, interaction := range m.interactions {
		if interaction.UserID == userID && interaction.ContentID == contentID && interaction.InteractionType == typ {
			found := interaction
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemoryAdapter) UpdateContentInteraction(_ context.Context, interaction *models.ContentInteraction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.interactions[interaction.ID]; !ok {
		return apperr.NewNotFound("interaction", interaction.ID.String())
	}
	m.interactions[interaction.ID] = *interaction
	return nil
}

func (m *MemoryAdapter) DeleteContentInteraction(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.interactions, id)
	return nil
}

func (m *MemoryAdapter) CountContentInteractions(_ context.Context, contentID uuid.UUID, typ models.InteractionType, since *time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, interaction := range m.interactions {
		if interaction.ContentID != contentID || interaction.InteractionType != typ {
			continue
		}
		if since != nil && !interaction.CreatedAt.After(*since) {
			continue
		}
		count++
	}
	return count, nil
}

func (m *MemoryAdapter) AverageContentRating(_ context.Context, contentID uuid.UUID) (float64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum float64
	var count int64
	for _, interaction := range m.interactions {
		if interaction.ContentID == contentID && interaction.InteractionType == models.InteractionRate && interaction.Rating != nil {
			sum += float64(*interaction.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

func (m *MemoryAdapter) RecentInteractionCounts(_ context.Context, since time.Time) (map[uuid.UUID]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[uuid.UUID]int64)
	for _, interaction := range m.interactions {
		if interaction.CreatedAt.After(since) {
			counts[interaction.ContentID]++
		}
	}
	return counts, nil
}

func (m *MemoryAdapter) InteractionsByUsers(_ context.Context, userIDs []uuid.UUID, types []models.InteractionType) ([]models.ContentInteraction, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idSet := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		idSet[id] = struct{}{}
	}
	typeSet := make(map[models.InteractionType]struct{}, len(types))
	for _, typ := range types {
		typeSet[typ] = struct{}{}
	}
	var interactions []models.ContentInteraction
	for _, interaction := range m.interactions {
		if _, ok := idSet[interaction.UserID]; !ok {
			continue
		}
		if len(typeSet) > 0 {
			if _, ok := typeSet[interaction.InteractionType]; !ok {
				continue
			}
		}
		interactions = append(interactions, interaction)
	}
	return interactions, nil
}

func sortInteractionsByCreated(interactions []models.ContentInteraction) {
	sort.Slice(interactions, func(i, j int) bool {
		if !interactions[i].CreatedAt.Equal(interactions[j].CreatedAt) {
			return interactions[i].CreatedAt.After(interactions[j].CreatedAt)
		}
		return interactions[i].ID.String() < interactions[j].ID.String()
	})
}

// --- similarities ---

func (m *MemoryAdapter) UpsertContentSimilarity(_ context.Context, sim *models.ContentSimilarity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sim.ContentIDA, sim.ContentIDB = models.CanonicalPair(sim.ContentIDA, sim.ContentIDB)
	for id, existing := range m.similarities {
		if existing.ContentIDA == sim.ContentIDA && existing.ContentIDB == sim.ContentIDB &&
			existing.SimilarityType == sim.SimilarityType {
			existing.SimilarityScore = sim.SimilarityScore
			existing.UpdatedAt = time.Now()
			m.similarities[id] = existing
			*sim = existing
			return nil
		}
	}
	ensureID(&sim.ID)
	ensureTime(&sim.CreatedAt)
	sim.UpdatedAt = sim.CreatedAt
	m.similarities[sim.ID] = *sim
	return nil
}

func (m *MemoryAdapter) GetContentSimilarities(_ context.Context, contentID uuid.UUID, typ *models.SimilarityType) ([]models.ContentSimilarity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sims []models.ContentSimilarity
	for _, sim := range m.similarities {
		if sim.ContentIDA != contentID && sim.ContentIDB != contentID {
			continue
		}
		if typ != nil && sim.SimilarityType != *typ {
			continue
		}
		sims = append(sims, sim)
	}
	sort.Slice(sims, func(i, j int) bool {
		return sims[i].SimilarityScore > sims[j].SimilarityScore
	})
	return sims, nil
}

// --- recommendations ---

func (m *MemoryAdapter) CreateRecommendation(_ context.Context, rec *models.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.Status == models.RecommendationActive {
		for _, existing := range m.recs {
			if existing.UserID == rec.UserID && existing.ContentID == rec.ContentID &&
				existing.Status == models.RecommendationActive {
				return apperr.NewConflict("recommendation", "recommendation already exists for user and content")
			}
		}
	}
	ensureID(&rec.ID)
	ensureTime(&rec.CreatedAt)
	rec.UpdatedAt = rec.CreatedAt
	m.recs[rec.ID] = *rec
	return nil
}

func (m *MemoryAdapter) GetRecommendation(_ context.Context, id uuid.UUID) (*models.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[id]
	if !ok {
		return nil, apperr.NewNotFound("recommendation", id.String())
	}
	return &rec, nil
}

func (m *MemoryAdapter) GetUserRecommendations(_ context.Context, userID uuid.UUID, filter RecommendationFilter) ([]models.Recommendation, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var recs []models.Recommendation
	for _, rec := range m.recs {
		if rec.UserID != userID {
			continue
		}
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		if filter.Reason != nil && rec.Reason != *filter.Reason {
			continue
		}
		if filter.MinScore != nil && rec.Score < *filter.MinScore {
			continue
		}
		if filter.ContentType != nil || filter.CategoryID != nil || filter.TagID != nil {
			item, ok := m.content[rec.ContentID]
			if !ok {
				continue
			}
			if filter.ContentType != nil && item.ContentType != *filter.ContentType {
				continue
			}
			if filter.CategoryID != nil && (item.CategoryID == nil || *item.CategoryID != *filter.CategoryID) {
				continue
			}
			if filter.TagID != nil && !item.HasTag(*filter.TagID) {
				continue
			}
		}
		if item, ok := m.content[rec.ContentID]; ok {
			rec.Content = item
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID.String() < recs[j].ID.String()
	})
	total := int64(len(recs))
	if filter.Offset > 0 {
		if filter.Offset >= len(recs) {
			recs = nil
		} else {
			recs = recs[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(recs) > filter.Limit {
		recs = recs[:filter.Limit]
	}
	return recs, total, nil
}

func (m *MemoryAdapter) RecommendationExists(_ context.Context, userID, contentID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.recs {
		if rec.UserID == userID && rec.ContentID == contentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryAdapter) CountActiveRecommendations(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, rec := range m.recs {
		if rec.UserID == userID && rec.Status == models.RecommendationActive {
			count++
		}
	}
	return count, nil
}

func (m *MemoryAdapter) SaveRecommendation(_ context.Context, rec *models.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[rec.ID]; !ok {
		return apperr.NewNotFound("recommendation", rec.ID.String())
	}
	rec.UpdatedAt = time.Now()
	stored := *rec
	stored.Content = models.ContentItem{}
	m.recs[rec.ID] = stored
	return nil
}

func (m *MemoryAdapter) ExpireRecommendations(_ context.Context, userID *uuid.UUID, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var flipped int64
	for id, rec := range m.recs {
		if rec.Status != models.RecommendationActive || !rec.CreatedAt.Before(olderThan) {
			continue
		}
		if userID != nil && rec.UserID != *userID {
			continue
		}
		rec.Status = models.RecommendationExpired
		rec.UpdatedAt = time.Now()
		m.recs[id] = rec
		flipped++
	}
	return flipped, nil
}

// --- assessments ---

func (m *MemoryAdapter) CreateAssessmentResult(_ context.Context, result *models.AssessmentResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ensureID(&result.ID)
	ensureTime(&result.CreatedAt)
	ensureTime(&result.CompletedAt)
	m.results[result.ID] = *result
	return nil
}

func (m *MemoryAdapter) CreateAssessmentContentLink(_ context.Context, link *models.AssessmentContentLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ensureID(&link.ID)
	ensureTime(&link.CreatedAt)
	m.links[link.ID] = *link
	return nil
}

func (m *MemoryAdapter) GetUserAssessmentResults(_ context.Context, userID uuid.UUID, limit int) ([]models.AssessmentResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var results []models.AssessmentResult
	for _, result := range m.results {
		if result.UserID == userID {
			results = append(results, result)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CompletedAt.After(results[j].CompletedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemoryAdapter) GetContentForAssessmentResult(_ context.Context, assessmentResultID uuid.UUID) ([]models.AssessmentContentLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var links []models.AssessmentContentLink
	for _, link := range m.links {
		if link.AssessmentResultID == assessmentResultID {
			links = append(links, link)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].RelevanceScore > links[j].RelevanceScore
	})
	return links, nil
}

// --- publications ---

func (m *MemoryAdapter) CreatePublication(_ context.Context, pub *models.Publication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pub.DOI != nil {
		for _, existing := range m.publications {
			if existing.DOI != nil && *existing.DOI == *pub.DOI {
				return apperr.NewConflict("publication", "identifier already registered")
			}
		}
	}
	ensureID(&pub.ID)
	ensureTime(&pub.CreatedAt)
	pub.UpdatedAt = pub.CreatedAt
	stored := *pub
	stored.Authors = nil
	m.publications[pub.ID] = stored
	for i := range pub.Authors {
		author := pub.Authors[i]
		ensureID(&author.ID)
		author.PublicationID = pub.ID
		pub.Authors[i] = author
	}
	// author rows live on the publication copy for researcher lookups
	stored.Authors = append(stored.Authors, pub.Authors...)
	m.publications[pub.ID] = stored
	return nil
}

func (m *MemoryAdapter) GetPublication(_ context.Context, id uuid.UUID) (*models.Publication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pub, ok := m.publications[id]
	if !ok {
		return nil, apperr.NewNotFound("publication", id.String())
	}
	return &pub, nil
}

func (m *MemoryAdapter) GetResearcherPublications(_ context.Context, researcherID uuid.UUID) ([]models.Publication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var pubs []models.Publication
	for _, pub := range m.publications {
		for _, author := range pub.Authors {
			if author.ResearcherID == researcherID {
				pubs = append(pubs, pub)
				break
			}
		}
	}
	sort.Slice(pubs, func(i, j int) bool {
		return pubs[i].CitationCount > pubs[j].CitationCount
	})
	return pubs, nil
}

func (m *MemoryAdapter) CreateCitation(_ context.Context, citation *models.Citation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if citation.ID != uuid.Nil {
		if _, exists := m.citations[citation.ID]; exists {
			return apperr.NewConflict("citation", "citation already recorded")
		}
	}
	ensureID(&citation.ID)
	ensureTime(&citation.CreatedAt)
	m.citations[citation.ID] = *citation
	if target, ok := m.publications[citation.TargetPublicationID]; ok {
		target.CitationCount++
		m.publications[citation.TargetPublicationID] = target
	}
	return nil
}

func (m *MemoryAdapter) GetCitation(_ context.Context, id uuid.UUID) (*models.Citation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	citation, ok := m.citations[id]
	if !ok {
		return nil, apperr.NewNotFound("citation", id.String())
	}
	return &citation, nil
}

func (m *MemoryAdapter) GetPublicationCitations(_ context.Context, targetPublicationID uuid.UUID) ([]models.Citation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var citations []models.Citation
	for _, citation := range m.citations {
		if citation.TargetPublicationID == targetPublicationID {
			citations = append(citations, citation)
		}
	}
	return citations, nil
}

// --- metrics ---

func (m *MemoryAdapter) AppendMetricValue(_ context.Context, entityID uuid.UUID, entityType models.EntityType, metricType models.MetricType, field string, value *models.MetricValue) (*models.ImpactMetricRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := m.findRecord(entityID, entityType, metricType, field)
	if record == nil {
		created := models.ImpactMetricRecord{
			ID:         uuid.New(),
			EntityID:   entityID,
			EntityType: entityType,
			MetricType: metricType,
			Field:      field,
			CreatedAt:  time.Now(),
		}
		created.UpdatedAt = created.CreatedAt
		m.records[created.ID] = created
		record = &created
	}
	ensureID(&value.ID)
	ensureTime(&value.CreatedAt)
	value.RecordID = record.ID
	m.values[value.ID] = *value

	return m.assembleRecord(record.ID), nil
}

func (m *MemoryAdapter) GetMetricRecord(_ context.Context, entityID uuid.UUID, entityType models.EntityType, metricType models.MetricType, field string) (*models.ImpactMetricRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record := m.findRecord(entityID, entityType, metricType, field)
	if record == nil {
		return nil, apperr.NewNotFound("metric record", entityID.String())
	}
	return m.assembleRecord(record.ID), nil
}

// findRecord must be called with the lock held.
func (m *MemoryAdapter) findRecord(entityID uuid.UUID, entityType models.EntityType, metricType models.MetricType, field string) *models.ImpactMetricRecord {
	for _, record := range m.records {
		if record.EntityID == entityID && record.EntityType == entityType &&
			record.MetricType == metricType && record.Field == field {
			found := record
			return &found
		}
	}
	return nil
}

// assembleRecord must be called with the lock held.
func (m *MemoryAdapter) assembleRecord(recordID uuid.UUID) *models.ImpactMetricRecord {
	record := m.records[recordID]
	for _, value := range m.values {
		if value.RecordID == recordID {
			record.Values = append(record.Values, value)
		}
	}
	sort.Slice(record.Values, func(i, j int) bool {
		return record.Values[i].Date.Before(record.Values[j].Date)
	})
	return &record
}
