package services

import (
	"context"
	"sort"
	"time"

	"edurank/internal/models"
	"edurank/internal/storage"
	"edurank/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// metricSource tags MetricValues written by this engine.
const metricSource = "impact-engine"

// fieldAverageCitations is the fixed per-field average citation lookup used
// by field normalization. Fields missing from the table fall back to
// defaultFieldAverage.
var fieldAverageCitations = map[string]float64{
	"computer_science": 12.5,
	"mathematics":      6.2,
	"physics":          14.8,
	"chemistry":        13.1,
	"biology":          16.4,
	"medicine":         19.7,
	"neuroscience":     18.2,
	"psychology":       11.3,
	"economics":        9.6,
	"sociology":        7.4,
	"education":        8.1,
	"engineering":      10.9,
	"materials":        12.0,
	"environmental":    13.7,
}

const defaultFieldAverage = 10.0

// altmetricSourceWeights is the internal, tunable weighting of mention
// sources in the composite score. The contract is only that the composite is
// a deterministic, monotonic function of the mention counts.
var altmetricSourceWeights = struct {
	social, news, blogs, policy, wikipedia float64
}{
	social:    0.25,
	news:      8.0,
	blogs:     4.0,
	policy:    9.0,
	wikipedia: 3.0,
}

// HIndex returns the largest h such that the researcher has h publications
// with at least h citations each. An empty list yields 0.
func HIndex(citationCounts []int) int {
	counts := sortedDescending(citationCounts)
	h := 0
	for i, c := range counts {
		if c >= i+1 {
			h = i + 1
		} else {
			break
		}
	}
	return h
}

// GIndex returns the largest g such that the top g publications together
// have at least g² citations. An empty list yields 0.
func GIndex(citationCounts []int) int {
	counts := sortedDescending(citationCounts)
	g := 0
	sum := 0
	for i, c := range counts {
		sum += c
		if sum >= (i+1)*(i+1) {
			g = i + 1
		}
	}
	return g
}

// I10Index returns the number of publications with at least 10 citations.
func I10Index(citationCounts []int) int {
	n := 0
	for _, c := range citationCounts {
		if c >= 10 {
			n++
		}
	}
	return n
}

func sortedDescending(counts []int) []int {
	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	return sorted
}

// AltmetricComposite aggregates mention counts into a single deterministic
// score. It is monotonic in every count.
func AltmetricComposite(social, news, blogs, policy, wikipedia int) float64 {
	w := altmetricSourceWeights
	return float64(social)*w.social +
		float64(news)*w.news +
		float64(blogs)*w.blogs +
		float64(policy)*w.policy +
		float64(wikipedia)*w.wikipedia
}

// ResearcherMetrics bundles the indices computed for one researcher.
type ResearcherMetrics struct {
	ResearcherID      uuid.UUID `json:"researcher_id"`
	PublicationCount  int       `json:"publication_count"`
	TotalCitations    int       `json:"total_citations"`
	HIndex            int       `json:"h_index"`
	GIndex            int       `json:"g_index"`
	I10Index          int       `json:"i10_index"`
	CitationsPerPaper float64   `json:"citations_per_paper"`
	ComputedAt        time.Time `json:"computed_at"`
}

// ImpactService computes bibliometric indices from the publication and
// citation graph. Index computation is deterministic and side-effect-free
// except for appending results to the entity's metric record.
type ImpactService struct {
	store  storage.Adapter
	logger *zap.Logger
	now    func() time.Time
}

// NewImpactService creates a new impact metrics service.
func NewImpactService(store storage.Adapter, logger *zap.Logger) *ImpactService {
	return &ImpactService{store: store, logger: logger, now: time.Now}
}

// CalculateResearcherMetrics computes h-index, g-index, i10-index and
// citation totals over the researcher's publications and appends each result
// to the researcher's metric history.
func (s *ImpactService) CalculateResearcherMetrics(ctx context.Context, researcherID uuid.UUID) (*ResearcherMetrics, error) {
	pubs, err := s.store.GetResearcherPublications(ctx, researcherID)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(pubs))
	total := 0
	for i := range pubs {
		counts[i] = pubs[i].CitationCount
		total += pubs[i].CitationCount
	}

	metrics := &ResearcherMetrics{
		ResearcherID:     researcherID,
		PublicationCount: len(pubs),
		TotalCitations:   total,
		HIndex:           HIndex(counts),
		GIndex:           GIndex(counts),
		I10Index:         I10Index(counts),
		ComputedAt:       s.now(),
	}
	if len(pubs) > 0 {
		metrics.CitationsPerPaper = float64(total) / float64(len(pubs))
	}

	appends := []struct {
		metric models.MetricType
		value  float64
	}{
		{models.MetricHIndex, float64(metrics.HIndex)},
		{models.MetricGIndex, float64(metrics.GIndex)},
		{models.MetricI10Index, float64(metrics.I10Index)},
		{models.MetricTotalCitations, float64(metrics.TotalCitations)},
		{models.MetricPublicationCount, float64(metrics.PublicationCount)},
	}
	for _, a := range appends {
		if err := s.appendValue(ctx, researcherID, models.EntityResearcher, a.metric, "", a.value); err != nil {
			return nil, err
		}
	}

	s.logger.Info("researcher metrics computed",
		zap.String("researcher_id", researcherID.String()),
		zap.Int("publications", metrics.PublicationCount),
		zap.Int("h_index", metrics.HIndex))
	return metrics, nil
}

// CalculateFieldNormalizedImpact divides the researcher's total citations by
// the average citation count of the given field and appends the result to
// the researcher's metric history under that field.
func (s *ImpactService) CalculateFieldNormalizedImpact(ctx context.Context, researcherID uuid.UUID, field string) (float64, error) {
	pubs, err := s.store.GetResearcherPublications(ctx, researcherID)
	if err != nil {
		return 0, err
	}

	total := 0
	for i := range pubs {
		total += pubs[i].CitationCount
	}

	average, ok := fieldAverageCitations[field]
	if !ok {
		average = defaultFieldAverage
	}
	impact := float64(total) / average

	if err := s.appendValue(ctx, researcherID, models.EntityResearcher, models.MetricFieldNormalizedImpact, field, impact); err != nil {
		return 0, err
	}
	return impact, nil
}

// CalculatePublicationAltmetrics aggregates the publication's mention
// counters into the composite altmetric score and appends it to the
// publication's metric history.
func (s *ImpactService) CalculatePublicationAltmetrics(ctx context.Context, publicationID uuid.UUID) (float64, error) {
	pub, err := s.store.GetPublication(ctx, publicationID)
	if err != nil {
		return 0, err
	}

	score := AltmetricComposite(pub.SocialMentions, pub.NewsMentions, pub.BlogMentions,
		pub.PolicyMentions, pub.WikipediaMentions)

	if err := s.appendValue(ctx, publicationID, models.EntityPublication, models.MetricAltmetricScore, "", score); err != nil {
		return 0, err
	}
	return score, nil
}

// CitationSignificance returns the stored citation's weighted significance
// score (0 when semantic annotations are absent).
func (s *ImpactService) CitationSignificance(ctx context.Context, citationID uuid.UUID) (float64, error) {
	citation, err := s.store.GetCitation(ctx, citationID)
	if err != nil {
		return 0, err
	}
	return citation.SignificanceScore(), nil
}

// GetMetricHistory returns the full time series for one entity metric.
func (s *ImpactService) GetMetricHistory(ctx context.Context, entityID uuid.UUID, entityType models.EntityType, metricType models.MetricType, field string) (*models.ImpactMetricRecord, error) {
	return s.store.GetMetricRecord(ctx, entityID, entityType, metricType, field)
}

func (s *ImpactService) appendValue(ctx context.Context, entityID uuid.UUID, entityType models.EntityType, metricType models.MetricType, field string, value float64) error {
	_, err := s.store.AppendMetricValue(ctx, entityID, entityType, metricType, field, &models.MetricValue{
		Value:      value,
		Date:       s.now(),
		Source:     metricSource,
		TimePeriod: "ALL_TIME",
	})
	if err == nil {
		telemetry.ImpactComputations.WithLabelValues(string(metricType)).Inc()
	}
	return err
}
