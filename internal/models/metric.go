package models

import (
	"time"

	"github.com/google/uuid"
)

// EntityType identifies what kind of entity an impact metric describes
type EntityType string

const (
	EntityResearcher  EntityType = "RESEARCHER"
	EntityPublication EntityType = "PUBLICATION"
	EntityJournal     EntityType = "JOURNAL"
	EntityInstitution EntityType = "INSTITUTION"
)

// MetricType enumerates the bibliometric and altmetric measures the
// impact engine tracks.
type MetricType string

const (
	MetricHIndex                MetricType = "H_INDEX"
	MetricGIndex                MetricType = "G_INDEX"
	MetricI10Index              MetricType = "I10_INDEX"
	MetricMQuotient             MetricType = "M_QUOTIENT"
	MetricTotalCitations        MetricType = "TOTAL_CITATIONS"
	MetricCitationsPerPaper     MetricType = "CITATIONS_PER_PAPER"
	MetricSelfCitationRate      MetricType = "SELF_CITATION_RATE"
	MetricFieldNormalizedImpact MetricType = "FIELD_NORMALIZED_IMPACT"
	MetricJournalImpactFactor   MetricType = "JOURNAL_IMPACT_FACTOR"
	MetricEigenfactor           MetricType = "EIGENFACTOR"
	MetricSJR                   MetricType = "SJR"
	MetricSNIP                  MetricType = "SNIP"
	MetricAltmetricScore        MetricType = "ALTMETRIC_SCORE"
	MetricSocialMentions        MetricType = "SOCIAL_MENTIONS"
	MetricNewsMentions          MetricType = "NEWS_MENTIONS"
	MetricBlogMentions          MetricType = "BLOG_MENTIONS"
	MetricPolicyMentions        MetricType = "POLICY_MENTIONS"
	MetricWikipediaMentions     MetricType = "WIKIPEDIA_MENTIONS"
	MetricDownloads             MetricType = "DOWNLOADS"
	MetricViews                 MetricType = "VIEWS"
	MetricReads                 MetricType = "READS"
	MetricPublicationCount      MetricType = "PUBLICATION_COUNT"
	MetricCollaborationIndex    MetricType = "COLLABORATION_INDEX"
	MetricInternationalCoauth   MetricType = "INTERNATIONAL_COAUTHORSHIP"
	MetricOpenAccessShare       MetricType = "OPEN_ACCESS_SHARE"
)

// ImpactMetricRecord is the time series of one metric type for one entity,
// created lazily on first write. Values are append-only; the latest value is
// the one with the greatest date, not the last appended.
type ImpactMetricRecord struct {
	ID         uuid.UUID  `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EntityID   uuid.UUID  `json:"entity_id" db:"entity_id" gorm:"type:uuid;not null;uniqueIndex:idx_metric_record_key"`
	EntityType EntityType `json:"entity_type" db:"entity_type" gorm:"not null;uniqueIndex:idx_metric_record_key"`
	MetricType MetricType `json:"metric_type" db:"metric_type" gorm:"not null;uniqueIndex:idx_metric_record_key"`
	Field      string     `json:"field" db:"field" gorm:"uniqueIndex:idx_metric_record_key"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Values []MetricValue `json:"values,omitempty" gorm:"foreignKey:RecordID"`
}

// MetricValue is one observation in an impact metric time series
type MetricValue struct {
	ID       uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	RecordID uuid.UUID `json:"record_id" db:"record_id" gorm:"type:uuid;not null;index"`
	Value    float64   `json:"value" db:"value" gorm:"not null"`
	Date     time.Time `json:"date" db:"date" gorm:"not null"`
	Source   string    `json:"source" db:"source"`

	TimePeriod  string     `json:"time_period" db:"time_period"` // e.g. "ALL_TIME", "YEARLY", "CUSTOM"
	PeriodStart *time.Time `json:"period_start" db:"period_start"`
	PeriodEnd   *time.Time `json:"period_end" db:"period_end"`

	Percentile     *float64 `json:"percentile" db:"percentile"`
	ConfidenceLow  *float64 `json:"confidence_low" db:"confidence_low"`
	ConfidenceHigh *float64 `json:"confidence_high" db:"confidence_high"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// LatestValue returns the value with the greatest date. Append order is not
// guaranteed to be chronological, so callers must not rely on it.
func (r *ImpactMetricRecord) LatestValue() *MetricValue {
	var latest *MetricValue
	for i := range r.Values {
		v := &r.Values[i]
		if latest == nil || v.Date.After(latest.Date) {
			latest = v
		}
	}
	return latest
}

// TableName methods
func (ImpactMetricRecord) TableName() string {
	return "impact_metric_records"
}

func (MetricValue) TableName() string {
	return "metric_values"
}
