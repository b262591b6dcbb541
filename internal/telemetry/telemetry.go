// Package telemetry exposes the Prometheus instrumentation for the core
// services. Counters are registered on the default registry and served by
// the /metrics endpoint.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InteractionsRecorded counts interaction events by type.
	InteractionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edurank_interactions_recorded_total",
		Help: "Content interaction events recorded, by interaction type.",
	}, []string{"type"})

	// RecommendationsGenerated counts recommendation rows inserted by reason.
	RecommendationsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edurank_recommendations_generated_total",
		Help: "Recommendations inserted, by generation strategy.",
	}, []string{"reason"})

	// StrategyFailures counts soft-failed generation strategies.
	StrategyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edurank_recommendation_strategy_failures_total",
		Help: "Recommendation strategies that failed softly during generation.",
	}, []string{"strategy"})

	// SimilarityEdgesWritten counts similarity edge upserts by type.
	SimilarityEdgesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edurank_similarity_edges_written_total",
		Help: "Content similarity edges written, by similarity type.",
	}, []string{"type"})

	// ImpactComputations counts impact metric calculations by metric type.
	ImpactComputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edurank_impact_computations_total",
		Help: "Impact metric computations performed, by metric type.",
	}, []string{"metric"})
)
