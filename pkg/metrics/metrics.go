// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MatchSearchesTotal tracks match searches by status
	MatchSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "searches_total",
			Help:      "Total number of match searches by status",
		},
		[]string{"tenant_id", "status"},
	)

	// MatchSearchDuration tracks match search duration in seconds
	MatchSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "search_duration_seconds",
			Help:      "Duration of match searches in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"tenant_id"},
	)

	// CandidatesConsidered tracks the candidate pool size per search
	CandidatesConsidered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "candidates_considered",
			Help:      "Number of candidates considered per match search",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// MatchesReturned tracks results returned per search
	MatchesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "matches_returned",
			Help:      "Number of results returned per match search",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
		},
	)

	// MatchesRecorded tracks explicit match recordings
	MatchesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "matches_recorded_total",
			Help:      "Total number of matches recorded to the history ledger",
		},
		[]string{"tenant_id", "status"},
	)

	// MalformedCandidatesSkipped tracks candidate rows skipped during ranking
	MalformedCandidatesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "malformed_candidates_skipped_total",
			Help:      "Total number of candidate records skipped because they failed to parse",
		},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaPublishDuration tracks Kafka publish duration
	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	// DatabaseQueryDuration tracks database query duration
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	// RedisOperationDuration tracks Redis operation duration
	RedisOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "redis",
			Name:      "operation_duration_seconds",
			Help:      "Duration of Redis operations in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
		[]string{"operation"},
	)
)

// RecordMatchSearch records a match search metric
func RecordMatchSearch(tenantID, status string, candidates, returned int, durationSeconds float64) {
	MatchSearchesTotal.WithLabelValues(tenantID, status).Inc()
	MatchSearchDuration.WithLabelValues(tenantID).Observe(durationSeconds)
	CandidatesConsidered.Observe(float64(candidates))
	MatchesReturned.Observe(float64(returned))
}

// RecordMatchRecorded records a ledger write metric
func RecordMatchRecorded(tenantID, status string) {
	MatchesRecorded.WithLabelValues(tenantID, status).Inc()
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string, durationSeconds float64) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
	KafkaPublishDuration.Observe(durationSeconds)
}
