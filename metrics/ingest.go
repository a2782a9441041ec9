// Package metrics provides Prometheus collectors for the ingestion pipeline.
package metrics

import (
	"errors"
	"time"

	"github.com/poiesic/grocer/ai"
	"github.com/poiesic/grocer/classify"
	"github.com/poiesic/grocer/core"
	"github.com/poiesic/grocer/ingestion"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "grocer"

// IngestMetrics records pipeline events. It implements ingestion.Monitor.
type IngestMetrics struct {
	ingestEventsTotal   prometheus.Counter
	ingestItemsTotal    prometheus.Counter
	entriesCreatedTotal *prometheus.CounterVec
	batchCommitDuration prometheus.Histogram

	enrichmentsTotal      *prometheus.CounterVec
	enrichmentErrorsTotal *prometheus.CounterVec
	enrichmentDuration    prometheus.Histogram
	enrichmentsPending    prometheus.Gauge
}

var _ ingestion.Monitor = (*IngestMetrics)(nil)

// NewIngestMetrics creates and registers new ingestion metrics
func NewIngestMetrics(registry prometheus.Registerer) (*IngestMetrics, error) {
	m := &IngestMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *IngestMetrics) initMetrics() {
	m.ingestEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_events_total",
		Help:      "Total number of ingestion events",
	})

	m.ingestItemsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_items_total",
		Help:      "Total number of parsed items handed to the pipeline",
	})

	m.entriesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_created_total",
			Help:      "Total number of entries created, by category and classification tier",
		},
		[]string{"category", "tier"},
	)

	m.batchCommitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_commit_duration_seconds",
		Help:      "Time taken to commit one ingestion batch",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	m.enrichmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichments_total",
			Help:      "Total number of background enrichments",
		},
		[]string{"status"}, // status: scheduled, success, error
	)

	m.enrichmentErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_errors_total",
			Help:      "Total number of failed enrichments, by error type",
		},
		[]string{"error_type"},
	)

	m.enrichmentDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "enrichment_duration_seconds",
		Help:      "Time taken to enrich one name, including rate limiting",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	m.enrichmentsPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "enrichments_pending",
		Help:      "Number of enrichments scheduled but not yet finished",
	})
}

// Describe implements the Collector interface
func (m *IngestMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ingestEventsTotal.Describe(ch)
	m.ingestItemsTotal.Describe(ch)
	m.entriesCreatedTotal.Describe(ch)
	m.batchCommitDuration.Describe(ch)
	m.enrichmentsTotal.Describe(ch)
	m.enrichmentErrorsTotal.Describe(ch)
	m.enrichmentDuration.Describe(ch)
	m.enrichmentsPending.Describe(ch)
}

// Collect implements the Collector interface
func (m *IngestMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ingestEventsTotal.Collect(ch)
	m.ingestItemsTotal.Collect(ch)
	m.entriesCreatedTotal.Collect(ch)
	m.batchCommitDuration.Collect(ch)
	m.enrichmentsTotal.Collect(ch)
	m.enrichmentErrorsTotal.Collect(ch)
	m.enrichmentDuration.Collect(ch)
	m.enrichmentsPending.Collect(ch)
}

func (m *IngestMetrics) IngestStarted(items int) {
	m.ingestEventsTotal.Inc()
	m.ingestItemsTotal.Add(float64(items))
}

func (m *IngestMetrics) EntryCreated(entry *core.GroceryEntry, tier classify.Tier) {
	m.entriesCreatedTotal.WithLabelValues(string(entry.Category), tier.String()).Inc()
}

func (m *IngestMetrics) BatchCommitted(_ int, elapsed time.Duration) {
	m.batchCommitDuration.Observe(elapsed.Seconds())
}

func (m *IngestMetrics) EnrichmentScheduled(_ string) {
	m.enrichmentsTotal.WithLabelValues("scheduled").Inc()
	m.enrichmentsPending.Inc()
}

func (m *IngestMetrics) EnrichmentSucceeded(_ string, elapsed time.Duration) {
	m.enrichmentsTotal.WithLabelValues("success").Inc()
	m.enrichmentDuration.Observe(elapsed.Seconds())
	m.enrichmentsPending.Dec()
}

func (m *IngestMetrics) EnrichmentFailed(_ string, err error) {
	m.enrichmentsTotal.WithLabelValues("error").Inc()
	m.enrichmentErrorsTotal.WithLabelValues(errorType(err)).Inc()
	m.enrichmentsPending.Dec()
}

// errorType maps an enrichment error onto a bounded label value.
func errorType(err error) string {
	switch {
	case errors.Is(err, ai.ErrTimeout):
		return "timeout"
	case errors.Is(err, ai.ErrServiceUnavailable):
		return "unavailable"
	case errors.Is(err, ai.ErrInvalidResponse):
		return "invalid_response"
	case errors.Is(err, core.ErrInvalidKnowledgeRecord):
		return "invalid_record"
	}
	return "other"
}
