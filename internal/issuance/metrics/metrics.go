package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeInvalid = "invalid"
)

// Verification method labels.
const (
	MethodToken  = "token"
	MethodRecord = "record"
)

// Metrics holds Prometheus collectors for the issuance pipeline.
type Metrics struct {
	IssuancesTotal     *prometheus.CounterVec
	StepFailures       *prometheus.CounterVec
	VerificationsTotal *prometheus.CounterVec
	TokenRejections    *prometheus.CounterVec
	DocumentsRendered  prometheus.Counter
	IssuanceLatency    prometheus.Histogram
	DocumentSizeBytes  prometheus.Histogram
}

// New registers issuance collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		IssuancesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "touristid_issuances_total",
			Help: "Total number of credential issuances, labeled by outcome",
		}, []string{"outcome"}),
		StepFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "touristid_issuance_step_failures_total",
			Help: "Total number of issuance pipeline failures, labeled by step",
		}, []string{"step"}),
		VerificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "touristid_verifications_total",
			Help: "Total number of credential verifications, labeled by method and outcome",
		}, []string{"method", "outcome"}),
		TokenRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "touristid_access_token_rejections_total",
			Help: "Total number of rejected access tokens, labeled by reason",
		}, []string{"reason"}),
		DocumentsRendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "touristid_documents_rendered_total",
			Help: "Total number of credential PDFs rendered",
		}),
		IssuanceLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "touristid_issuance_duration_seconds",
			Help:    "End-to-end latency of issuance requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		DocumentSizeBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "touristid_document_size_bytes",
			Help:    "Size of rendered credential PDFs",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 8),
		}),
	}
}

func (m *Metrics) IncrementIssuance(outcome string) {
	m.IssuancesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementStepFailure(step string) {
	m.StepFailures.WithLabelValues(step).Inc()
}

func (m *Metrics) IncrementVerification(method, outcome string) {
	m.VerificationsTotal.WithLabelValues(method, outcome).Inc()
}

// IncrementTokenRejection counts a rejected token. The reason stays internal.
func (m *Metrics) IncrementTokenRejection(reason string) {
	m.TokenRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveIssuanceLatency(durationSeconds float64) {
	m.IssuanceLatency.Observe(durationSeconds)
}

func (m *Metrics) ObserveDocument(sizeBytes int) {
	m.DocumentsRendered.Inc()
	m.DocumentSizeBytes.Observe(float64(sizeBytes))
}
