package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fraud-risk-engine/internal/infrastructure/ml"
)

// Error kinds recorded by ObserveScoringError
const (
	ErrorKindValidation     = "validation"
	ErrorKindNotReady       = "not_ready"
	ErrorKindInitialization = "initialization"
	ErrorKindStore          = "store"
	ErrorKindInternal       = "internal"
)

// Collector owns the engine's Prometheus metrics on a private registry
type Collector struct {
	registry *prometheus.Registry

	decisions          *prometheus.CounterVec
	scoringDuration    prometheus.Histogram
	probability        prometheus.Histogram
	scoringErrors      *prometheus.CounterVec
	initializations    *prometheus.CounterVec
	trainingDuration   prometheus.Histogram
	validationAccuracy prometheus.Gauge
}

// NewCollector registers every metric on a fresh registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_decisions_total",
			Help: "Scoring decisions by verdict",
		}, []string{"verdict"}),
		scoringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_scoring_duration_seconds",
			Help:    "Time taken to score a transaction",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		probability: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_probability",
			Help:    "Distribution of reported fraud probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		scoringErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_scoring_errors_total",
			Help: "Scoring failures by kind",
		}, []string{"kind"}),
		initializations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_model_initializations_total",
			Help: "Classifier training runs by result",
		}, []string{"result"}),
		trainingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_model_training_duration_seconds",
			Help:    "Time taken to train the classifier",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		validationAccuracy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fraud_model_validation_accuracy",
			Help: "Validation accuracy of the active classifier",
		}),
	}
}

// Registry exposes the underlying registry, mostly for tests
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveDecision records a completed scoring call
func (c *Collector) ObserveDecision(verdict string, probability float64, duration time.Duration) {
	c.decisions.WithLabelValues(verdict).Inc()
	c.probability.Observe(probability)
	c.scoringDuration.Observe(duration.Seconds())
}

// ObserveScoringError records a failed scoring call
func (c *Collector) ObserveScoringError(kind string) {
	c.scoringErrors.WithLabelValues(kind).Inc()
}

// ObserveTraining implements ml.TrainingObserver
func (c *Collector) ObserveTraining(success bool, duration time.Duration, report *ml.TrainingReport) {
	result := "failure"
	if success {
		result = "success"
	}
	c.initializations.WithLabelValues(result).Inc()
	c.trainingDuration.Observe(duration.Seconds())
	if success && report != nil {
		c.validationAccuracy.Set(report.ValidationAccuracy)
	}
}

var _ ml.TrainingObserver = (*Collector)(nil)
