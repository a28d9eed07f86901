package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tmseg/tmseg-go/internal/errors"
)

// PipelineMetrics contains all Prometheus metrics of the prediction engine
// and the batch runner.
type PipelineMetrics struct {
	OperationsTotal *prometheus.CounterVec
	OperationErrors *prometheus.CounterVec
	Duration        *prometheus.HistogramVec

	HelicesPredicted      prometheus.Counter
	SignalPeptides        prometheus.Counter
	TransmembraneProteins prometheus.Counter

	CacheHits     prometheus.Gauge
	CacheMisses   prometheus.Gauge
	ActiveWorkers prometheus.Gauge

	registry *prometheus.Registry
}

// NewPipelineMetrics creates the pipeline collectors and registers them on
// registry.
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmseg_operations_total",
			Help: "Total number of pipeline operations partitioned by operation and status",
		},
		[]string{"operation", "status"},
	)
	m.OperationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmseg_operation_errors_total",
			Help: "Total number of failed operations partitioned by error category",
		},
		[]string{"operation", "error_type"},
	)
	m.Duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmseg_duration_seconds",
			Help:    "Time spent per operation or pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"operation"},
	)

	m.HelicesPredicted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tmseg_helices_predicted_total",
		Help: "Total number of transmembrane helices in emitted predictions",
	})
	m.SignalPeptides = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tmseg_signal_peptides_total",
		Help: "Total number of predictions carrying a signal peptide",
	})
	m.TransmembraneProteins = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tmseg_transmembrane_proteins_total",
		Help: "Total number of proteins classified as transmembrane",
	})

	m.CacheHits = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tmseg_segment_cache_hits",
		Help: "Segment oracle cache hits since start",
	})
	m.CacheMisses = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tmseg_segment_cache_misses",
		Help: "Segment oracle cache misses since start",
	})
	m.ActiveWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tmseg_active_workers",
		Help: "Number of proteins currently being processed",
	})
}

// RecordOperation implements Recorder.
func (m *PipelineMetrics) RecordOperation(operation, status string) {
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder.
func (m *PipelineMetrics) RecordDuration(operation string, seconds float64) {
	m.Duration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder.
func (m *PipelineMetrics) RecordError(operation, errorType string) {
	m.OperationErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordPrediction counts the features of one emitted prediction.
func (m *PipelineMetrics) RecordPrediction(transmembrane, signal bool, helices int) {
	if transmembrane {
		m.TransmembraneProteins.Inc()
	}
	if signal {
		m.SignalPeptides.Inc()
	}
	m.HelicesPredicted.Add(float64(helices))
}

// SetCacheStats publishes the cumulative segment cache counters.
func (m *PipelineMetrics) SetCacheStats(hits, misses uint64) {
	m.CacheHits.Set(float64(hits))
	m.CacheMisses.Set(float64(misses))
}

// WorkerStarted and WorkerDone track in-flight proteins.
func (m *PipelineMetrics) WorkerStarted() { m.ActiveWorkers.Inc() }

func (m *PipelineMetrics) WorkerDone() { m.ActiveWorkers.Dec() }

// Describe implements the prometheus.Collector interface.
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.OperationsTotal.Describe(ch)
	m.OperationErrors.Describe(ch)
	m.Duration.Describe(ch)
	ch <- m.HelicesPredicted.Desc()
	ch <- m.SignalPeptides.Desc()
	ch <- m.TransmembraneProteins.Desc()
	ch <- m.CacheHits.Desc()
	ch <- m.CacheMisses.Desc()
	ch <- m.ActiveWorkers.Desc()
}

// Collect implements the prometheus.Collector interface.
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.OperationsTotal.Collect(ch)
	m.OperationErrors.Collect(ch)
	m.Duration.Collect(ch)
	ch <- m.HelicesPredicted
	ch <- m.SignalPeptides
	ch <- m.TransmembraneProteins
	ch <- m.CacheHits
	ch <- m.CacheMisses
	ch <- m.ActiveWorkers
}

// ErrorType returns the category of an enhanced error, or "unknown".
func ErrorType(err error) string {
	if err == nil {
		return "none"
	}
	var ee *errors.EnhancedError
	if errors.As(err, &ee) && ee.GetCategory() != "" {
		return ee.GetCategory()
	}
	return "unknown"
}

var _ Recorder = (*PipelineMetrics)(nil)
