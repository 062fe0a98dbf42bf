package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "blobr"

	// Status label values for success/error metrics
	StatusSuccess = "success"
	StatusError   = "error"

	API = "api"
)

// Labels holds constant labels applied to all metrics.
// These are useful for distinguishing metrics from multiple monitor instances.
type Labels struct {
	Network     string // Monitored network (e.g., "mainnet", "mocha")
	Environment string // Deployment environment (e.g., "production", "staging")
	Region      string // Cloud region (e.g., "us-east-1")
}

// toPrometheusLabels converts Labels to prometheus.Labels map.
// Only non-empty labels are included to avoid empty label values.
func (l Labels) toPrometheusLabels() prometheus.Labels {
	labels := prometheus.Labels{}
	if l.Network != "" {
		labels["network"] = l.Network
	}
	if l.Environment != "" {
		labels["environment"] = l.Environment
	}
	if l.Region != "" {
		labels["region"] = l.Region
	}
	return labels
}

type Metrics struct {
	// Aggregation state
	lastProcessedHeight prometheus.Gauge
	activeRollups       prometheus.Gauge

	// Cycle counters
	cycles          prometheus.Counter
	cycleDuration   prometheus.Histogram
	blocksProcessed prometheus.Counter
	blobsProcessed  prometheus.Counter
	blobsDisplayed  prometheus.Counter
	blocksSkipped   prometheus.Counter
	errors          *prometheus.CounterVec

	// Data source calls
	apiCalls    *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	apiInFlight prometheus.Gauge
}

// New creates a new Metrics instance and registers all metrics with the provided registerer.
// Returns an error if any metric registration fails.
func New(reg prometheus.Registerer) (*Metrics, error) {
	return NewWithLabels(reg, Labels{})
}

// NewWithLabels creates a new Metrics instance with constant labels applied to all metrics.
func NewWithLabels(reg prometheus.Registerer, labels Labels) (*Metrics, error) {
	promLabels := labels.toPrometheusLabels()
	if len(promLabels) > 0 {
		reg = prometheus.WrapRegistererWith(promLabels, reg)
	}

	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lastProcessedHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_processed_height",
			Help:      "Highest block height folded into the running totals",
		}),
		activeRollups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_rollups",
			Help:      "Number of rollups in the last successfully fetched rollup list",
		}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cycles_total",
			Help:      "Total number of completed poll cycles",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time to complete one poll cycle including all fetches",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		blocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "blocks_processed_total",
			Help:      "Total number of blocks whose stats were folded into the totals",
		}),
		blobsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "blobs_processed_total",
			Help:      "Total number of blobs counted from block stats",
		}),
		blobsDisplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "blobs_displayed_total",
			Help:      "Total number of blob summaries that passed the namespace filter",
		}),
		blocksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "blocks_skipped_total",
			Help:      "Blocks that fell between two cycles because the gap exceeded the fetch window",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total error events by operation and failure kind",
		}, []string{"op", "kind"}),
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: API,
			Name:      "calls_total",
			Help:      "Total data source calls by operation and status",
		}, []string{"op", "status"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: API,
			Name:      "duration_seconds",
			Help:      "Data source call duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		apiInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: API,
			Name:      "in_flight",
			Help:      "Number of data source calls currently in progress",
		}),
	}

	err := errors.Join(
		reg.Register(m.lastProcessedHeight),
		reg.Register(m.activeRollups),
		reg.Register(m.cycles),
		reg.Register(m.cycleDuration),
		reg.Register(m.blocksProcessed),
		reg.Register(m.blobsProcessed),
		reg.Register(m.blobsDisplayed),
		reg.Register(m.blocksSkipped),
		reg.Register(m.errors),
		reg.Register(m.apiCalls),
		reg.Register(m.apiDuration),
		reg.Register(m.apiInFlight),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCycle records one completed cycle and the totals it added.
func (m *Metrics) RecordCycle(durationSeconds float64, blocks, blobs, displayed uint64) {
	if m == nil {
		return
	}
	m.cycles.Inc()
	m.cycleDuration.Observe(durationSeconds)
	m.blocksProcessed.Add(float64(blocks))
	m.blobsProcessed.Add(float64(blobs))
	m.blobsDisplayed.Add(float64(displayed))
}

// AddSkippedBlocks counts blocks that were never fetched.
func (m *Metrics) AddSkippedBlocks(n uint64) {
	if m == nil {
		return
	}
	m.blocksSkipped.Add(float64(n))
}

// UpdateState updates the aggregation state gauges.
func (m *Metrics) UpdateState(lastProcessedHeight uint64, activeRollups int) {
	if m == nil {
		return
	}
	m.lastProcessedHeight.Set(float64(lastProcessedHeight))
	m.activeRollups.Set(float64(activeRollups))
}

// IncError increments the error counter for an operation and failure kind.
func (m *Metrics) IncError(op, kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(op, kind).Inc()
}

// IncAPIInFlight increments the in-flight data source call gauge.
func (m *Metrics) IncAPIInFlight() {
	if m == nil {
		return
	}
	m.apiInFlight.Inc()
}

// DecAPIInFlight decrements the in-flight data source call gauge.
func (m *Metrics) DecAPIInFlight() {
	if m == nil {
		return
	}
	m.apiInFlight.Dec()
}

// RecordAPICall records a data source call outcome.
func (m *Metrics) RecordAPICall(op string, err error, durationSeconds float64) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.apiCalls.WithLabelValues(op, status).Inc()
	m.apiDuration.WithLabelValues(op).Observe(durationSeconds)
}
