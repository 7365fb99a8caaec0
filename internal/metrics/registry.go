package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the sampling and replicate metrics.
// All record methods are safe on a nil *Registry.
type Registry struct {
	// Sampling metrics
	GenerationRoundsTotal *prometheus.CounterVec
	CandidatePairsDrawn   prometheus.Counter
	KnownPPIExclusions    prometheus.Counter
	SelfPairExclusions    prometheus.Counter
	CandidatePoolSize     prometheus.Histogram

	// Selection metrics
	SelectionsTotal *prometheus.CounterVec
	InstancesTotal  prometheus.Counter
	MatcherDuration prometheus.Histogram

	// Replicate metrics
	ReplicatesTotal    *prometheus.CounterVec
	ReplicatesInFlight prometheus.Gauge
	ReplicateDuration  prometheus.Histogram

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initSamplingMetrics()
	r.initReplicateMetrics()
	return r
}

func (r *Registry) initSamplingMetrics() {
	factory := promauto.With(r.registry)

	r.GenerationRoundsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rrs_generation_rounds_total",
			Help: "Candidate generation rounds by regime (empty, exhaustive, capped)",
		},
		[]string{"regime"},
	)
	r.CandidatePairsDrawn = factory.NewCounter(prometheus.CounterOpts{
		Name: "rrs_candidate_pairs_drawn_total",
		Help: "Product positions drawn during candidate generation",
	})
	r.KnownPPIExclusions = factory.NewCounter(prometheus.CounterOpts{
		Name: "rrs_known_ppi_exclusions_total",
		Help: "Drawn pairs discarded because they are known interactions",
	})
	r.SelfPairExclusions = factory.NewCounter(prometheus.CounterOpts{
		Name: "rrs_self_pair_exclusions_total",
		Help: "Drawn self-pairs discarded",
	})
	r.CandidatePoolSize = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "rrs_candidate_pool_size",
		Help:    "New candidate pairs matched per domain interface",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	r.SelectionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rrs_selections_total",
			Help: "Instance selections by state (sampled when matched pairs cover the target, all otherwise)",
		},
		[]string{"state"},
	)
	r.InstancesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "rrs_instances_total",
		Help: "RRS instances selected",
	})
	r.MatcherDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "rrs_matcher_duration_seconds",
		Help:    "DMI matcher duration per DMI type round",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 10.0},
	})
}

func (r *Registry) initReplicateMetrics() {
	factory := promauto.With(r.registry)

	r.ReplicatesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rrs_replicates_total",
			Help: "Replicate builds by final status",
		},
		[]string{"status"},
	)
	r.ReplicatesInFlight = factory.NewGauge(prometheus.GaugeOpts{
		Name: "rrs_replicates_in_flight",
		Help: "Replicate builds currently running",
	})
	r.ReplicateDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "rrs_replicate_duration_seconds",
		Help:    "Replicate build duration in seconds",
		Buckets: []float64{0.01, 0.1, 1.0, 10.0, 60.0, 300.0},
	})
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordGeneration records one candidate generation round
func (r *Registry) RecordGeneration(regime string, drawn, knownExcluded, selfExcluded int) {
	if r == nil {
		return
	}
	r.GenerationRoundsTotal.WithLabelValues(regime).Inc()
	r.CandidatePairsDrawn.Add(float64(drawn))
	r.KnownPPIExclusions.Add(float64(knownExcluded))
	r.SelfPairExclusions.Add(float64(selfExcluded))
}

// RecordSelection records the matching and selection of one interface batch
func (r *Registry) RecordSelection(poolSize, matchedPairs, target, selected int, matcherTime time.Duration) {
	if r == nil {
		return
	}
	r.CandidatePoolSize.Observe(float64(poolSize))
	r.MatcherDuration.Observe(matcherTime.Seconds())
	state := "all"
	if matchedPairs >= target {
		state = "sampled"
	}
	r.SelectionsTotal.WithLabelValues(state).Inc()
	r.InstancesTotal.Add(float64(selected))
}

// ReplicateStarted marks a replicate build as running
func (r *Registry) ReplicateStarted() {
	if r == nil {
		return
	}
	r.ReplicatesInFlight.Inc()
}

// ReplicateFinished records the final status of a replicate build
func (r *Registry) ReplicateFinished(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.ReplicatesInFlight.Dec()
	r.ReplicatesTotal.WithLabelValues(status).Inc()
	r.ReplicateDuration.Observe(duration.Seconds())
}
