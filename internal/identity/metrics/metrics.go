package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"lineage/internal/identity/models"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics provides observability for identity resolution.
// Tracks resolution outcomes, candidate fan-out and review throughput.
type Metrics struct {
	Resolutions         *prometheus.CounterVec
	ResolveDuration     prometheus.Histogram
	CandidatesPerSearch prometheus.Histogram
	VariantsAbsorbed    prometheus.Counter
	QueueAdjudications  *prometheus.CounterVec
}

// New registers identity metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers identity metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_resolutions_total",
			Help: "Occurrences resolved, by action (matched, queued_for_review, created_new)",
		}, []string{"action"}),
		ResolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineage_resolve_duration_seconds",
			Help:    "Duration of ResolveOrCreate units of work",
			Buckets: durationBuckets,
		}),
		CandidatesPerSearch: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineage_candidates_per_search",
			Help:    "Ranked candidates returned per candidate search",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 10},
		}),
		VariantsAbsorbed: factory.NewCounter(prometheus.CounterOpts{
			Name: "lineage_variants_absorbed_total",
			Help: "Variant inserts absorbed because the spelling already existed",
		}),
		QueueAdjudications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_queue_adjudications_total",
			Help: "Review queue items closed, by resolution type or dismissed",
		}, []string{"outcome"}),
	}
}

// IncrementResolution records one resolved occurrence.
func (m *Metrics) IncrementResolution(action models.Action) {
	m.Resolutions.WithLabelValues(string(action)).Inc()
}

// ObserveResolve records the duration of a ResolveOrCreate call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveResolve(start time.Time) {
	m.ResolveDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveCandidates(n int) {
	m.CandidatesPerSearch.Observe(float64(n))
}

func (m *Metrics) IncrementVariantAbsorbed() {
	m.VariantsAbsorbed.Inc()
}

// IncrementAdjudication records a closed queue item; outcome is a
// resolution type or "dismissed".
func (m *Metrics) IncrementAdjudication(outcome string) {
	m.QueueAdjudications.WithLabelValues(outcome).Inc()
}
