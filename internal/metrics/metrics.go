package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the bird and sighting services.
// Tracks record creation, cascading deletes, integrity violations and
// per-operation latency.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	BirdsCreated        prometheus.Counter
	SightingsCreated    prometheus.Counter
	CascadedSightings   prometheus.Counter
	IntegrityViolations prometheus.Counter
	OperationDuration   *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BirdsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "birdwatch_birds_created_total",
			Help: "Total number of birds created",
		}),
		SightingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "birdwatch_sightings_created_total",
			Help: "Total number of sightings created",
		}),
		CascadedSightings: factory.NewCounter(prometheus.CounterOpts{
			Name: "birdwatch_cascaded_sightings_deleted_total",
			Help: "Sightings removed as part of deleting their bird",
		}),
		IntegrityViolations: factory.NewCounter(prometheus.CounterOpts{
			Name: "birdwatch_integrity_violations_total",
			Help: "Orphaned sightings detected while reading from the store",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "birdwatch_operation_duration_seconds",
			Help:    "Duration of service operations, store round trips included",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementBirdsCreated() {
	if m == nil {
		return
	}
	m.BirdsCreated.Inc()
}

func (m *Metrics) IncrementSightingsCreated() {
	if m == nil {
		return
	}
	m.SightingsCreated.Inc()
}

func (m *Metrics) AddCascadedSightings(n int) {
	if m == nil {
		return
	}
	m.CascadedSightings.Add(float64(n))
}

func (m *Metrics) IncrementIntegrityViolations() {
	if m == nil {
		return
	}
	m.IntegrityViolations.Inc()
}

// ObserveOperation records how long operation took.
// Call with time.Now() at the start of the operation, usually via defer.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
