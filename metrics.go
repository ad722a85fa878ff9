package concurrentcube

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SeamusWaldron/concurrentcube/internal/phase"
)

// Cancellation stages, used as the "stage" metric label and log field.
const (
	stageAdmission  = "admission"
	stageLayerLock  = "layer_lock"
	stageBeforeHook = "before_hook"
	stageCommitted  = "committed"
)

// metrics holds the per-cube collectors. A nil *metrics records nothing.
type metrics struct {
	rotations     *prometheus.CounterVec
	shows         prometheus.Counter
	cancellations *prometheus.CounterVec
	phaseSwitches *prometheus.CounterVec
	admitted      prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer, cubeID string) (*metrics, error) {
	labels := prometheus.Labels{"cube": cubeID}
	m := &metrics{
		// rotations counts completed rotations by face
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "concurrentcube_rotations_total",
			Help:        "Completed layer rotations by face",
			ConstLabels: labels,
		}, []string{"face"}),
		shows: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "concurrentcube_shows_total",
			Help:        "Completed snapshot reads",
			ConstLabels: labels,
		}),
		// cancellations counts cancelled operations by the point they stopped at
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "concurrentcube_cancellations_total",
			Help:        "Cancelled operations by stage",
			ConstLabels: labels,
		}, []string{"stage"}),
		phaseSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "concurrentcube_phase_switches_total",
			Help:        "Phase changes by incoming phase",
			ConstLabels: labels,
		}, []string{"phase"}),
		admitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "concurrentcube_admitted_operations",
			Help:        "Operations admitted to the active phase that have not finished",
			ConstLabels: labels,
		}),
	}

	for _, c := range []prometheus.Collector{m.rotations, m.shows, m.cancellations, m.phaseSwitches, m.admitted} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *metrics) rotated(face Face) {
	if m == nil {
		return
	}
	m.rotations.WithLabelValues(face.String()).Inc()
}

func (m *metrics) showed() {
	if m == nil {
		return
	}
	m.shows.Inc()
}

func (m *metrics) cancelled(stage string) {
	if m == nil {
		return
	}
	m.cancellations.WithLabelValues(stage).Inc()
}

func (m *metrics) switched(to phase.Phase) {
	if m == nil {
		return
	}
	m.phaseSwitches.WithLabelValues(to.String()).Inc()
}

func (m *metrics) entered() {
	if m == nil {
		return
	}
	m.admitted.Inc()
}

func (m *metrics) left() {
	if m == nil {
		return
	}
	m.admitted.Dec()
}
