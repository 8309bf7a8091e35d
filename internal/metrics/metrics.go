package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the queue's Prometheus collectors. A nil *Metrics is valid
// and turns every observation into a no-op, so the queue can run without
// an observability surface.
type Metrics struct {
	registry *prometheus.Registry

	laneDepth          *prometheus.GaugeVec
	enqueueTotal       *prometheus.CounterVec
	dequeueTotal       *prometheus.CounterVec
	watermarkCrossings *prometheus.CounterVec
	deadLetterTotal    *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		laneDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "laneq",
				Name:      "lane_depth",
				Help:      "Current depth by lane.",
			},
			[]string{"lane"},
		),
		enqueueTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "laneq",
				Name:      "enqueue_total",
				Help:      "Enqueue operations by lane and result.",
			},
			[]string{"lane", "result"},
		),
		dequeueTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "laneq",
				Name:      "dequeue_total",
				Help:      "Items delivered by lane.",
			},
			[]string{"lane"},
		),
		watermarkCrossings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "laneq",
				Name:      "watermark_crossings_total",
				Help:      "Watermark transitions by lane and direction.",
			},
			[]string{"lane", "direction"},
		),
		deadLetterTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "laneq",
				Name:      "deadletter_total",
				Help:      "Dead-lettered items by lane and reason.",
			},
			[]string{"lane", "reason"},
		),
	}
	m.registry.MustRegister(
		m.laneDepth,
		m.enqueueTotal,
		m.dequeueTotal,
		m.watermarkCrossings,
		m.deadLetterTotal,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDepth records a lane's depth after a mutation.
func (m *Metrics) ObserveDepth(lane, depth int) {
	if m == nil {
		return
	}
	m.laneDepth.WithLabelValues(strconv.Itoa(lane)).Set(float64(depth))
}

// IncEnqueue counts an enqueue outcome.
func (m *Metrics) IncEnqueue(lane int, result string) {
	if m == nil {
		return
	}
	m.enqueueTotal.WithLabelValues(strconv.Itoa(lane), result).Inc()
}

// IncDequeue counts a delivered item.
func (m *Metrics) IncDequeue(lane int) {
	if m == nil {
		return
	}
	m.dequeueTotal.WithLabelValues(strconv.Itoa(lane)).Inc()
}

// IncCrossing counts a watermark transition.
func (m *Metrics) IncCrossing(lane int, direction string) {
	if m == nil {
		return
	}
	m.watermarkCrossings.WithLabelValues(strconv.Itoa(lane), direction).Inc()
}

// IncDeadLetter counts a dead-lettered item.
func (m *Metrics) IncDeadLetter(lane int, reason string) {
	if m == nil {
		return
	}
	m.deadLetterTotal.WithLabelValues(strconv.Itoa(lane), reason).Inc()
}
