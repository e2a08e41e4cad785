package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels shared by the engine counters.
const (
	ResultOK                 = "ok"
	ResultInsufficientStock  = "insufficient_stock"
	ResultInsufficientPoints = "insufficient_points"
	ResultFailed             = "failed"
)

// EngineMetrics counts cart and voucher ledger outcomes.
type EngineMetrics struct {
	cartAdds       *prometheus.CounterVec
	redemptions    *prometheus.CounterVec
	codeCollisions prometheus.Counter
	submissions    prometheus.Counter
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	cartAdds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_item_adds_total",
		Help:      "Shopping list add attempts by item kind and result.",
	}, []string{"kind", "result"})
	redemptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "voucher_redemptions_total",
		Help:      "Voucher redemption attempts by result.",
	}, []string{"result"})
	codeCollisions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "voucher_code_collisions_total",
		Help:      "Generated voucher codes rejected by the unique constraint.",
	})
	submissions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "click_and_collect_submissions_total",
		Help:      "Carts handed to the fulfilment collaborator.",
	})
	reg.MustRegister(cartAdds, redemptions, codeCollisions, submissions)
	return &EngineMetrics{
		cartAdds:       cartAdds,
		redemptions:    redemptions,
		codeCollisions: codeCollisions,
		submissions:    submissions,
	}
}

func (m *EngineMetrics) IncCartAdd(kind, result string) {
	if m == nil || m.cartAdds == nil {
		return
	}
	m.cartAdds.WithLabelValues(normalizeLabel(kind), normalizeLabel(result)).Inc()
}

func (m *EngineMetrics) IncRedemption(result string) {
	if m == nil || m.redemptions == nil {
		return
	}
	m.redemptions.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *EngineMetrics) IncCodeCollision() {
	if m == nil || m.codeCollisions == nil {
		return
	}
	m.codeCollisions.Inc()
}

func (m *EngineMetrics) IncSubmission() {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.Inc()
}

// HTTPMetrics records request latency per chi route pattern.
type HTTPMetrics struct {
	latency *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP latency histogram.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(latency)
	return &HTTPMetrics{latency: latency}
}

func (m *HTTPMetrics) Observe(method, route, status string, duration time.Duration) {
	if m == nil || m.latency == nil {
		return
	}
	m.latency.WithLabelValues(method, normalizeLabel(route), status).Observe(duration.Seconds())
}

// Outbox relay outcomes.
const (
	OutboxPublished    = "published"
	OutboxRetry        = "retry"
	OutboxDeadLettered = "dead_lettered"
)

// OutboxMetrics counts relay outcomes per event type.
type OutboxMetrics struct {
	events *prometheus.CounterVec
}

// NewOutboxMetrics registers the outbox relay counter.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_events_total",
		Help:      "Outbox rows relayed to Pub/Sub by event type and outcome.",
	}, []string{"event_type", "outcome"})
	reg.MustRegister(events)
	return &OutboxMetrics{events: events}
}

func (m *OutboxMetrics) Inc(eventType, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType), outcome).Inc()
}
