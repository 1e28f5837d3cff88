package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels shared by the bot counters.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// BotMetrics records conversation, catalog, order and notification activity.
type BotMetrics struct {
	updates       *prometheus.CounterVec
	duplicates    prometheus.Counter
	orders        *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	catalogFetch  *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// NewBotMetrics registers the bot metrics on the provided registerer.
func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	if reg == nil {
		return &BotMetrics{}
	}
	updates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shopbot_updates_total",
		Help: "Inbound updates handled, by kind.",
	}, []string{"kind"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopbot_updates_duplicate_total",
		Help: "Inbound updates dropped as already processed.",
	})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shopbot_orders_finalized_total",
		Help: "Order finalization attempts, by result.",
	}, []string{"result"})
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shopbot_notification_deliveries_total",
		Help: "Operator notification deliveries, by result.",
	}, []string{"result"})
	catalogFetch := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shopbot_catalog_fetch_total",
		Help: "Catalog source fetches, by result.",
	}, []string{"result"})
	fetchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopbot_catalog_fetch_duration_seconds",
		Help:    "Duration of catalog source fetches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(updates, duplicates, orders, deliveries, catalogFetch, fetchDuration)
	return &BotMetrics{
		updates:       updates,
		duplicates:    duplicates,
		orders:        orders,
		deliveries:    deliveries,
		catalogFetch:  catalogFetch,
		fetchDuration: fetchDuration,
	}
}

// IncUpdate counts one inbound update of the given kind.
func (m *BotMetrics) IncUpdate(kind string) {
	if m == nil || m.updates == nil {
		return
	}
	m.updates.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncDuplicate counts one dropped duplicate update.
func (m *BotMetrics) IncDuplicate() {
	if m == nil || m.duplicates == nil {
		return
	}
	m.duplicates.Inc()
}

// ObserveOrder counts one finalization attempt.
func (m *BotMetrics) ObserveOrder(ok bool) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(result(ok)).Inc()
}

// AddDeliveries records the outcome of one notification fan-out.
func (m *BotMetrics) AddDeliveries(succeeded, failed int) {
	if m == nil || m.deliveries == nil {
		return
	}
	if succeeded > 0 {
		m.deliveries.WithLabelValues(ResultSuccess).Add(float64(succeeded))
	}
	if failed > 0 {
		m.deliveries.WithLabelValues(ResultFailure).Add(float64(failed))
	}
}

// ObserveCatalogFetch records one catalog source fetch.
func (m *BotMetrics) ObserveCatalogFetch(duration time.Duration, ok bool) {
	if m == nil || m.catalogFetch == nil {
		return
	}
	m.catalogFetch.WithLabelValues(result(ok)).Inc()
	m.fetchDuration.Observe(duration.Seconds())
}

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
