// Package metrics exposes operational counters on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	EntriesCreated  prometheus.Counter
	EntriesConsumed prometheus.Counter
	EntriesExpired  prometheus.Counter
	LiveRooms       prometheus.Gauge
	LiveConnections prometheus.Gauge
	MessagesTotal   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EntriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dropchat_entries_created_total",
			Help: "Entries published.",
		}),
		EntriesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dropchat_entries_consumed_total",
			Help: "Successful entry reads.",
		}),
		EntriesExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dropchat_entries_expired_total",
			Help: "Entries removed by TTL sweep or lazy expiration.",
		}),
		LiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dropchat_live_rooms",
			Help: "Chat rooms with at least one connection.",
		}),
		LiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dropchat_live_connections",
			Help: "Open websocket connections.",
		}),
		MessagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dropchat_messages_total",
			Help: "Chat messages accepted by the broker.",
		}),
	}
	m.registry.MustRegister(
		m.EntriesCreated,
		m.EntriesConsumed,
		m.EntriesExpired,
		m.LiveRooms,
		m.LiveConnections,
		m.MessagesTotal,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
