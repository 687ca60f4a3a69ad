// Package metrics holds the Prometheus collectors of the scoreboard. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scoreboard"

type Metrics struct {
	mutations       *prometheus.CounterVec
	broadcasts      *prometheus.CounterVec
	syncChanges     prometheus.Counter
	httpDuration    *prometheus.HistogramVec
	websocketClient prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "team_mutations_total",
			Help:      "Team scoring mutations by operation and result.",
		}, []string{"operation", "result"}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Live update broadcasts by event and result.",
		}, []string{"event", "result"}),
		syncChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elimination_sync_changes_total",
			Help:      "Elimination notifications created or changed by sync.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		websocketClient: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Currently connected WebSocket clients.",
		}),
	}

	reg.MustRegister(m.mutations, m.broadcasts, m.syncChanges, m.httpDuration, m.websocketClient)
	return m
}

func (m *Metrics) ObserveMutation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mutations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveBroadcast(event string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.broadcasts.WithLabelValues(event, result).Inc()
}

func (m *Metrics) AddSyncChanges(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.syncChanges.Add(float64(n))
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) WebSocketConnected() {
	if m == nil {
		return
	}
	m.websocketClient.Inc()
}

func (m *Metrics) WebSocketDisconnected() {
	if m == nil {
		return
	}
	m.websocketClient.Dec()
}
