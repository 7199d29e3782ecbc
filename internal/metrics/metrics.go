// Package metrics содержит Prometheus метрики сканера, экспортируемые через
// GET /metrics (promhttp.Handler(), см. internal/api/routes.go).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============ Метрики латентности сканов ============

// ScanLatency - время выполнения одного скана (single/multi/cross venue)
var ScanLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "arbitrage",
		Subsystem: "scanner",
		Name:      "scan_latency_ms",
		Help:      "Time to complete a single scan run in milliseconds",
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	},
	[]string{"mode"},
)

// FetchLatency - время получения тикеров/стаканов с одной площадки
var FetchLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "arbitrage",
		Subsystem: "scanner",
		Name:      "fetch_latency_ms",
		Help:      "Time to fetch market data from a single venue in milliseconds",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2000},
	},
	[]string{"venue"},
)

// ============ Счётчики событий ============

// ScansTotal - количество завершённых сканов по режиму и результату
var ScansTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "arbitrage",
		Subsystem: "scanner",
		Name:      "scans_total",
		Help:      "Total number of completed scans",
	},
	[]string{"mode", "result"}, // result: ok, error
)

// OpportunitiesDetected - обнаруженные арбитражные возможности (циклы и
// межбиржевые) по символу/площадке
var OpportunitiesDetected = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "arbitrage",
		Subsystem: "scanner",
		Name:      "opportunities_detected_total",
		Help:      "Number of arbitrage opportunities detected",
	},
	[]string{"kind"}, // cycle, cross_venue
)

// RateLimitEvents - срабатывания rate-limit бэкоффа площадки
var RateLimitEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "arbitrage",
		Subsystem: "scanner",
		Name:      "rate_limit_events_total",
		Help:      "Number of venue rate-limit backoff events",
	},
	[]string{"venue"},
)

// VenueDropEvents - исключения площадки из скана по постоянной ошибке
var VenueDropEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "arbitrage",
		Subsystem: "scanner",
		Name:      "venue_drop_events_total",
		Help:      "Number of venues dropped from scanning due to persistent errors",
	},
	[]string{"venue"},
)

// ============ Метрики состояния ============

// VenueConnectionStatus - статус подключения площадки (1=подключена, 0=нет)
var VenueConnectionStatus = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "arbitrage",
		Subsystem: "venue",
		Name:      "connection_status",
		Help:      "Venue connection status (1=connected, 0=disconnected)",
	},
	[]string{"venue"},
)

// BlacklistedSymbols - текущий размер черного списка символов
var BlacklistedSymbols = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "arbitrage",
		Subsystem: "scanner",
		Name:      "blacklisted_symbols",
		Help:      "Current number of blacklisted symbols",
	},
)

// WebSocketClients - количество подключенных WebSocket клиентов hub'а
var WebSocketClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "arbitrage",
		Subsystem: "websocket",
		Name:      "clients",
		Help:      "Current number of connected WebSocket clients",
	},
)

// WebSocketDropped - сообщения, отброшенные hub'ом (медленные клиенты или
// переполненный канал broadcast)
var WebSocketDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "arbitrage",
		Subsystem: "websocket",
		Name:      "messages_dropped_total",
		Help:      "Number of broadcast messages dropped by the WebSocket hub",
	},
)

// ============ Вспомогательные функции ============

// RecordScan записывает латентность и результат одного скана.
func RecordScan(mode string, latencyMs float64, err error) {
	ScanLatency.WithLabelValues(mode).Observe(latencyMs)
	result := "ok"
	if err != nil {
		result = "error"
	}
	ScansTotal.WithLabelValues(mode, result).Inc()
}

// RecordFetch записывает латентность получения данных с площадки.
func RecordFetch(venue string, latencyMs float64) {
	FetchLatency.WithLabelValues(venue).Observe(latencyMs)
}

// RecordOpportunity увеличивает счётчик обнаруженных возможностей.
func RecordOpportunity(kind string, count int) {
	OpportunitiesDetected.WithLabelValues(kind).Add(float64(count))
}

// RecordRateLimit записывает срабатывание rate-limit бэкоффа площадки.
func RecordRateLimit(venue string) {
	RateLimitEvents.WithLabelValues(venue).Inc()
}

// RecordVenueDrop записывает исключение площадки из скана.
func RecordVenueDrop(venue string) {
	VenueDropEvents.WithLabelValues(venue).Inc()
}

// UpdateVenueStatus обновляет статус подключения площадки.
func UpdateVenueStatus(venue string, connected bool) {
	if connected {
		VenueConnectionStatus.WithLabelValues(venue).Set(1)
	} else {
		VenueConnectionStatus.WithLabelValues(venue).Set(0)
	}
}
