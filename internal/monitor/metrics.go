package monitor

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"liqwatch/internal/models"
)

// ============================================================
// Prometheus метрики движка оценки рисков
// ============================================================
//
// Использование:
// - Grafana дашборды для визуализации health аккаунтов
// - Alertmanager как резервный канал поверх Telegram
// - Анализ стабильности info API в production

// ============ Метрики оценки ============

// EvaluationsTotal - количество циклов оценки по результатам
var EvaluationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "liqwatch",
		Subsystem: "monitor",
		Name:      "evaluations_total",
		Help:      "Total number of account evaluations",
	},
	[]string{"result"}, // ok, no_data, fetch_error
)

// EvaluationLatency - длительность оценки одного аккаунта
// (почти целиком - латентность info API)
var EvaluationLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "liqwatch",
		Subsystem: "monitor",
		Name:      "evaluation_latency_ms",
		Help:      "Time to evaluate a single account in milliseconds",
		Buckets:   []float64{50, 100, 200, 500, 1000, 2000, 5000},
	},
	[]string{"account"},
)

// AccountHealth - текущий health аккаунтов (0-100)
var AccountHealth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "liqwatch",
		Subsystem: "monitor",
		Name:      "account_health_pct",
		Help:      "Current account health percentage (0-100)",
	},
	[]string{"account"},
)

// AccountTier - текущий тир риска аккаунтов
var AccountTier = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "liqwatch",
		Subsystem: "monitor",
		Name:      "account_risk_tier",
		Help:      "Current account risk tier (0 = none)",
	},
	[]string{"account"},
)

// ============ Метрики алертов ============

// AlertsEmitted - отправленные алерты по тирам
var AlertsEmitted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "liqwatch",
		Subsystem: "alerts",
		Name:      "emitted_total",
		Help:      "Total number of alerts emitted",
	},
	[]string{"tier"},
)

// AlertsSuppressed - подавленные гейтом алерты по тирам
var AlertsSuppressed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "liqwatch",
		Subsystem: "alerts",
		Name:      "suppressed_total",
		Help:      "Total number of alerts suppressed by the gate",
	},
	[]string{"tier"},
)

// AlertDeliveryFailures - неудачные отправки в мессенджер
var AlertDeliveryFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "liqwatch",
		Subsystem: "alerts",
		Name:      "delivery_failures_total",
		Help:      "Total number of failed alert deliveries",
	},
)

// ============ Метрики инфраструктуры ============

// VenueRequestErrors - ошибки запросов к info API
var VenueRequestErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "liqwatch",
		Subsystem: "venue",
		Name:      "request_errors_total",
		Help:      "Total number of failed venue API requests",
	},
	[]string{"endpoint"},
)

// StateStoreErrors - ошибки state store (гейт при этом fail open)
var StateStoreErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "liqwatch",
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Total number of state store failures",
	},
	[]string{"op"}, // get, put
)

// ============ Вспомогательные функции ============

// RecordEvaluation записывает результат оценки аккаунта
func RecordEvaluation(result string, account string, latencyMs float64) {
	EvaluationsTotal.WithLabelValues(result).Inc()
	EvaluationLatency.WithLabelValues(account).Observe(latencyMs)
}

// RecordHealth обновляет gauge'ы health и тира аккаунта
func RecordHealth(account string, healthPct float64, tier models.RiskTier) {
	AccountHealth.WithLabelValues(account).Set(healthPct)
	AccountTier.WithLabelValues(account).Set(float64(tier))
}

// RecordAlert записывает решение гейта
func RecordAlert(tier models.RiskTier, emitted bool) {
	label := strconv.Itoa(int(tier))
	if emitted {
		AlertsEmitted.WithLabelValues(label).Inc()
	} else {
		AlertsSuppressed.WithLabelValues(label).Inc()
	}
}
