// Package observability registers Prometheus metrics for the floor
// service.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "floor_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	sessionOps     *prometheus.CounterVec
	sessionLatency *prometheus.HistogramVec

	revenueCollected prometheus.Counter

	bookingsConverted *prometheus.CounterVec

	battleScores *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers the service metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		sessionOps = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "session_operations_total",
				Help: "Total session ledger operations by operation and result",
			},
			[]string{"operation", "result"},
		)
		sessionLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "session_operation_latency_seconds",
				Help:    "Session ledger operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)

		revenueCollected = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "revenue_collected_total",
				Help: "Total amount collected through settlements",
			},
		)

		bookingsConverted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bookings_converted_total",
				Help: "Total booking conversions by result",
			},
			[]string{"result"},
		)

		battleScores = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "battle_score_points_total",
				Help: "Total battle score points awarded by side",
			},
			[]string{"side"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		prometheus.MustRegister(
			sessionOps,
			sessionLatency,
			revenueCollected,
			bookingsConverted,
			battleScores,
			exportTotal,
			exportLatency,
		)
	})
}

// ObserveSessionOp records one ledger operation.
func ObserveSessionOp(operation string, err error, duration time.Duration) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if sessionOps != nil {
		sessionOps.WithLabelValues(operation, result).Inc()
	}
	if sessionLatency != nil {
		sessionLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// AddRevenueCollected adds a settled amount to the revenue counter.
func AddRevenueCollected(amount int64) {
	if amount <= 0 {
		return
	}
	if revenueCollected != nil {
		revenueCollected.Add(float64(amount))
	}
}

// IncBookingConverted counts one conversion attempt.
func IncBookingConverted(err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if bookingsConverted != nil {
		bookingsConverted.WithLabelValues(result).Inc()
	}
}

// IncBattleScore counts one awarded point.
func IncBattleScore(side string) {
	if battleScores != nil {
		battleScores.WithLabelValues(side).Inc()
	}
}

// ObserveExport records one report export.
func ObserveExport(format string, err error, duration time.Duration) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}
