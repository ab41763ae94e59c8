// Package metrics provides Prometheus metrics for the carelog service.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "carelog"

var (
	// HTTPRequestsTotal tracks inbound HTTP requests by route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks inbound HTTP request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// MatchSearchesTotal tracks patient searches by outcome (matched, no_match)
	MatchSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "searches_total",
			Help:      "Total number of patient match searches by outcome",
		},
		[]string{"outcome"},
	)

	// MatchBestScore tracks the best total score of each search
	MatchBestScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "best_score_percent",
			Help:      "Best total score of each patient search, in percent",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		},
	)

	// MatchCandidates tracks how many records each search ranked
	MatchCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "candidates",
			Help:      "Number of candidate records ranked per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// ReportGenerationsTotal tracks report generations by status
	ReportGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "generations_total",
			Help:      "Total number of report generations by status",
		},
		[]string{"status"},
	)

	// ReportDuration tracks report generator run time
	ReportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "duration_seconds",
			Help:      "Duration of report generator runs in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// LoginAttemptsTotal tracks professional logins by outcome
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordMatch records the outcome of one patient search.
func RecordMatch(matched bool, bestScore float64, candidates int) {
	outcome := "no_match"
	if matched {
		outcome = "matched"
	}
	MatchSearchesTotal.WithLabelValues(outcome).Inc()
	MatchBestScore.Observe(bestScore)
	MatchCandidates.Observe(float64(candidates))
}

// RecordReport records a report generator run.
func RecordReport(status string, d time.Duration) {
	ReportGenerationsTotal.WithLabelValues(status).Inc()
	ReportDuration.Observe(d.Seconds())
}

// RecordLogin records a login attempt.
func RecordLogin(outcome string) {
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// Middleware records request counts and latency per route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
