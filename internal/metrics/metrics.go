// Package metrics exposes Prometheus instruments for the HTTP layer and
// the ledger's domain events.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ledgerbook/internal/events"
)

var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerbook_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledgerbook_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"method", "route"})

	domainEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerbook_domain_events_total",
		Help: "Domain events published by the ledger",
	}, []string{"event"})

	settledAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerbook_settled_amount_total",
		Help: "Sum of settlement amounts applied, by settlement type",
	}, []string{"type"})

	alertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerbook_alerts_raised_total",
		Help: "Alerts raised by rule",
	}, []string{"rule", "type"})

	settlementRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledgerbook_settlement_conflict_retries_total",
		Help: "Settlement attempts retried after a concurrent modification",
	})
)

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpReqTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveEvent is an events.Handler counting domain events.
func ObserveEvent(_ context.Context, e events.Event) error {
	domainEvents.WithLabelValues(string(e.Type)).Inc()
	switch e.Type {
	case events.SettlementApplied:
		if e.Settlement != nil {
			amount, _ := e.Settlement.Amount.Float64()
			settledAmount.WithLabelValues(string(e.Settlement.SettlementType)).Add(amount)
		}
	case events.AlertsRaised:
		for _, a := range e.Alerts {
			alertsRaised.WithLabelValues(a.Rule, string(a.Type)).Inc()
		}
	}
	return nil
}

// SettlementRetried counts one conflict retry.
func SettlementRetried() {
	settlementRetries.Inc()
}
