package server

import (
	"ledgerbook/internal/alerts"
	"ledgerbook/internal/config"
	"ledgerbook/internal/events"
	"ledgerbook/internal/logger"
	"ledgerbook/internal/metrics"
	"ledgerbook/internal/ratelimit"
	"ledgerbook/internal/services"
	"ledgerbook/internal/store"
)

// Dependencies is the wired service graph behind the HTTP layer.
type Dependencies struct {
	clock       services.Clock
	limiter     ratelimit.Limiter
	entries     services.EntryServicer
	settlements services.SettlementServicer
	parties     services.PartyServicer
	reports     services.ReportServicer
	alerts      services.AlertServicer
	audit       services.AuditServicer
}

// NewDependencies builds every service on st and connects the event
// subscribers: audit, metrics and alert evaluation.
func NewDependencies(st store.Store, cfg *config.Config, clock services.Clock, limiter ratelimit.Limiter) *Dependencies {
	log := logger.Get()
	bus := events.NewBus(log)

	th := alerts.Thresholds{
		LargeExpense: cfg.Alerts.LargeExpense,
		LowBalance:   cfg.Alerts.LowBalance,
		OverrunRatio: cfg.Alerts.OverrunRatio,
	}

	d := &Dependencies{
		clock:       clock,
		limiter:     limiter,
		entries:     services.NewEntryService(st, bus, limiter, clock),
		settlements: services.NewSettlementService(st, bus, limiter, clock, cfg.SettlementMaxRetries),
		parties:     services.NewPartyService(st, bus),
		reports:     services.NewReportService(st, clock),
		alerts:      services.NewAlertService(st, alerts.NewDefaultEngine(th, log), bus, clock, cfg.Alerts.Retention),
		audit:       services.NewAuditService(st),
	}

	bus.Subscribe("audit", d.audit.HandleEvent)
	bus.Subscribe("metrics", metrics.ObserveEvent)
	bus.Subscribe("alerts", d.alerts.HandleEvent, events.EntryCreated, events.SettlementApplied)
	return d
}
