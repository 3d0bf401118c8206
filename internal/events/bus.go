// Package events is a synchronous in-process domain event bus. Ledger
// services publish after their write commits; subscribers react without
// the publisher knowing about them, and a failing subscriber never fails
// the publisher.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ledgerbook/internal/models"
)

// Type names a domain event.
type Type string

const (
	EntryCreated       Type = "entry.created"
	EntryUpdated       Type = "entry.updated"
	EntryDeleted       Type = "entry.deleted"
	SettlementApplied  Type = "settlement.applied"
	SettlementReversed Type = "settlement.reversed"
	AlertsRaised       Type = "alerts.raised"
	PartyChanged       Type = "party.changed"
)

// Event is one published fact. Fields irrelevant to the Type stay zero.
type Event struct {
	Type       Type
	OwnerID    string
	Entry      *models.Entry
	Settlement *models.Settlement
	// Derived is the cash entry generated or removed by a settlement.
	Derived *models.Entry
	Party   *models.Party
	Alerts  []models.Alert
	// Changes describes the mutation for the audit trail.
	Changes    map[string]any
	OccurredAt time.Time
}

// Handler reacts to an event.
type Handler func(ctx context.Context, e Event) error

// Publisher is the side of the bus services depend on.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type subscription struct {
	name    string
	types   map[Type]bool
	handler Handler
}

// Bus delivers events to subscribers in subscription order.
type Bus struct {
	mu   sync.RWMutex
	subs []subscription
	log  *zap.SugaredLogger
	now  func() time.Time
}

// NewBus creates an empty bus.
func NewBus(log *zap.SugaredLogger) *Bus {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Bus{log: log, now: time.Now}
}

// Subscribe registers h for the given types, or for every type when none
// are given.
func (b *Bus) Subscribe(name string, h Handler, types ...Type) {
	s := subscription{name: name, handler: h}
	if len(types) > 0 {
		s.types = make(map[Type]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
}

// Publish delivers e to every matching subscriber. Errors and panics are
// logged and swallowed.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = b.now()
	}
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if s.types != nil && !s.types[e.Type] {
			continue
		}
		if err := b.deliver(ctx, s, e); err != nil {
			b.log.Errorw("event subscriber failed",
				"subscriber", s.name,
				"event", e.Type,
				"owner_id", e.OwnerID,
				"error", err,
			)
		}
	}
}

func (b *Bus) deliver(ctx context.Context, s subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.handler(ctx, e)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
