package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"ledgerbook/internal/models"
	"ledgerbook/internal/pagination"
	"ledgerbook/internal/uuid"
)

type memState struct {
	entries     map[string]models.Entry
	settlements map[string]models.Settlement
	parties     map[string]models.Party
	alerts      map[string]models.Alert
	audit       []models.AuditLog
}

func newMemState() *memState {
	return &memState{
		entries:     make(map[string]models.Entry),
		settlements: make(map[string]models.Settlement),
		parties:     make(map[string]models.Party),
		alerts:      make(map[string]models.Alert),
	}
}

func (st *memState) clone() *memState {
	c := &memState{
		entries:     make(map[string]models.Entry, len(st.entries)),
		settlements: make(map[string]models.Settlement, len(st.settlements)),
		parties:     make(map[string]models.Party, len(st.parties)),
		alerts:      make(map[string]models.Alert, len(st.alerts)),
		audit:       slices.Clone(st.audit),
	}
	for k, v := range st.entries {
		c.entries[k] = v
	}
	for k, v := range st.settlements {
		c.settlements[k] = v
	}
	for k, v := range st.parties {
		c.parties[k] = v
	}
	for k, v := range st.alerts {
		c.alerts[k] = v
	}
	return c
}

// MemoryStore is an in-process Store. Transactions are serialised by a
// single mutex and rolled back by restoring a snapshot, so it is safe for
// concurrent use but never reports ErrConflict on its own.
type MemoryStore struct {
	mu   *sync.Mutex
	st   **memState
	inTx bool
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	st := newMemState()
	return &MemoryStore{mu: &sync.Mutex{}, st: &st, now: time.Now}
}

var _ Store = (*MemoryStore)(nil)

// lock acquires the store mutex unless the caller already holds it
// through WithinTx.
func (m *MemoryStore) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryStore) state() *memState { return *m.st }

func (m *MemoryStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state().clone()
	tx := &MemoryStore{mu: m.mu, st: m.st, inTx: true, now: m.now}
	if err := fn(tx); err != nil {
		*m.st = snapshot
		return err
	}
	return nil
}

// Entries

func (m *MemoryStore) GetEntry(_ context.Context, ownerID, id string) (*models.Entry, error) {
	defer m.lock()()
	e, ok := m.state().entries[id]
	if !ok || e.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &e, nil
}

func matchEntry(e *models.Entry, f EntryFilter) bool {
	if !f.Range.Contains(e.EntryDate) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, e.EntryType) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.PartyID != "" && (e.PartyID == nil || *e.PartyID != f.PartyID) {
		return false
	}
	if f.Settled != nil && e.Settled != *f.Settled {
		return false
	}
	if f.Derived != nil && e.IsSettlementDerived != *f.Derived {
		return false
	}
	if f.SourceEntryID != "" && (e.SourceEntryID == nil || *e.SourceEntryID != f.SourceEntryID) {
		return false
	}
	return true
}

func (m *MemoryStore) filterEntries(ownerID string, f EntryFilter) []models.Entry {
	var out []models.Entry
	for _, e := range m.state().entries {
		if e.OwnerID == ownerID && matchEntry(&e, f) {
			out = append(out, e)
		}
	}
	return out
}

func (m *MemoryStore) ListEntries(_ context.Context, ownerID string, filter EntryFilter) ([]models.Entry, error) {
	defer m.lock()()
	out := m.filterEntries(ownerID, filter)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.After(b.EntryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return pagination.Slice(out, filter.Page), nil
}

func (m *MemoryStore) CountEntries(_ context.Context, ownerID string, filter EntryFilter) (int64, error) {
	defer m.lock()()
	return int64(len(m.filterEntries(ownerID, filter))), nil
}

func (m *MemoryStore) InsertEntry(_ context.Context, entry *models.Entry) error {
	defer m.lock()()
	if entry.ID == "" {
		entry.ID = uuid.New()
	}
	now := m.now()
	entry.CreatedAt, entry.UpdatedAt = now, now
	entry.Version = 1
	m.state().entries[entry.ID] = *entry
	return nil
}

func (m *MemoryStore) CompareAndUpdateEntry(_ context.Context, entry *models.Entry, expectedVersion int64) error {
	defer m.lock()()
	current, ok := m.state().entries[entry.ID]
	if !ok || current.OwnerID != entry.OwnerID {
		return ErrNotFound
	}
	if current.Version != expectedVersion {
		return ErrConflict
	}
	updated := *entry
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = m.now()
	updated.Version = expectedVersion + 1
	m.state().entries[entry.ID] = updated
	entry.UpdatedAt = updated.UpdatedAt
	entry.Version = updated.Version
	return nil
}

func (m *MemoryStore) DeleteEntry(_ context.Context, ownerID, id string) error {
	defer m.lock()()
	e, ok := m.state().entries[id]
	if !ok || e.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.state().entries, id)
	return nil
}

// Settlements

func (m *MemoryStore) GetSettlement(_ context.Context, ownerID, id string) (*models.Settlement, error) {
	defer m.lock()()
	s, ok := m.state().settlements[id]
	if !ok || s.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) ListSettlements(_ context.Context, ownerID, entryID string) ([]models.Settlement, error) {
	defer m.lock()()
	var out []models.Settlement
	for _, s := range m.state().settlements {
		if s.OwnerID == ownerID && s.OriginalEntryID == entryID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SettlementDate.Equal(out[j].SettlementDate) {
			return out[i].SettlementDate.Before(out[j].SettlementDate)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) InsertSettlement(_ context.Context, settlement *models.Settlement) error {
	defer m.lock()()
	if settlement.ID == "" {
		settlement.ID = uuid.New()
	}
	now := m.now()
	settlement.CreatedAt, settlement.UpdatedAt = now, now
	m.state().settlements[settlement.ID] = *settlement
	return nil
}

func (m *MemoryStore) DeleteSettlement(_ context.Context, ownerID, id string) error {
	defer m.lock()()
	s, ok := m.state().settlements[id]
	if !ok || s.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.state().settlements, id)
	return nil
}

// Parties

func (m *MemoryStore) GetParty(_ context.Context, ownerID, id string) (*models.Party, error) {
	defer m.lock()()
	p, ok := m.state().parties[id]
	if !ok || p.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) ListParties(_ context.Context, ownerID string) ([]models.Party, error) {
	defer m.lock()()
	var out []models.Party
	for _, p := range m.state().parties {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) InsertParty(_ context.Context, party *models.Party) error {
	defer m.lock()()
	if party.ID == "" {
		party.ID = uuid.New()
	}
	now := m.now()
	party.CreatedAt, party.UpdatedAt = now, now
	m.state().parties[party.ID] = *party
	return nil
}

func (m *MemoryStore) UpdateParty(_ context.Context, party *models.Party) error {
	defer m.lock()()
	current, ok := m.state().parties[party.ID]
	if !ok || current.OwnerID != party.OwnerID {
		return ErrNotFound
	}
	updated := *party
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = m.now()
	m.state().parties[party.ID] = updated
	return nil
}

func (m *MemoryStore) DeleteParty(_ context.Context, ownerID, id string) error {
	defer m.lock()()
	p, ok := m.state().parties[id]
	if !ok || p.OwnerID != ownerID {
		return ErrNotFound
	}
	for k, e := range m.state().entries {
		if e.OwnerID == ownerID && e.PartyID != nil && *e.PartyID == id {
			e.PartyID = nil
			m.state().entries[k] = e
		}
	}
	delete(m.state().parties, id)
	return nil
}

// Alerts

func (m *MemoryStore) InsertAlerts(_ context.Context, alerts []models.Alert) error {
	defer m.lock()()
	now := m.now()
	for i := range alerts {
		if alerts[i].ID == "" {
			alerts[i].ID = uuid.New()
		}
		if alerts[i].CreatedAt.IsZero() {
			alerts[i].CreatedAt = now
		}
		m.state().alerts[alerts[i].ID] = alerts[i]
	}
	return nil
}

func (m *MemoryStore) GetAlert(_ context.Context, ownerID, id string) (*models.Alert, error) {
	defer m.lock()()
	a, ok := m.state().alerts[id]
	if !ok || a.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MemoryStore) filterAlerts(ownerID string, f AlertFilter) []models.Alert {
	var out []models.Alert
	for _, a := range m.state().alerts {
		if a.OwnerID != ownerID {
			continue
		}
		if f.UnreadOnly && a.IsRead {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (m *MemoryStore) ListAlerts(_ context.Context, ownerID string, filter AlertFilter) ([]models.Alert, error) {
	defer m.lock()()
	out := m.filterAlerts(ownerID, filter)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return pagination.Slice(out, filter.Page), nil
}

func (m *MemoryStore) CountAlerts(_ context.Context, ownerID string, filter AlertFilter) (int64, error) {
	defer m.lock()()
	return int64(len(m.filterAlerts(ownerID, filter))), nil
}

func (m *MemoryStore) MarkAlertRead(_ context.Context, ownerID, id string) error {
	defer m.lock()()
	a, ok := m.state().alerts[id]
	if !ok || a.OwnerID != ownerID {
		return ErrNotFound
	}
	a.IsRead = true
	m.state().alerts[id] = a
	return nil
}

func (m *MemoryStore) DeleteAlert(_ context.Context, ownerID, id string) error {
	defer m.lock()()
	a, ok := m.state().alerts[id]
	if !ok || a.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.state().alerts, id)
	return nil
}

func (m *MemoryStore) PurgeAlerts(_ context.Context, cutoff time.Time) (int64, error) {
	defer m.lock()()
	var n int64
	for id, a := range m.state().alerts {
		if a.CreatedAt.Before(cutoff) {
			delete(m.state().alerts, id)
			n++
		}
	}
	return n, nil
}

// Audit

func (m *MemoryStore) InsertAuditLog(_ context.Context, log *models.AuditLog) error {
	defer m.lock()()
	if log.ID == "" {
		log.ID = uuid.New()
	}
	now := m.now()
	log.CreatedAt, log.UpdatedAt = now, now
	m.state().audit = append(m.state().audit, *log)
	return nil
}

// AuditLogs returns a copy of every recorded audit log.
func (m *MemoryStore) AuditLogs() []models.AuditLog {
	defer m.lock()()
	return slices.Clone(m.state().audit)
}
