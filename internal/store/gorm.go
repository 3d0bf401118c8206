package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledgerbook/internal/models"
	"ledgerbook/internal/pagination"
	"ledgerbook/internal/uuid"
)

// Postgres error codes that mean the transaction lost a race and may be
// retried as a whole.
var conflictCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// GormStore implements Store on top of GORM. It works with the Postgres
// driver in production and SQLite in tests.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && conflictCodes[pgErr.Code] {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
	}
	return err
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
	// Errors from fn are already translated; only a failed commit can
	// still carry a raw serialization error.
	var pgErr *pgconn.PgError
	if !errors.Is(err, ErrConflict) && errors.As(err, &pgErr) && conflictCodes[pgErr.Code] {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
	}
	return err
}

// Entries

func (s *GormStore) GetEntry(ctx context.Context, ownerID, id string) (*models.Entry, error) {
	var entry models.Entry
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&entry).Error
	if err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}

func (s *GormStore) entryQuery(ctx context.Context, ownerID string, f EntryFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Entry{}).Where("owner_id = ?", ownerID)
	if !f.Range.From.IsZero() {
		q = q.Where("entry_date >= ?", f.Range.From)
	}
	if !f.Range.To.IsZero() {
		q = q.Where("entry_date <= ?", f.Range.To)
	}
	if len(f.Types) > 0 {
		q = q.Where("entry_type IN ?", f.Types)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.PartyID != "" {
		q = q.Where("party_id = ?", f.PartyID)
	}
	if f.Settled != nil {
		q = q.Where("settled = ?", *f.Settled)
	}
	if f.Derived != nil {
		q = q.Where("is_settlement_derived = ?", *f.Derived)
	}
	if f.SourceEntryID != "" {
		q = q.Where("source_entry_id = ?", f.SourceEntryID)
	}
	return q
}

func (s *GormStore) ListEntries(ctx context.Context, ownerID string, filter EntryFilter) ([]models.Entry, error) {
	q := s.entryQuery(ctx, ownerID, filter).
		Order("entry_date DESC").
		Order("created_at DESC").
		Order("id DESC")
	if filter.Page != nil {
		q = q.Scopes(pagination.Paginate(*filter.Page))
	}
	var entries []models.Entry
	if err := q.Find(&entries).Error; err != nil {
		return nil, translate(err)
	}
	return entries, nil
}

func (s *GormStore) CountEntries(ctx context.Context, ownerID string, filter EntryFilter) (int64, error) {
	var n int64
	if err := s.entryQuery(ctx, ownerID, filter).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (s *GormStore) InsertEntry(ctx context.Context, entry *models.Entry) error {
	entry.Version = 1
	return translate(s.db.WithContext(ctx).Create(entry).Error)
}

func (s *GormStore) CompareAndUpdateEntry(ctx context.Context, entry *models.Entry, expectedVersion int64) error {
	res := s.db.WithContext(ctx).
		Model(&models.Entry{}).
		Where("id = ? AND owner_id = ? AND version = ?", entry.ID, entry.OwnerID, expectedVersion).
		Updates(map[string]any{
			"entry_type":       entry.EntryType,
			"category":         entry.Category,
			"payment_method":   entry.PaymentMethod,
			"amount":           entry.Amount,
			"remaining_amount": entry.RemainingAmount,
			"settled":          entry.Settled,
			"settled_at":       entry.SettledAt,
			"entry_date":       entry.EntryDate,
			"notes":            entry.Notes,
			"party_id":         entry.PartyID,
			"version":          expectedVersion + 1,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetEntry(ctx, entry.OwnerID, entry.ID); err != nil {
			return err
		}
		return ErrConflict
	}
	entry.Version = expectedVersion + 1
	return nil
}

func (s *GormStore) DeleteEntry(ctx context.Context, ownerID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Entry{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Settlements

func (s *GormStore) GetSettlement(ctx context.Context, ownerID, id string) (*models.Settlement, error) {
	var settlement models.Settlement
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&settlement).Error
	if err != nil {
		return nil, translate(err)
	}
	return &settlement, nil
}

func (s *GormStore) ListSettlements(ctx context.Context, ownerID, entryID string) ([]models.Settlement, error) {
	var settlements []models.Settlement
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND original_entry_id = ?", ownerID, entryID).
		Order("settlement_date ASC").
		Order("created_at ASC").
		Find(&settlements).Error
	if err != nil {
		return nil, translate(err)
	}
	return settlements, nil
}

func (s *GormStore) InsertSettlement(ctx context.Context, settlement *models.Settlement) error {
	return translate(s.db.WithContext(ctx).Create(settlement).Error)
}

func (s *GormStore) DeleteSettlement(ctx context.Context, ownerID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Settlement{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Parties

func (s *GormStore) GetParty(ctx context.Context, ownerID, id string) (*models.Party, error) {
	var party models.Party
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&party).Error
	if err != nil {
		return nil, translate(err)
	}
	return &party, nil
}

func (s *GormStore) ListParties(ctx context.Context, ownerID string) ([]models.Party, error) {
	var parties []models.Party
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&parties).Error
	if err != nil {
		return nil, translate(err)
	}
	return parties, nil
}

func (s *GormStore) InsertParty(ctx context.Context, party *models.Party) error {
	return translate(s.db.WithContext(ctx).Create(party).Error)
}

func (s *GormStore) UpdateParty(ctx context.Context, party *models.Party) error {
	res := s.db.WithContext(ctx).
		Model(&models.Party{}).
		Where("id = ? AND owner_id = ?", party.ID, party.OwnerID).
		Updates(map[string]any{
			"name":            party.Name,
			"kind":            party.Kind,
			"opening_balance": party.OpeningBalance,
			"phone":           party.Phone,
			"notes":           party.Notes,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteParty(ctx context.Context, ownerID, id string) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var party models.Party
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND owner_id = ?", id, ownerID).
			First(&party).Error
		if err != nil {
			return err
		}
		err = tx.Model(&models.Entry{}).
			Where("owner_id = ? AND party_id = ?", ownerID, id).
			Update("party_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&party).Error
	}))
}

// Alerts

func (s *GormStore) InsertAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	for i := range alerts {
		if alerts[i].ID == "" {
			alerts[i].ID = uuid.New()
		}
	}
	return translate(s.db.WithContext(ctx).Create(&alerts).Error)
}

func (s *GormStore) GetAlert(ctx context.Context, ownerID, id string) (*models.Alert, error) {
	var alert models.Alert
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&alert).Error
	if err != nil {
		return nil, translate(err)
	}
	return &alert, nil
}

func (s *GormStore) alertQuery(ctx context.Context, ownerID string, f AlertFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Alert{}).Where("owner_id = ?", ownerID)
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	return q
}

func (s *GormStore) ListAlerts(ctx context.Context, ownerID string, filter AlertFilter) ([]models.Alert, error) {
	q := s.alertQuery(ctx, ownerID, filter).
		Order("priority DESC").
		Order("created_at DESC")
	if filter.Page != nil {
		q = q.Scopes(pagination.Paginate(*filter.Page))
	}
	var alerts []models.Alert
	if err := q.Find(&alerts).Error; err != nil {
		return nil, translate(err)
	}
	return alerts, nil
}

func (s *GormStore) CountAlerts(ctx context.Context, ownerID string, filter AlertFilter) (int64, error) {
	var n int64
	if err := s.alertQuery(ctx, ownerID, filter).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (s *GormStore) MarkAlertRead(ctx context.Context, ownerID, id string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("is_read", true)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		// Marking an already read alert affects no rows on some drivers.
		_, err := s.GetAlert(ctx, ownerID, id)
		return err
	}
	return nil
}

func (s *GormStore) DeleteAlert(ctx context.Context, ownerID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Alert{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) PurgeAlerts(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Alert{})
	return res.RowsAffected, translate(res.Error)
}

// Audit

func (s *GormStore) InsertAuditLog(ctx context.Context, log *models.AuditLog) error {
	return translate(s.db.WithContext(ctx).Create(log).Error)
}
