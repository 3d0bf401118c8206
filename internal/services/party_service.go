package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/analytics"
	"ledgerbook/internal/events"
	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/models"
	"ledgerbook/internal/money"
	"ledgerbook/internal/store"
)

const maxPartyNameLength = 200

// partyService handles customers and vendors.
type partyService struct {
	store store.Store
	pub   events.Publisher
}

// NewPartyService creates a new PartyServicer.
func NewPartyService(st store.Store, pub events.Publisher) PartyServicer {
	if pub == nil {
		pub = events.Nop{}
	}
	return &partyService{store: st, pub: pub}
}

func validateParty(name string, kind models.PartyKind, opening decimal.Decimal) (string, decimal.Decimal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", decimal.Zero, invalid("party name is required")
	}
	if len(name) > maxPartyNameLength {
		return "", decimal.Zero, invalid("party name must be at most %d characters", maxPartyNameLength)
	}
	if !kind.Valid() {
		return "", decimal.Zero, invalid("party kind must be customer or vendor")
	}
	opening = money.Round(opening)
	if opening.IsNegative() || opening.GreaterThan(money.Max) {
		return "", decimal.Zero, invalid("opening balance must be between 0 and %s", money.Format(money.Max))
	}
	return name, opening, nil
}

// CreateParty creates a new party for an owner.
func (s *partyService) CreateParty(ctx context.Context, ownerID string, in PartyInput) (*models.Party, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	name, opening, err := validateParty(in.Name, in.Kind, in.OpeningBalance)
	if err != nil {
		return nil, err
	}
	if len(in.Notes) > maxNotesLength {
		return nil, invalid("notes must be at most %d characters", maxNotesLength)
	}

	party := &models.Party{
		OwnerID:        ownerID,
		Name:           name,
		Kind:           in.Kind,
		OpeningBalance: opening,
		Phone:          strings.TrimSpace(in.Phone),
		Notes:          in.Notes,
	}
	if err := s.store.InsertParty(ctx, party); err != nil {
		return nil, mapStoreErr(err, apperrors.ErrPartyNotFound)
	}

	s.pub.Publish(ctx, events.Event{
		Type:    events.PartyChanged,
		OwnerID: ownerID,
		Party:   party,
		Changes: map[string]any{"action": "create", "name": party.Name, "kind": party.Kind},
	})
	return party, nil
}

// GetParty retrieves a party by ID for a specific owner.
func (s *partyService) GetParty(ctx context.Context, ownerID, id string) (*models.Party, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	party, err := s.store.GetParty(ctx, ownerID, id)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrPartyNotFound)
	}
	return party, nil
}

// ListParties returns every party of an owner ordered by name.
func (s *partyService) ListParties(ctx context.Context, ownerID string) ([]models.Party, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	parties, err := s.store.ListParties(ctx, ownerID)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrPartyNotFound)
	}
	if parties == nil {
		parties = []models.Party{}
	}
	return parties, nil
}

// UpdateParty updates the provided fields of a party.
func (s *partyService) UpdateParty(ctx context.Context, ownerID, id string, patch PartyPatch) (*models.Party, error) {
	party, err := s.GetParty(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{"action": "update"}
	name, kind, opening := party.Name, party.Kind, party.OpeningBalance
	if patch.Name != nil {
		name = *patch.Name
	}
	if patch.Kind != nil {
		kind = *patch.Kind
	}
	if patch.OpeningBalance != nil {
		opening = *patch.OpeningBalance
	}
	name, opening, err = validateParty(name, kind, opening)
	if err != nil {
		return nil, err
	}
	if patch.Notes != nil {
		if len(*patch.Notes) > maxNotesLength {
			return nil, invalid("notes must be at most %d characters", maxNotesLength)
		}
		party.Notes = *patch.Notes
		changes["notes"] = party.Notes
	}
	if patch.Phone != nil {
		party.Phone = strings.TrimSpace(*patch.Phone)
		changes["phone"] = party.Phone
	}
	if name != party.Name {
		changes["name"] = name
	}
	if kind != party.Kind {
		changes["kind"] = kind
	}
	if !opening.Equal(party.OpeningBalance) {
		changes["opening_balance"] = opening.StringFixed(2)
	}
	party.Name, party.Kind, party.OpeningBalance = name, kind, opening

	if err := s.store.UpdateParty(ctx, party); err != nil {
		return nil, mapStoreErr(err, apperrors.ErrPartyNotFound)
	}

	s.pub.Publish(ctx, events.Event{
		Type:    events.PartyChanged,
		OwnerID: ownerID,
		Party:   party,
		Changes: changes,
	})
	return party, nil
}

// DeleteParty removes a party. Entries that referenced it are kept and
// become unassigned.
func (s *partyService) DeleteParty(ctx context.Context, ownerID, id string) error {
	party, err := s.GetParty(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteParty(ctx, ownerID, id); err != nil {
		return mapStoreErr(err, apperrors.ErrPartyNotFound)
	}

	s.pub.Publish(ctx, events.Event{
		Type:    events.PartyChanged,
		OwnerID: ownerID,
		Party:   party,
		Changes: map[string]any{"action": "delete", "name": party.Name},
	})
	return nil
}

// PendingBalances totals what is still owed to and by each party.
func (s *partyService) PendingBalances(ctx context.Context, ownerID string) ([]analytics.PartyBalance, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	parties, err := s.store.ListParties(ctx, ownerID)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrPartyNotFound)
	}
	unsettled := false
	entries, err := s.store.ListEntries(ctx, ownerID, store.EntryFilter{
		Types:   []models.EntryType{models.EntryTypeCredit, models.EntryTypeAdvance},
		Settled: &unsettled,
	})
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
	}
	return analytics.PendingByParty(entries, parties), nil
}
