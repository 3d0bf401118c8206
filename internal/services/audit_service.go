package services

import (
	"context"
	"encoding/json"

	"ledgerbook/internal/events"
	"ledgerbook/internal/logger"
	"ledgerbook/internal/models"
	"ledgerbook/internal/store"
)

// auditService handles audit log recording.
type auditService struct {
	store store.AuditStore
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(st store.AuditStore) AuditServicer {
	return &auditService{store: st}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(ctx context.Context, ownerID, action, resourceType, resourceID string, changes map[string]any) {
	var changesJSON []byte
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.FromContext(ctx).Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = []byte("{}")
		} else {
			changesJSON = data
		}
	}

	entry := &models.AuditLog{
		OwnerID:      ownerID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Changes:      changesJSON,
	}

	if err := s.store.InsertAuditLog(ctx, entry); err != nil {
		logger.FromContext(ctx).Errorw("failed to create audit log entry",
			"error", err,
			"owner_id", ownerID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// HandleEvent turns a domain event into an audit record.
func (s *auditService) HandleEvent(ctx context.Context, e events.Event) error {
	if e.Type == events.AlertsRaised {
		return nil
	}
	var resourceType, resourceID string
	switch {
	case e.Settlement != nil:
		resourceType, resourceID = "settlement", e.Settlement.ID
	case e.Party != nil:
		resourceType, resourceID = "party", e.Party.ID
	case e.Entry != nil:
		resourceType, resourceID = "entry", e.Entry.ID
	default:
		return nil
	}
	s.Log(ctx, e.OwnerID, string(e.Type), resourceType, resourceID, e.Changes)
	return nil
}
