package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/models"
	"ledgerbook/internal/services"
)

// SettlementHandler handles settlement requests.
type SettlementHandler struct {
	settlementService services.SettlementServicer
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementService services.SettlementServicer) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// CreateSettlementRequest represents the request payload for settling an entry
type CreateSettlementRequest struct {
	EntryID        string               `json:"entry_id" binding:"required,uuid"`
	Amount         string               `json:"amount" binding:"required" example:"400.00"`
	SettlementDate *string              `json:"settlement_date" example:"2024-05-03"`
	PaymentMethod  models.PaymentMethod `json:"payment_method" binding:"omitempty,payment_method" example:"Bank"`
	Notes          string               `json:"notes" binding:"max=500"`
}

// SettlementResultResponse is the outcome of applying a settlement.
type SettlementResultResponse struct {
	Settlement   *SettlementResponse `json:"settlement"`
	Entry        *EntryResponse      `json:"entry"`
	DerivedEntry *EntryResponse      `json:"derived_entry,omitempty"`
}

// ReversalResponse is the outcome of reversing a settlement.
type ReversalResponse struct {
	Settlement            *SettlementResponse `json:"settlement"`
	Entry                 *EntryResponse      `json:"entry,omitempty"`
	RemovedDerivedEntryID string              `json:"removed_derived_entry_id,omitempty"`
}

// CreateSettlement handles applying a payment to a credit or advance entry
// @Summary     Settle an entry
// @Description Apply a partial or full settlement to a Credit or Advance entry. Credit settlements also record the matching cash movement.
// @Tags        settlements
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSettlementRequest true "Settlement details"
// @Success     201 {object} SettlementResultResponse "Settlement applied"
// @Failure     400 {object} ErrorResponse "Invalid input, entry not settleable or amount exceeds the remaining balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Failure     429 {object} ErrorResponse "Rate limited"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settlements [post]
func (h *SettlementHandler) CreateSettlement(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	settlementDate, err := optionalDate("settlement_date", req.SettlementDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.settlementService.CreateSettlement(c.Request.Context(), ownerID, services.SettlementInput{
		EntryID:        req.EntryID,
		Amount:         amount,
		SettlementDate: settlementDate,
		PaymentMethod:  req.PaymentMethod,
		Notes:          req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SettlementResultResponse{
		Settlement:   newSettlementResponse(result.Settlement),
		Entry:        newEntryResponse(result.Entry),
		DerivedEntry: newEntryResponse(result.Derived),
	})
}

// GetSettlement handles the retrieval of a specific settlement
// @Summary     Get settlement by ID
// @Tags        settlements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Settlement ID"
// @Success     200 {object} SettlementResponse "Settlement details"
// @Failure     400 {object} ErrorResponse "Invalid settlement ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Settlement not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settlements/{id} [get]
func (h *SettlementHandler) GetSettlement(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settlementID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	settlement, err := h.settlementService.GetSettlement(c.Request.Context(), ownerID, settlementID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settlement": newSettlementResponse(settlement)})
}

// ReverseSettlement handles undoing a settlement
// @Summary     Reverse settlement
// @Description Remove a settlement and its cash entry, restoring the remaining balance of the original entry
// @Tags        settlements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Settlement ID"
// @Success     200 {object} ReversalResponse "Settlement reversed"
// @Failure     400 {object} ErrorResponse "Invalid settlement ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Settlement not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settlements/{id} [delete]
func (h *SettlementHandler) ReverseSettlement(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settlementID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.settlementService.ReverseSettlement(c.Request.Context(), ownerID, settlementID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReversalResponse{
		Settlement:            newSettlementResponse(result.Settlement),
		Entry:                 newEntryResponse(result.Entry),
		RemovedDerivedEntryID: result.RemovedDerivedID,
	})
}

// ListEntrySettlements handles listing the settlements applied to an entry
// @Summary     List settlements of an entry
// @Tags        entries,settlements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Success     200 {array}  SettlementResponse "Settlements, oldest first"
// @Failure     400 {object} ErrorResponse "Invalid entry ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries/{id}/settlements [get]
func (h *SettlementHandler) ListEntrySettlements(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	settlements, err := h.settlementService.ListSettlements(c.Request.Context(), ownerID, entryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]SettlementResponse, len(settlements))
	for i := range settlements {
		out[i] = *newSettlementResponse(&settlements[i])
	}
	c.JSON(http.StatusOK, gin.H{"settlements": out})
}
