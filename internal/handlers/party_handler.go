package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/models"
	"ledgerbook/internal/services"
)

// PartyHandler handles customer and vendor requests.
type PartyHandler struct {
	partyService services.PartyServicer
}

// NewPartyHandler creates a new PartyHandler.
func NewPartyHandler(partyService services.PartyServicer) *PartyHandler {
	return &PartyHandler{partyService: partyService}
}

// CreatePartyRequest represents the request payload for creating a party
type CreatePartyRequest struct {
	Name           string           `json:"name" binding:"required,max=200" example:"Acme Traders"`
	Kind           models.PartyKind `json:"kind" binding:"required,party_kind" example:"vendor"`
	OpeningBalance *string          `json:"opening_balance" example:"0.00"`
	Phone          string           `json:"phone" binding:"max=32"`
	Notes          string           `json:"notes" binding:"max=500"`
}

// UpdatePartyRequest represents the request payload for updating a party
type UpdatePartyRequest struct {
	Name           *string           `json:"name" binding:"omitempty,max=200"`
	Kind           *models.PartyKind `json:"kind" binding:"omitempty,party_kind"`
	OpeningBalance *string           `json:"opening_balance"`
	Phone          *string           `json:"phone" binding:"omitempty,max=32"`
	Notes          *string           `json:"notes" binding:"omitempty,max=500"`
}

// CreateParty handles the creation of a new party
// @Summary     Create a party
// @Tags        parties
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePartyRequest true "Party details"
// @Success     201 {object} PartyResponse "Party created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /parties [post]
func (h *PartyHandler) CreateParty(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	opening := decimal.Zero
	if req.OpeningBalance != nil && *req.OpeningBalance != "" {
		if opening, err = parseAmount("opening_balance", *req.OpeningBalance); err != nil {
			respondWithError(c, err)
			return
		}
	}

	party, err := h.partyService.CreateParty(c.Request.Context(), ownerID, services.PartyInput{
		Name:           req.Name,
		Kind:           req.Kind,
		OpeningBalance: opening,
		Phone:          req.Phone,
		Notes:          req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"party": newPartyResponse(party)})
}

// ListParties handles listing the owner's parties
// @Summary     List parties
// @Tags        parties
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  PartyResponse "Parties"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /parties [get]
func (h *PartyHandler) ListParties(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	parties, err := h.partyService.ListParties(c.Request.Context(), ownerID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]*PartyResponse, len(parties))
	for i := range parties {
		out[i] = newPartyResponse(&parties[i])
	}
	c.JSON(http.StatusOK, gin.H{"parties": out})
}

// GetParty handles the retrieval of a specific party
// @Summary     Get party by ID
// @Tags        parties
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Party ID"
// @Success     200 {object} PartyResponse "Party details"
// @Failure     400 {object} ErrorResponse "Invalid party ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Party not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /parties/{id} [get]
func (h *PartyHandler) GetParty(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	partyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	party, err := h.partyService.GetParty(c.Request.Context(), ownerID, partyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"party": newPartyResponse(party)})
}

// UpdateParty handles updating a party
// @Summary     Update party
// @Tags        parties
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Party ID"
// @Param       request body UpdatePartyRequest true "Fields to update"
// @Success     200 {object} PartyResponse "Updated party"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Party not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /parties/{id} [put]
func (h *PartyHandler) UpdateParty(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	partyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	patch := services.PartyPatch{
		Name:  req.Name,
		Kind:  req.Kind,
		Phone: req.Phone,
		Notes: req.Notes,
	}
	if req.OpeningBalance != nil {
		opening, err := parseAmount("opening_balance", *req.OpeningBalance)
		if err != nil {
			respondWithError(c, err)
			return
		}
		patch.OpeningBalance = &opening
	}

	party, err := h.partyService.UpdateParty(c.Request.Context(), ownerID, partyID, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"party": newPartyResponse(party)})
}

// DeleteParty handles deleting a party
// @Summary     Delete party
// @Description Delete a party. Its entries are kept and detached.
// @Tags        parties
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Party ID"
// @Success     200 {object} map[string]string "Party deleted"
// @Failure     400 {object} ErrorResponse "Invalid party ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Party not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /parties/{id} [delete]
func (h *PartyHandler) DeleteParty(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	partyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.partyService.DeleteParty(c.Request.Context(), ownerID, partyID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Party deleted successfully"})
}

// PendingBalances handles the outstanding balance per party
// @Summary     Pending balances
// @Description Receivables and payables still open per party, including the opening balance. Open entries without a party are grouped as unassigned.
// @Tags        parties
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  PartyBalanceResponse "Balances"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /parties/balances [get]
func (h *PartyHandler) PendingBalances(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balances, err := h.partyService.PendingBalances(c.Request.Context(), ownerID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": newPartyBalances(balances)})
}
