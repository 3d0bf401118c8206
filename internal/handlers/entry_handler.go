package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/models"
	"ledgerbook/internal/pagination"
	"ledgerbook/internal/services"
)

// EntryHandler handles ledger entry requests.
type EntryHandler struct {
	entryService services.EntryServicer
	clock        services.Clock
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryService services.EntryServicer, clock services.Clock) *EntryHandler {
	return &EntryHandler{entryService: entryService, clock: clock}
}

// CreateEntryRequest represents the request payload for recording an entry
type CreateEntryRequest struct {
	EntryType     models.EntryType     `json:"entry_type" binding:"required,entry_type" example:"Credit"`
	Category      models.Category      `json:"category" binding:"required,category" example:"Sales"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"omitempty,payment_method" example:"None"`
	Amount        string               `json:"amount" binding:"required" example:"1200.00"`
	EntryDate     *string              `json:"entry_date" example:"2024-05-01"`
	Notes         string               `json:"notes" binding:"max=500"`
	PartyID       *string              `json:"party_id" binding:"omitempty,uuid"`
}

// CreateEntry handles recording a new entry
// @Summary     Record an entry
// @Description Record a cash movement, a credit sale or purchase, or an advance. Credit and advance entries start open; cash entries are settled immediately.
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateEntryRequest true "Entry details"
// @Success     201 {object} EntryResponse "Entry created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Rate limited"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries [post]
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	entryDate, err := optionalDate("entry_date", req.EntryDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.entryService.CreateEntry(c.Request.Context(), ownerID, services.EntryInput{
		EntryType:     req.EntryType,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Amount:        amount,
		EntryDate:     entryDate,
		Notes:         req.Notes,
		PartyID:       req.PartyID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": newEntryResponse(entry)})
}

// ListEntries handles listing the owner's entries
// @Summary     List entries
// @Description Get a paginated list of entries, newest first, with optional filters
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Param       period     query string false "Named period (today, this_month, last_30_days, ...)"
// @Param       from       query string false "Start date (YYYY-MM-DD)"
// @Param       to         query string false "End date (YYYY-MM-DD)"
// @Param       entry_type query string false "Filter by entry type (CashIn, CashOut, Credit, Advance)"
// @Param       category   query string false "Filter by category (Sales, COGS, Opex, Assets)"
// @Param       party_id   query string false "Filter by party"
// @Param       settled    query bool   false "Filter by settled state"
// @Success     200 {object} pagination.PageResponse[EntryResponse] "Paginated entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries [get]
func (h *EntryHandler) ListEntries(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := h.parseEntryFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.entryService.ListEntries(c.Request.Context(), ownerID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newEntryPage(result))
}

func (h *EntryHandler) parseEntryFilter(c *gin.Context) (services.EntryFilter, error) {
	var filter services.EntryFilter

	r, err := parseRange(c, h.clock)
	if err != nil {
		return filter, err
	}
	filter.Range = r

	if v := c.Query("entry_type"); v != "" {
		t := models.EntryType(v)
		if !t.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid entry_type, must be CashIn, CashOut, Credit, or Advance")
		}
		filter.EntryType = &t
	}

	if v := c.Query("category"); v != "" {
		cat := models.Category(v)
		if !cat.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category, must be Sales, COGS, Opex, or Assets")
		}
		filter.Category = &cat
	}

	filter.PartyID = c.Query("party_id")

	if v := c.Query("settled"); v != "" {
		settled, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid settled, must be true or false")
		}
		filter.Settled = &settled
	}

	return filter, nil
}

// GetEntry handles the retrieval of a specific entry
// @Summary     Get entry by ID
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Success     200 {object} EntryResponse "Entry details"
// @Failure     400 {object} ErrorResponse "Invalid entry ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries/{id} [get]
func (h *EntryHandler) GetEntry(c *gin.Context) {
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

	entry, err := h.entryService.GetEntry(c.Request.Context(), ownerID, entryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": newEntryResponse(entry)})
}

// UpdateEntryRequest represents the request payload for editing an entry.
type UpdateEntryRequest struct {
	EntryType     *models.EntryType     `json:"entry_type" binding:"omitempty,entry_type"`
	Category      *models.Category      `json:"category" binding:"omitempty,category"`
	PaymentMethod *models.PaymentMethod `json:"payment_method" binding:"omitempty,payment_method"`
	Amount        *string               `json:"amount" example:"1500.00"`
	EntryDate     *string               `json:"entry_date" example:"2024-05-02"`
	Notes         *string               `json:"notes" binding:"omitempty,max=500"`
	PartyID       *string               `json:"party_id" binding:"omitempty,uuid"`
	// ClearParty detaches the entry from its party.
	ClearParty bool `json:"clear_party"`
}

// UpdateEntry handles editing an existing entry
// @Summary     Update entry
// @Description Edit an entry. The remaining balance is recomputed from the settlements still applied. Settlement-derived entries only accept note changes.
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Entry ID"
// @Param       request body UpdateEntryRequest true "Fields to update"
// @Success     200 {object} EntryResponse "Updated entry"
// @Failure     400 {object} ErrorResponse "Invalid input or immutable entry"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries/{id} [put]
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
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

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	patch := services.EntryPatch{
		EntryType:     req.EntryType,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		PartyID:       req.PartyID,
		ClearParty:    req.ClearParty,
	}
	if req.Amount != nil {
		amount, err := parseAmount("amount", *req.Amount)
		if err != nil {
			respondWithError(c, err)
			return
		}
		patch.Amount = &amount
	}
	if req.EntryDate != nil {
		d, err := parseDate("entry_date", *req.EntryDate)
		if err != nil {
			respondWithError(c, err)
			return
		}
		patch.EntryDate = &d
	}

	entry, err := h.entryService.UpdateEntry(c.Request.Context(), ownerID, entryID, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": newEntryResponse(entry)})
}

// DeleteEntry handles deleting an entry
// @Summary     Delete entry
// @Description Delete an entry. Settlements recorded against it are kept and reported in the warning.
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Success     200 {object} services.DeleteResult "Entry deleted"
// @Failure     400 {object} ErrorResponse "Invalid entry ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /entries/{id} [delete]
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
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

	result, err := h.entryService.DeleteEntry(c.Request.Context(), ownerID, entryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
