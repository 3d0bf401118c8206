package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/pagination"
	"ledgerbook/internal/services"
)

// AlertHandler handles alert requests.
type AlertHandler struct {
	alertService services.AlertServicer
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService services.AlertServicer) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// ListAlerts handles listing the owner's alerts
// @Summary     List alerts
// @Description Get a paginated list of alerts, highest priority first
// @Tags        alerts
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 20, max 100)"
// @Param       unread    query bool false "Only unread alerts"
// @Success     200 {object} pagination.PageResponse[models.Alert] "Paginated alerts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /alerts [get]
func (h *AlertHandler) ListAlerts(c *gin.Context) {
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

	unread := false
	if v := c.Query("unread"); v != "" {
		if unread, err = strconv.ParseBool(v); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid unread, must be true or false"))
			return
		}
	}

	result, err := h.alertService.ListAlerts(c.Request.Context(), ownerID, page, unread)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MarkRead handles marking an alert as read
// @Summary     Mark alert read
// @Tags        alerts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Alert ID"
// @Success     200 {object} map[string]string "Alert marked as read"
// @Failure     400 {object} ErrorResponse "Invalid alert ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Alert not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /alerts/{id}/read [put]
func (h *AlertHandler) MarkRead(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alertID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.alertService.MarkRead(c.Request.Context(), ownerID, alertID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Alert marked as read"})
}

// DeleteAlert handles dismissing an alert
// @Summary     Delete alert
// @Tags        alerts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Alert ID"
// @Success     200 {object} map[string]string "Alert deleted"
// @Failure     400 {object} ErrorResponse "Invalid alert ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Alert not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /alerts/{id} [delete]
func (h *AlertHandler) DeleteAlert(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alertID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.alertService.DeleteAlert(c.Request.Context(), ownerID, alertID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Alert deleted successfully"})
}
