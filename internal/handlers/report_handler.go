package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/period"
	"ledgerbook/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles the read-only report requests.
type ReportHandler struct {
	reportService services.ReportServicer
	clock         services.Clock
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer, clock services.Clock) *ReportHandler {
	return &ReportHandler{reportService: reportService, clock: clock}
}

// CashReport handles the cash-basis report
// @Summary     Cash report
// @Description Cash in, cash out and balance for a period, with category and payment method breakdowns. Credit entries only count through their settlements.
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "Named period (today, this_week, this_month, last_month, this_year, all, ...)"
// @Param       from   query string false "Start date (YYYY-MM-DD)"
// @Param       to     query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} CashReportResponse "Cash report"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/cash [get]
func (h *ReportHandler) CashReport(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	r, err := parseRange(c, h.clock)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.CashReport(c.Request.Context(), ownerID, r)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCashReportResponse(report))
}

// AccrualReport handles the accrual-basis report
// @Summary     Accrual report
// @Description Revenue, COGS, operating expenses and profit for a period. Settlement cash entries are excluded so revenue is counted once.
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "Named period"
// @Param       from   query string false "Start date (YYYY-MM-DD)"
// @Param       to     query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} AccrualReportResponse "Accrual report"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/accrual [get]
func (h *ReportHandler) AccrualReport(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	r, err := parseRange(c, h.clock)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.AccrualReport(c.Request.Context(), ownerID, r)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAccrualReportResponse(report))
}

// Trend handles the bucketed trend of both views
// @Summary     Trend
// @Description Daily or monthly buckets of cash and accrual figures for a bounded period
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       period      query string false "Named period"
// @Param       from        query string false "Start date (YYYY-MM-DD)"
// @Param       to          query string false "End date (YYYY-MM-DD)"
// @Param       granularity query string false "day (default) or month"
// @Success     200 {array}  TrendPointResponse "Trend buckets"
// @Failure     400 {object} ErrorResponse "Invalid or unbounded period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/trend [get]
func (h *ReportHandler) Trend(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	r, err := parseRange(c, h.clock)
	if err != nil {
		respondWithError(c, err)
		return
	}

	g, err := period.ParseGranularity(c.Query("granularity"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	points, err := h.reportService.Trend(c.Request.Context(), ownerID, r, g)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"granularity": g, "trend": newTrendResponse(points)})
}

// Export handles downloading the period as a spreadsheet
// @Summary     Export workbook
// @Description Download the summary, entries, trend and pending balances of a period as an XLSX workbook
// @Tags        reports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       period query string false "Named period"
// @Param       from   query string false "Start date (YYYY-MM-DD)"
// @Param       to     query string false "End date (YYYY-MM-DD)"
// @Success     200 {file}   file "XLSX workbook"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Rate limited"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	r, err := parseRange(c, h.clock)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.reportService.Export(c.Request.Context(), ownerID, r)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("ledger-%s.xlsx", h.clock.Today().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
