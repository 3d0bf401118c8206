package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/logger"
	"ledgerbook/internal/middleware"
	"ledgerbook/internal/money"
	"ledgerbook/internal/period"
	"ledgerbook/internal/services"
)

// getOwnerID extracts the authenticated owner ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getOwnerID(c *gin.Context) (string, error) {
	ownerID := c.GetString(middleware.OwnerIDKey)
	if ownerID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return ownerID, nil
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id.String(), nil
}

// parseAmount parses a decimal string and rounds it to two places.
func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := money.Parse(s)
	if err != nil {
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+field+", use a decimal string like 120.50")
	}
	return d, nil
}

// parseDate accepts YYYY-MM-DD or RFC3339 and keeps only the calendar date
// as written by the caller.
func parseDate(field, s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+field+" format, use YYYY-MM-DD or RFC3339")
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// optionalDate parses s when it is set.
func optionalDate(field string, s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	return parseDate(field, *s)
}

// parseRange reads either a named period or explicit from/to dates from
// the query string. Both forms together are rejected.
func parseRange(c *gin.Context, clock services.Clock) (period.Range, error) {
	name := c.Query("period")
	from, to := c.Query("from"), c.Query("to")
	if name != "" && (from != "" || to != "") {
		return period.Range{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "use either period or from/to, not both")
	}
	if name != "" {
		r, err := period.Resolve(period.Name(name), clock.Now(), clock.Location)
		if err != nil {
			return period.Range{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		return r, nil
	}

	var fromDate, toDate time.Time
	var err error
	if from != "" {
		if fromDate, err = parseDate("from", from); err != nil {
			return period.Range{}, err
		}
	}
	if to != "" {
		if toDate, err = parseDate("to", to); err != nil {
			return period.Range{}, err
		}
	}
	r, err := period.Custom(fromDate, toDate)
	if err != nil {
		return period.Range{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return r, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	log := logger.FromContext(c.Request.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			log.Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	log.Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
