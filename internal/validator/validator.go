// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"ledgerbook/internal/analytics"
	"ledgerbook/internal/models"
	"ledgerbook/internal/period"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("entry_type", validateEntryType)
		_ = v.RegisterValidation("category", validateCategory)
		_ = v.RegisterValidation("payment_method", validatePaymentMethod)
		_ = v.RegisterValidation("party_kind", validatePartyKind)
		_ = v.RegisterValidation("period", validatePeriod)
		_ = v.RegisterValidation("granularity", validateGranularity)
		_ = v.RegisterValidation("view", validateView)
		_ = v.RegisterValidation("calendar_date", validateCalendarDate)
	}
}

func validateEntryType(fl validator.FieldLevel) bool {
	return models.EntryType(fl.Field().String()).Valid()
}

func validateCategory(fl validator.FieldLevel) bool {
	return models.Category(fl.Field().String()).Valid()
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return models.PaymentMethod(fl.Field().String()).Valid()
}

func validatePartyKind(fl validator.FieldLevel) bool {
	return models.PartyKind(fl.Field().String()).Valid()
}

func validatePeriod(fl validator.FieldLevel) bool {
	name := period.Name(fl.Field().String())
	for _, n := range period.Names {
		if n == name {
			return true
		}
	}
	return false
}

func validateGranularity(fl validator.FieldLevel) bool {
	_, err := period.ParseGranularity(fl.Field().String())
	return err == nil
}

func validateView(fl validator.FieldLevel) bool {
	return analytics.View(fl.Field().String()).Valid()
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}
