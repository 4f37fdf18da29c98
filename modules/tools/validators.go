package tools

import (
	"regexp"
	"strings"
	"time"

	"github.com/guarzo/splitwise-mcp/common"
)

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	decimalPattern  = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
)

// isoLayouts are the ISO 8601 forms accepted for dates and datetimes.
var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var repeatIntervals = []string{"never", "weekly", "fortnightly", "monthly", "yearly"}

var groupTypes = []string{"home", "trip", "couple", "apartment", "house", "other"}

func validateRequired(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return common.NewValidationError(field, "%s is required", field)
	}
	return nil
}

func validateEmail(value, field string) error {
	if !emailPattern.MatchString(value) {
		return common.NewValidationError(field, "Invalid email format")
	}
	return nil
}

func validateCurrencyCode(value, field string) error {
	if !currencyPattern.MatchString(value) {
		return common.NewValidationError(field, "Currency code must be 3 uppercase letters (e.g., USD)")
	}
	return nil
}

func validateISODate(value, field string) error {
	for _, layout := range isoLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return nil
		}
	}
	return common.NewValidationError(field, "%s must be valid ISO 8601 format (e.g., 2024-01-15)", field)
}

func validateDecimalAmount(value, field string) error {
	if !decimalPattern.MatchString(value) {
		return common.NewValidationError(field, "%s must be a decimal amount (e.g., '25.00')", field)
	}
	return nil
}

func validateMin(value int64, field string, limit int64) error {
	if value < limit {
		return common.NewValidationError(field, "%s must be >= %d", field, limit)
	}
	return nil
}

func validateMax(value int64, field string, limit int64) error {
	if value > limit {
		return common.NewValidationError(field, "%s must be <= %d", field, limit)
	}
	return nil
}

func validateOneOf(value, field string, choices []string) error {
	for _, c := range choices {
		if value == c {
			return nil
		}
	}
	return common.NewValidationError(field, "%s must be one of: %s", field, strings.Join(choices, ", "))
}
