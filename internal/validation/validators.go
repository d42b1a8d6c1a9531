package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/benvon/board-insights/internal/models"
	"github.com/go-playground/validator/v10"
)

// ISODateLayout is the calendar date format exchanged with clients and the completion service
const ISODateLayout = "2006-01-02"

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Report env var names for config structs and JSON names for payloads
	Validate.RegisterTagNameFunc(fieldName)

	if err := Validate.RegisterValidation("iso_date", validateISODate); err != nil {
		panic(fmt.Sprintf("failed to register iso_date validator: %v", err))
	}
	if err := Validate.RegisterValidation("sort_mode", validateSortMode); err != nil {
		panic(fmt.Sprintf("failed to register sort_mode validator: %v", err))
	}
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"env", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// validateISODate validates that a string is a YYYY-MM-DD calendar date
func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(ISODateLayout, fl.Field().String())
	return err == nil
}

// validateSortMode validates that a string is a valid SortMode enum value
func validateSortMode(fl validator.FieldLevel) bool {
	return ValidateSortMode(fl.Field().String()) == nil
}

// ValidateSortMode validates a SortMode string value
func ValidateSortMode(value string) error {
	switch models.SortMode(value) {
	case models.SortNewest, models.SortOldest, models.SortRandom:
		return nil
	default:
		return fmt.Errorf("invalid sort: %s (must be 'newest', 'oldest', or 'random')", value)
	}
}

// FailedFields returns the names of the fields that failed validation, in order.
// It returns nil when err is not a validator error.
func FailedFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
