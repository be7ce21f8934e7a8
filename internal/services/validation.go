package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/motoqueiros/backend/internal/models"
)

// DateLayout is the wire format of every calendar date.
const DateLayout = "2006-01-02"

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper. Field errors are
// reported under their JSON names.
func NewValidationHelper() *ValidationHelper {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ValidationHelper{validator: v}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// Validate is ValidateStruct with field failures wrapped in a
// models.ValidationError.
func (vh *ValidationHelper) Validate(s any) error {
	err := vh.validator.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return models.NewValidationError("Validation failed", fieldErrs)
	}
	return err
}

// parseDate parses a validated YYYY-MM-DD value. Year 0 passes the datetime
// tag but is not a valid DATE, so it is rejected here.
func parseDate(field, value string) (civil.Date, error) {
	d, err := civil.ParseDate(value)
	if err != nil || d.Year < 1 {
		return civil.Date{}, models.NewValidationError(fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field), nil)
	}
	return d, nil
}

// parseOptionalDate returns nil for an empty value.
func parseOptionalDate(field, value string) (*civil.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	var fieldErrs validator.ValidationErrors
	if validationErr != nil && errors.As(validationErr, &fieldErrs) {
		errorResp.Details = make(map[string]string, len(fieldErrs))
		for _, err := range fieldErrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}
