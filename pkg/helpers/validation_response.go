package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrorResponse represents the validation error response format
type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// FormatValidationError formats a validator.FieldError into a readable error message
func FormatValidationError(fe validator.FieldError) string {
	fieldName := getFieldName(fe)

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required", fieldName)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address", fieldName)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s", fieldName, fe.Param())
	case "max":
		return fmt.Sprintf("The %s field must not exceed %s", fieldName, fe.Param())
	case "oneof":
		return fmt.Sprintf("The %s field must be one of: %s", fieldName, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s field must be greater than %s", fieldName, fe.Param())
	case "upi_vpa":
		return fmt.Sprintf("The %s field must be a valid UPI address", fieldName)
	case "payment_method":
		return fmt.Sprintf("The %s field must be one of: TC, UPI, EXCHANGE", fieldName)
	default:
		return fmt.Sprintf("The %s field is invalid", fieldName)
	}
}

// getFieldName extracts a human-readable field name from the FieldError
func getFieldName(fe validator.FieldError) string {
	fieldName := fe.Field()

	// Convert camelCase to space-separated words
	fieldName = strings.ToLower(fieldName)
	fieldName = strings.ReplaceAll(fieldName, "_", " ")

	return fieldName
}

// WriteValidationErrorResponse writes a validation error response.
// It accepts validator.ValidationErrors and formats them per field.
func WriteValidationErrorResponse(w http.ResponseWriter, validationErrors validator.ValidationErrors) {
	errors := make(map[string]string)
	var firstMessage string

	for i, err := range validationErrors {
		fieldName := err.Field()
		errorMessage := FormatValidationError(err)

		errors[fieldName] = errorMessage

		// First error message becomes the main message
		if i == 0 {
			firstMessage = errorMessage
		}
	}

	response := ValidationErrorResponse{
		Message: firstMessage,
		Errors:  errors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(response)
}

// WriteValidationErrorResponseFromString writes a validation error response
// from a single error message when there are no field-specific errors.
func WriteValidationErrorResponseFromString(w http.ResponseWriter, message string) {
	if message == "" {
		message = "The given data was invalid"
	}

	response := ValidationErrorResponse{
		Message: message,
		Errors:  make(map[string]string),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(response)
}
