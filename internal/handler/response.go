package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/helpers"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// writeError writes an error response in JSON format
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// decodeJSONBody decodes the request body into dst
func decodeJSONBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// decodeAndValidate decodes the body and runs struct validation,
// writing the error response itself. Returns false when the request
// was already answered.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *helpers.CustomValidator, dst interface{}) bool {
	if err := decodeJSONBody(r, dst); err != nil {
		if err == io.EOF {
			writeError(w, http.StatusBadRequest, "request body is required")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return false
	}

	if err := v.Validate(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			helpers.WriteValidationErrorResponse(w, validationErrors)
		} else {
			helpers.WriteValidationErrorResponseFromString(w, err.Error())
		}
		return false
	}

	return true
}

// writeServiceError maps domain errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrAlreadyVerified),
		errors.Is(err, models.ErrAlreadyRejected),
		errors.Is(err, models.ErrReferenceAlreadySet),
		errors.Is(err, models.ErrDuplicatePurchase):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInsufficientBalance):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, models.ErrSelfTrade),
		errors.Is(err, models.ErrUnsupportedMethod),
		errors.Is(err, models.ErrInapplicableMethod),
		errors.Is(err, models.ErrMissingReference),
		errors.Is(err, models.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
