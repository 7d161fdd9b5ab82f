// Package handler provides the HTTP handlers for the settlement gateway.
package handler

import (
	"encoding/json"
	"net/http"

	"upi/pkg/errors"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps settlement errors onto HTTP statuses. Unmapped
// errors are treated as internal.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrBankNotFound),
		errors.Is(err, errors.ErrUnknownMerchantToken),
		errors.Is(err, errors.ErrMerchantNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errors.ErrInvalidBranch),
		errors.Is(err, errors.ErrInvalidMerchantID):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errors.ErrTransactionFailed):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
