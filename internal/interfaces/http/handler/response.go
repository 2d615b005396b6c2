package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fraud-risk-engine/internal/domain/fraud"
	"fraud-risk-engine/internal/domain/transaction"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps engine and store errors onto HTTP statuses
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fraud.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "transaction declined: "+err.Error())
	case errors.Is(err, transaction.ErrInvalidUserID),
		errors.Is(err, transaction.ErrNegativeAmount),
		errors.Is(err, transaction.ErrZeroAmount),
		errors.Is(err, transaction.ErrInvalidCategory),
		errors.Is(err, transaction.ErrNilTransaction):
		writeError(w, http.StatusUnprocessableEntity, "transaction declined: "+err.Error())
	case errors.Is(err, fraud.ErrNotInitialized):
		writeError(w, http.StatusServiceUnavailable, "system not ready")
	case errors.Is(err, fraud.ErrInitialization):
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, transaction.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "transaction store unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "scoring timed out")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a JSON body, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

const maxBodyBytes = 1 << 20
