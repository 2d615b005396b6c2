package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fraud-risk-engine/internal/application/dto"
	"fraud-risk-engine/internal/domain/transaction"
)

// TransactionHandler exposes the stored transaction history
type TransactionHandler struct {
	txService *transaction.Service
	logger    *zap.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(txService *transaction.Service, logger *zap.Logger) *TransactionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionHandler{txService: txService, logger: logger}
}

// ListByUser handles GET /api/v1/users/{id}/transactions
func (h *TransactionHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil || userID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	txs, err := h.txService.ListUserTransactions(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if txs == nil {
		txs = []*transaction.Transaction{}
	}
	writeJSON(w, http.StatusOK, dto.TransactionListResponse{
		UserID:       userID,
		Count:        len(txs),
		Transactions: txs,
	})
}

// DeleteAll handles DELETE /api/v1/transactions
func (h *TransactionHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.txService.ClearAll(r.Context()); err != nil {
		h.logger.Error("failed to clear transactions", zap.Error(err))
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
