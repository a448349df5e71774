package handler

import (
	"net/http"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
	"github.com/AdvythVaman05/TradeCraft-Platform/internal/service"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/auth"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/helpers"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/metrics"
)

type TransactionHandler struct {
	settlementService service.SettlementService
	validator         *helpers.CustomValidator
	metrics           *metrics.Metrics
}

func NewTransactionHandler(settlementService service.SettlementService, validator *helpers.CustomValidator, m *metrics.Metrics) *TransactionHandler {
	return &TransactionHandler{
		settlementService: settlementService,
		validator:         validator,
		metrics:           m,
	}
}

// Register wires the transaction routes onto the mux
func (h *TransactionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/transactions", h.CreateTransaction)
	mux.HandleFunc("GET /api/transactions", h.ListTransactions)
	mux.HandleFunc("POST /api/transactions/{id}/reference", h.SubmitReference)
	mux.HandleFunc("POST /api/transactions/{id}/verify", h.VerifyTransaction)
	mux.HandleFunc("POST /api/transactions/{id}/reject", h.RejectTransaction)
	mux.HandleFunc("GET /api/wallet", h.GetWallet)
	mux.HandleFunc("GET /api/seller/buyers", h.ListBuyers)
}

type createTransactionRequest struct {
	ListingID     uint64 `json:"listing_id" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,payment_method"`
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createTransactionRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	txn, err := h.settlementService.CreateTransaction(r.Context(), userCtx.UserID, req.ListingID, models.PaymentMethod(req.PaymentMethod))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, service.TransactionToDTO(txn))
}

// ListTransactions handles GET /api/transactions
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	dtos, err := h.settlementService.ListTransactions(r.Context(), userCtx.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": dtos})
}

type submitReferenceRequest struct {
	BuyerTxnID string `json:"buyer_txn_id" validate:"required,min=4,max=200"`
}

// SubmitReference handles POST /api/transactions/{id}/reference
func (h *TransactionHandler) SubmitReference(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req submitReferenceRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	txn, err := h.settlementService.SubmitPaymentReference(r.Context(), r.PathValue("id"), userCtx.UserID, req.BuyerTxnID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, service.TransactionToDTO(txn))
}

// VerifyTransaction handles POST /api/transactions/{id}/verify
func (h *TransactionHandler) VerifyTransaction(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	txn, err := h.settlementService.Verify(r.Context(), r.PathValue("id"), userCtx.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.metrics.RecordSettlement(string(txn.PaymentMethod), "verified")

	writeJSON(w, http.StatusOK, service.TransactionToDTO(txn))
}

// RejectTransaction handles POST /api/transactions/{id}/reject
func (h *TransactionHandler) RejectTransaction(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	txn, err := h.settlementService.Reject(r.Context(), r.PathValue("id"), userCtx.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.metrics.RecordSettlement(string(txn.PaymentMethod), "rejected")

	writeJSON(w, http.StatusOK, service.TransactionToDTO(txn))
}

// GetWallet handles GET /api/wallet
func (h *TransactionHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	balance, err := h.settlementService.GetBalance(r.Context(), userCtx.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"time_credits": balance.StringFixed(2)})
}

// ListBuyers handles GET /api/seller/buyers
func (h *TransactionHandler) ListBuyers(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	buyers, err := h.settlementService.ListBuyers(r.Context(), userCtx.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": buyers})
}
