package handler

import (
	"net/http"
	"strconv"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/service"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/auth"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/helpers"
)

type ChatHandler struct {
	chatService service.ChatService
	validator   *helpers.CustomValidator
}

func NewChatHandler(chatService service.ChatService, validator *helpers.CustomValidator) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		validator:   validator,
	}
}

// Register wires the chat routes onto the mux
func (h *ChatHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/chat/listing/{id}/thread", h.GetListingThread)
	mux.HandleFunc("POST /api/chat/listing/{id}/thread", h.PostToListingThread)
	mux.HandleFunc("GET /api/chat/transaction/{id}/thread", h.GetTransactionThread)
	mux.HandleFunc("POST /api/chat/transaction/{id}/thread", h.PostToTransactionThread)
}

type postMessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// GetListingThread handles GET /api/chat/listing/{id}/thread
func (h *ChatHandler) GetListingThread(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	listingID, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	thread, err := h.chatService.ListingThread(r.Context(), listingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, thread)
}

// PostToListingThread handles POST /api/chat/listing/{id}/thread
func (h *ChatHandler) PostToListingThread(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	listingID, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	var req postMessageRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	msg, err := h.chatService.PostToListing(r.Context(), listingID, userCtx.UserID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// GetTransactionThread handles GET /api/chat/transaction/{id}/thread
func (h *ChatHandler) GetTransactionThread(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	thread, err := h.chatService.TransactionThread(r.Context(), r.PathValue("id"), userCtx.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, thread)
}

// PostToTransactionThread handles POST /api/chat/transaction/{id}/thread
func (h *ChatHandler) PostToTransactionThread(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req postMessageRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	msg, err := h.chatService.PostToTransaction(r.Context(), r.PathValue("id"), userCtx.UserID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}
