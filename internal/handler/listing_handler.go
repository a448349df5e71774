package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/service"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/auth"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/helpers"
)

type ListingHandler struct {
	listingService service.ListingService
	validator      *helpers.CustomValidator
}

func NewListingHandler(listingService service.ListingService, validator *helpers.CustomValidator) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		validator:      validator,
	}
}

// Register wires the listing routes onto the mux
func (h *ListingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/listings", h.ListListings)
	mux.HandleFunc("POST /api/listings", h.CreateListing)
	mux.HandleFunc("GET /api/listings/{id}", h.GetListing)
}

type createListingRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Location    string `json:"location" validate:"max=200"`
	// Prices stay as JSON literals until decimal parsing; a float
	// intermediate would lose the fixed 2dp precision.
	PriceRupees      *json.Number `json:"price_rupees"`
	PriceTimeCredits *json.Number `json:"price_timecredits"`
}

// parsePrice converts an optional price literal to a decimal, rejecting
// non-positive and malformed amounts.
func parsePrice(field string, raw *json.Number) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}

	price, err := decimal.NewFromString(raw.String())
	if err != nil || !price.IsPositive() {
		return nil, fmt.Errorf("The %s field must be a positive amount", field)
	}

	return &price, nil
}

// CreateListing handles POST /api/listings
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createListingRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	priceRupees, err := parsePrice("price rupees", req.PriceRupees)
	if err != nil {
		helpers.WriteValidationErrorResponseFromString(w, err.Error())
		return
	}
	priceTC, err := parsePrice("price timecredits", req.PriceTimeCredits)
	if err != nil {
		helpers.WriteValidationErrorResponseFromString(w, err.Error())
		return
	}

	listing, err := h.listingService.CreateListing(r.Context(), userCtx.UserID, req.Title, req.Description, req.Location, priceRupees, priceTC)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, listing)
}

// GetListing handles GET /api/listings/{id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	listing, err := h.listingService.GetListing(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// ListListings handles GET /api/listings
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService.ListListings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": listings})
}
