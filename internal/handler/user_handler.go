package handler

import (
	"net/http"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/service"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/auth"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/helpers"
)

type UserHandler struct {
	userService service.UserService
	validator   *helpers.CustomValidator
}

func NewUserHandler(userService service.UserService, validator *helpers.CustomValidator) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator,
	}
}

// Register wires the profile routes onto the mux
func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/user/me", h.GetProfile)
	mux.HandleFunc("PUT /api/user/me", h.UpdateProfile)
}

// GetProfile handles GET /api/user/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userCtx.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	Phone *string `json:"phone" validate:"omitempty,max=20"`
	Bio   *string `json:"bio"`
	UPIID *string `json:"upi_id" validate:"omitempty,upi_vpa"`
}

// UpdateProfile handles PUT /api/user/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateProfileRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), userCtx.UserID, service.ProfileUpdate{
		Phone: req.Phone,
		Bio:   req.Bio,
		UPIID: req.UPIID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
