package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"upi/internal/qr"
	"upi/internal/settlement"
	"upi/pkg/logger"
	"upi/pkg/validator"
)

// AccountHandler manages merchant/user registration, reporting and token
// endpoints.
type AccountHandler struct {
	engine    *settlement.Service
	qr        *qr.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewAccountHandler(engine *settlement.Service, qrSvc *qr.Service, val *validator.Validator, log logger.Logger) *AccountHandler {
	return &AccountHandler{
		engine:    engine,
		qr:        qrSvc,
		validator: val,
		logger:    log,
	}
}

// RegisterMerchant registers a merchant and returns its MID and token.
func (h *AccountHandler) RegisterMerchant(w http.ResponseWriter, r *http.Request) {
	var req settlement.RegisterMerchantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	mid, err := h.engine.RegisterMerchant(&req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	token, err := h.engine.ObfuscateMerchantID(mid)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"mid":   mid,
		"token": token,
	})
}

// RegisterUser registers a user and returns its UID and MMID.
func (h *AccountHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req settlement.RegisterUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	uid, mmid, err := h.engine.RegisterUser(&req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"uid":  uid,
		"mmid": mmid,
	})
}

// ListMerchants reports all merchant registries, keyed bank then MID.
func (h *AccountHandler) ListMerchants(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"merchants": h.engine.ListMerchants(),
	})
}

// ListUsers reports all user registries, keyed bank then UID.
func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users": h.engine.ListUsers(),
	})
}

type obfuscateRequest struct {
	MID string `json:"mid" validate:"required,hexid"`
}

// ObfuscateMerchantID returns the shareable token for a MID.
func (h *AccountHandler) ObfuscateMerchantID(w http.ResponseWriter, r *http.Request) {
	var req obfuscateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.engine.ObfuscateMerchantID(req.MID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"mid":   req.MID,
		"token": token,
	})
}

// MerchantQR renders the merchant's token as a QR PNG, the form the token
// is shared in externally.
func (h *AccountHandler) MerchantQR(w http.ResponseWriter, r *http.Request) {
	mid := mux.Vars(r)["mid"]

	token, err := h.engine.ObfuscateMerchantID(mid)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	image, err := h.qr.RenderToken(token)
	if err != nil {
		h.logger.Error("QR render failed", map[string]interface{}{
			"mid":   mid,
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "QR rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Merchant-Token", token)
	w.WriteHeader(http.StatusOK)
	w.Write(image)
}
