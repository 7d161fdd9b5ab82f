package handler

import (
	"net/http"

	"upi/internal/settlement"
	"upi/pkg/logger"
	"upi/pkg/validator"
)

// TransferHandler exposes the two settlement paths.
type TransferHandler struct {
	engine    *settlement.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewTransferHandler(engine *settlement.Service, val *validator.Validator, log logger.Logger) *TransferHandler {
	return &TransferHandler{
		engine:    engine,
		validator: val,
		logger:    log,
	}
}

// SameBank settles a transfer within one bank.
func (h *TransferHandler) SameBank(w http.ResponseWriter, r *http.Request) {
	var req settlement.SameBankTransferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.engine.TransferSameBank(&req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, receipt)
}

// CrossBank settles a transfer between two banks.
func (h *TransferHandler) CrossBank(w http.ResponseWriter, r *http.Request) {
	var req settlement.CrossBankTransferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.engine.TransferCrossBank(&req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, receipt)
}
