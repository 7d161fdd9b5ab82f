package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"upi/internal/settlement"
	"upi/pkg/errors"
	"upi/pkg/logger"
	"upi/pkg/validator"
)

// BankHandler manages bank registration and ledger inspection endpoints.
type BankHandler struct {
	engine    *settlement.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewBankHandler(engine *settlement.Service, val *validator.Validator, log logger.Logger) *BankHandler {
	return &BankHandler{
		engine:    engine,
		validator: val,
		logger:    log,
	}
}

type registerBankRequest struct {
	Name string `json:"name" validate:"required,alphanum,min=2,max=16"`
}

// RegisterBank creates a bank; re-registering an existing name is a no-op.
func (h *BankHandler) RegisterBank(w http.ResponseWriter, r *http.Request) {
	var req registerBankRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	branches := h.engine.RegisterBank(req.Name)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"bank":     req.Name,
		"branches": branches,
	})
}

// GetLedger dumps a bank's chain in order.
func (h *BankHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	bankName := mux.Vars(r)["name"]

	entries, err := h.engine.GetLedger(bankName)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bank":    bankName,
		"entries": entries,
		"length":  len(entries),
	})
}

// VerifyLedger reports a bank's chain integrity. Verification failures are
// reported as data, not as transport errors.
func (h *BankHandler) VerifyLedger(w http.ResponseWriter, r *http.Request) {
	bankName := mux.Vars(r)["name"]

	err := h.engine.VerifyLedger(bankName)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]interface{}{"bank": bankName, "valid": true})
	case errors.Is(err, errors.ErrLedgerIntegrityViolation):
		h.logger.Error("Ledger integrity violation", map[string]interface{}{"bank": bankName})
		respondJSON(w, http.StatusOK, map[string]interface{}{"bank": bankName, "valid": false})
	default:
		respondDomainError(w, err)
	}
}

// decodeBody decodes a JSON request body, rejecting unknown fields and
// oversized payloads. Writes the error response itself and reports whether
// decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			respondError(w, http.StatusBadRequest, "Request body is required")
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
