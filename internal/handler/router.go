package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"upi/internal/middleware"
	"upi/internal/qr"
	"upi/internal/settlement"
	"upi/pkg/logger"
	"upi/pkg/validator"
)

// NewRouter wires the full gateway surface.
func NewRouter(engine *settlement.Service, qrSvc *qr.Service, val *validator.Validator, log logger.Logger) *mux.Router {
	bankHandler := NewBankHandler(engine, val, log)
	accountHandler := NewAccountHandler(engine, qrSvc, val, log)
	transferHandler := NewTransferHandler(engine, val, log)
	demoHandler := NewDemoHandler()

	r := mux.NewRouter()
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(log))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/banks", bankHandler.RegisterBank).Methods(http.MethodPost)
	api.HandleFunc("/banks/{name}/ledger", bankHandler.GetLedger).Methods(http.MethodGet)
	api.HandleFunc("/banks/{name}/ledger/verify", bankHandler.VerifyLedger).Methods(http.MethodGet)

	api.HandleFunc("/merchants", accountHandler.RegisterMerchant).Methods(http.MethodPost)
	api.HandleFunc("/merchants", accountHandler.ListMerchants).Methods(http.MethodGet)
	api.HandleFunc("/merchants/{mid}/qr", accountHandler.MerchantQR).Methods(http.MethodGet)
	api.HandleFunc("/users", accountHandler.RegisterUser).Methods(http.MethodPost)
	api.HandleFunc("/users", accountHandler.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/tokens", accountHandler.ObfuscateMerchantID).Methods(http.MethodPost)

	api.HandleFunc("/transfers/same-bank", transferHandler.SameBank).Methods(http.MethodPost)
	api.HandleFunc("/transfers/cross-bank", transferHandler.CrossBank).Methods(http.MethodPost)

	api.HandleFunc("/demo/shor", demoHandler.Shor).Methods(http.MethodGet)

	return r
}
