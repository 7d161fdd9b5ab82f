package handler

import (
	"net/http"

	"upi/internal/quantum"
)

// DemoHandler serves the Shor's-algorithm illustration. Stateless and
// isolated from the settlement core.
type DemoHandler struct{}

func NewDemoHandler() *DemoHandler {
	return &DemoHandler{}
}

// Shor factors the composite derived from a UID suffix and PIN,
// demonstrating how little protection those secrets offer.
func (h *DemoHandler) Shor(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	pin := r.URL.Query().Get("pin")

	composite, err := quantum.CompositeFromCredentials(uid, pin)
	if err != nil {
		respondError(w, http.StatusBadRequest, "uid and pin query parameters are required")
		return
	}

	f1, f2 := quantum.Factor(composite)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"composite": composite,
		"factors":   []uint64{f1, f2},
		"factored":  f2 != 1,
	})
}
