package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/sameoldbox/notify-dispatch/internal/domain"
	"github.com/sameoldbox/notify-dispatch/internal/provider"
)

// WhatsAppVerifier checks the WhatsApp credentials against the Graph API.
type WhatsAppVerifier interface {
	VerifyConfiguration(ctx context.Context) (*provider.PhoneNumberInfo, error)
}

// HealthHandler serves the liveness probe and the WhatsApp configuration check.
type HealthHandler struct {
	whatsapp WhatsAppVerifier
}

func NewHealthHandler(whatsapp WhatsAppVerifier) *HealthHandler {
	return &HealthHandler{whatsapp: whatsapp}
}

// Health handles GET /health
//
// @Summary  Liveness probe
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WhatsApp handles GET /health/whatsapp
//
// @Summary  Verify WhatsApp Business credentials
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  502  {object}  map[string]string
// @Failure  503  {object}  map[string]string
// @Router   /health/whatsapp [get]
func (h *HealthHandler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	info, err := h.whatsapp.VerifyConfiguration(r.Context())
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unconfigured", "error": err.Error()})
		return
	case err != nil:
		respondJSON(w, http.StatusBadGateway, map[string]string{"status": "error", "error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"phone_number":  info.DisplayPhoneNumber,
		"verified_name": info.VerifiedName,
		"quality":       info.QualityRating,
	})
}
