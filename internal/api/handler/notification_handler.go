package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/sameoldbox/notify-dispatch/internal/api/middleware"
	"github.com/sameoldbox/notify-dispatch/internal/domain"
	"github.com/sameoldbox/notify-dispatch/internal/service"
)

// NotifyRequest is the body of POST /api/v1/notifications/{kind}.
type NotifyRequest struct {
	Recipient domain.Recipient `json:"recipient"`
	Details   json.RawMessage  `json:"details"`
}

// NotificationHandler serves single-recipient sends.
type NotificationHandler struct {
	dispatcher *service.Dispatcher
	timeout    time.Duration
	logger     *zap.Logger
}

// NewNotificationHandler bounds each dispatch by timeout; zero leaves only the
// request context in charge.
func NewNotificationHandler(d *service.Dispatcher, timeout time.Duration, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{dispatcher: d, timeout: timeout, logger: logger}
}

// Notify handles POST /api/v1/notifications/{kind}
//
// @Summary  Send one notification on every channel the recipient has
// @Tags     notifications
// @Accept   json
// @Produce  json
// @Param    kind  path      string                 true  "order|subscription|payment|promotion|menu|wallet|referral"
// @Param    body  body      handler.NotifyRequest  true  "Recipient and event details"
// @Success  200   {object}  domain.Result
// @Failure  422   {object}  map[string]string
// @Router   /api/v1/notifications/{kind} [post]
func (h *NotificationHandler) Notify(w http.ResponseWriter, r *http.Request) {
	kind := domain.Kind(chi.URLParam(r, "kind"))

	var req NotifyRequest
	if err := decodeAndValidate(r, &req); err != nil {
		mapError(w, err)
		return
	}

	ev, err := domain.DecodeEvent(kind, req.Details)
	if err != nil {
		apimw.Logger(r.Context(), h.logger).Warn("decode notification details",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	ctx, cancel := dispatchContext(r, h.timeout)
	defer cancel()

	// Channel failures are reported in the body, not as an HTTP error.
	respondJSON(w, http.StatusOK, h.dispatcher.Notify(ctx, req.Recipient, ev))
}
