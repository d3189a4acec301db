package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	apimw "github.com/sameoldbox/notify-dispatch/internal/api/middleware"
	"github.com/sameoldbox/notify-dispatch/internal/domain"
	"github.com/sameoldbox/notify-dispatch/internal/service"
)

// MaxBatchSize bounds one batch request.
const MaxBatchSize = 1000

// BatchRequest is the body of POST /api/v1/notifications/batch.
type BatchRequest struct {
	Recipients []domain.Recipient `json:"recipients" validate:"dive"`
	Type       domain.Kind        `json:"type"`
	Details    json.RawMessage    `json:"details"`
}

// BatchResponse lists one result per recipient, in request order.
type BatchResponse struct {
	Results []domain.BatchResult `json:"results"`
}

// BatchHandler serves the fan-out endpoint.
type BatchHandler struct {
	dispatcher *service.Dispatcher
	timeout    time.Duration
	logger     *zap.Logger
}

// NewBatchHandler bounds each dispatch by timeout; zero leaves only the
// request context in charge.
func NewBatchHandler(d *service.Dispatcher, timeout time.Duration, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{dispatcher: d, timeout: timeout, logger: logger}
}

// NotifyBatch handles POST /api/v1/notifications/batch
//
// @Summary  Send the same notification to up to 1000 recipients
// @Tags     notifications
// @Accept   json
// @Produce  json
// @Param    body  body      handler.BatchRequest  true  "Recipients, type and details"
// @Success  200   {object}  handler.BatchResponse
// @Failure  422   {object}  map[string]string
// @Router   /api/v1/notifications/batch [post]
func (h *BatchHandler) NotifyBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeAndValidate(r, &req); err != nil {
		mapError(w, err)
		return
	}

	switch {
	case len(req.Recipients) == 0:
		mapError(w, domain.ErrBatchEmpty)
		return
	case len(req.Recipients) > MaxBatchSize:
		mapError(w, domain.ErrBatchTooLarge)
		return
	}

	ev, err := domain.DecodeEvent(req.Type, req.Details)
	if err != nil {
		apimw.Logger(r.Context(), h.logger).Warn("decode batch details",
			zap.String("kind", string(req.Type)),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	// Recipients not reached before the deadline come back as failures, so
	// the response is written before the server's write timeout.
	ctx, cancel := dispatchContext(r, h.timeout)
	defer cancel()

	results := h.dispatcher.NotifyBatch(ctx, req.Recipients, req.Type, ev)
	respondJSON(w, http.StatusOK, BatchResponse{Results: results})
}
