package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// deliveryCounters maps the JSON snapshot keys to counter families.
var deliveryCounters = map[string]string{
	"sent":    "notifications_sent_total",
	"failed":  "notifications_failed_total",
	"skipped": "notifications_skipped_total",
}

// MetricsHandler serves a human-readable JSON snapshot of delivery counters
// summed per channel. Raw Prometheus metrics are still available at /metrics.
type MetricsHandler struct {
	g prometheus.Gatherer
}

func NewMetricsHandler(g prometheus.Gatherer) *MetricsHandler {
	return &MetricsHandler{g: g}
}

// GetMetrics handles GET /api/v1/metrics
//
// @Summary  Delivery counters per channel
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/metrics [get]
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	families, err := h.g.Gather()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to gather metrics")
		return
	}

	byName := make(map[string]map[string]float64, len(deliveryCounters))
	for key := range deliveryCounters {
		byName[key] = map[string]float64{}
	}

	for _, mf := range families {
		for key, name := range deliveryCounters {
			if mf.GetName() != name {
				continue
			}
			for _, m := range mf.GetMetric() {
				for _, lp := range m.GetLabel() {
					if lp.GetName() == "channel" {
						byName[key][lp.GetValue()] += m.GetCounter().GetValue()
					}
				}
			}
		}
	}

	respondJSON(w, http.StatusOK, byName)
}
