package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/sameoldbox/notify-dispatch/internal/api/handler"
	apimw "github.com/sameoldbox/notify-dispatch/internal/api/middleware"
	"github.com/sameoldbox/notify-dispatch/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
// dispatchTimeout caps the send work of one request and must stay below the
// server's WriteTimeout.
func NewRouter(
	d *service.Dispatcher,
	whatsapp handler.WhatsAppVerifier,
	reg prometheus.Gatherer,
	dispatchTimeout time.Duration,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestSize(4 << 20)) // a full batch of 1000 recipients fits
	r.Use(apimw.CorrelationID)
	r.Use(apimw.RequestLogger(logger))

	nh := handler.NewNotificationHandler(d, dispatchTimeout, logger)
	bh := handler.NewBatchHandler(d, dispatchTimeout, logger)
	mh := handler.NewMetricsHandler(reg)
	hh := handler.NewHealthHandler(whatsapp)

	r.Get("/health", hh.Health)
	r.Get("/health/whatsapp", hh.WhatsApp)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		// /batch before /{kind} so "batch" is never read as a kind.
		r.Post("/notifications/batch", bh.NotifyBatch)
		r.Post("/notifications/{kind}", nh.Notify)

		r.Get("/metrics", mh.GetMetrics)
	})

	return otelhttp.NewHandler(r, "notify-dispatch")
}
