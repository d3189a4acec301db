package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sameoldbox/notify-dispatch/internal/api"
	"github.com/sameoldbox/notify-dispatch/internal/config"
	"github.com/sameoldbox/notify-dispatch/internal/metrics"
	"github.com/sameoldbox/notify-dispatch/internal/provider"
	"github.com/sameoldbox/notify-dispatch/internal/ratelimiter"
	"github.com/sameoldbox/notify-dispatch/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if !cfg.WhatsAppConfigured() {
		logger.Warn("whatsapp credentials missing; whatsapp sends will fail until configured")
	}

	// ---- channel clients ----
	whatsapp := provider.NewWhatsAppClient(provider.WhatsAppConfig{
		BaseURL:       cfg.WhatsAppAPIURL,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		AccessToken:   cfg.WhatsAppAccessToken,
		Language:      cfg.WhatsAppLanguage,
		Timeout:       cfg.ProviderTimeout,
	})
	push := provider.NewExpoPushClient(cfg.PushAPIURL, cfg.PushAccessToken, cfg.ProviderTimeout)

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	onSent, onFailed, onSkipped := m.DispatchHooks()
	dispatcher := service.NewDispatcher(whatsapp, push, ratelimiter.New(cfg.RateLimit), logger, service.MetricHooks{
		OnSent:    onSent,
		OnFailed:  onFailed,
		OnSkipped: onSkipped,
	})

	// ---- HTTP server ----
	router := api.NewRouter(dispatcher, whatsapp, reg, cfg.DispatchTimeout, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("whatsapp_business_account_id", cfg.WhatsAppBusinessAccountID),
			zap.Int("rate_limit_per_channel", cfg.RateLimit),
			zap.Duration("dispatch_timeout", cfg.DispatchTimeout),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// In-flight batches finish or observe cancellation through their request context.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}
