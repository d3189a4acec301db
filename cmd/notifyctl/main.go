package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sameoldbox/notify-dispatch/internal/config"
	"github.com/sameoldbox/notify-dispatch/internal/provider"
	"github.com/sameoldbox/notify-dispatch/internal/ratelimiter"
	"github.com/sameoldbox/notify-dispatch/internal/service"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "notifyctl",
	Short: "Send test notifications from the command line",
	Long: `notifyctl sends notifications through the same dispatcher the server uses.
Credentials are read from the environment (WHATSAPP_*, PUSH_*), like the server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every channel call to stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// clients holds everything a subcommand needs; built lazily so --help works
// without any environment.
type clients struct {
	cfg        *config.Config
	whatsapp   *provider.WhatsAppClient
	dispatcher *service.Dispatcher
	logger     *zap.Logger
}

func newClients() (*clients, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}

	wa := provider.NewWhatsAppClient(provider.WhatsAppConfig{
		BaseURL:       cfg.WhatsAppAPIURL,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		AccessToken:   cfg.WhatsAppAccessToken,
		Language:      cfg.WhatsAppLanguage,
		Timeout:       cfg.ProviderTimeout,
	})
	push := provider.NewExpoPushClient(cfg.PushAPIURL, cfg.PushAccessToken, cfg.ProviderTimeout)
	d := service.NewDispatcher(wa, push, ratelimiter.New(cfg.RateLimit), logger, service.MetricHooks{})

	return &clients{cfg: cfg, whatsapp: wa, dispatcher: d, logger: logger}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
