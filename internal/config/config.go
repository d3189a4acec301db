package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	DefaultWhatsAppAPIURL = "https://graph.facebook.com/v18.0"
	DefaultPushAPIURL     = "https://exp.host/--/api/v2/push/send"
)

// publicPrefix is the prefix the mobile build uses for the same WhatsApp
// keys; both spellings are accepted and the unprefixed one wins.
const publicPrefix = "EXPO_PUBLIC_"

// Config holds all runtime configuration loaded from environment variables.
// Read once at startup. Nothing is required: missing WhatsApp credentials
// surface as send failures and through the /health/whatsapp check.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Deadline for the dispatch work of one request. It stays below
	// WriteTimeout so unsent recipients are still reported to the caller.
	DispatchTimeout time.Duration

	// Outbound channel calls
	ProviderTimeout time.Duration

	// WhatsApp Business API
	WhatsAppAPIURL            string
	WhatsAppPhoneNumberID     string
	WhatsAppAccessToken       string
	WhatsAppBusinessAccountID string
	WhatsAppLanguage          string

	// Push
	PushAPIURL      string
	PushAccessToken string

	// Maximum sends per second per channel; <= 0 means unlimited.
	RateLimit int
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		DispatchTimeout: getDuration("DISPATCH_TIMEOUT", 0),

		ProviderTimeout: getDuration("PROVIDER_TIMEOUT", 10*time.Second),

		WhatsAppAPIURL:            getPublicEnv("WHATSAPP_API_URL", DefaultWhatsAppAPIURL),
		WhatsAppPhoneNumberID:     getPublicEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppAccessToken:       getPublicEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppBusinessAccountID: getPublicEnv("WHATSAPP_BUSINESS_ACCOUNT_ID", ""),
		WhatsAppLanguage:          getEnv("WHATSAPP_LANGUAGE", "en"),

		PushAPIURL:      getEnv("PUSH_API_URL", DefaultPushAPIURL),
		PushAccessToken: getEnv("PUSH_ACCESS_TOKEN", ""),

		RateLimit: getInt("RATE_LIMIT_PER_CHANNEL", 0),
	}

	for key, raw := range map[string]string{
		"WHATSAPP_API_URL": cfg.WhatsAppAPIURL,
		"PUSH_API_URL":     cfg.PushAPIURL,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
		}
	}

	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = cfg.WriteTimeout * 9 / 10
	}
	if cfg.WriteTimeout > 0 && cfg.DispatchTimeout >= cfg.WriteTimeout {
		return nil, fmt.Errorf("DISPATCH_TIMEOUT (%s) must be shorter than WRITE_TIMEOUT (%s)", cfg.DispatchTimeout, cfg.WriteTimeout)
	}

	return cfg, nil
}

// WhatsAppConfigured reports whether both send credentials are present.
func (c *Config) WhatsAppConfigured() bool {
	return c.WhatsAppPhoneNumberID != "" && c.WhatsAppAccessToken != ""
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getPublicEnv(key, defaultVal string) string {
	return getEnv(key, getEnv(publicPrefix+key, defaultVal))
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
