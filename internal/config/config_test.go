package config_test

import (
	"testing"
	"time"

	"github.com/sameoldbox/notify-dispatch/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.HTTPPort)
	}
	if cfg.WhatsAppAPIURL != config.DefaultWhatsAppAPIURL || cfg.PushAPIURL != config.DefaultPushAPIURL {
		t.Fatalf("unexpected default urls: %q %q", cfg.WhatsAppAPIURL, cfg.PushAPIURL)
	}
	if cfg.WhatsAppLanguage != "en" {
		t.Fatalf("expected language en, got %q", cfg.WhatsAppLanguage)
	}
	if cfg.RateLimit != 0 {
		t.Fatalf("expected unlimited rate by default, got %d", cfg.RateLimit)
	}
	if cfg.WhatsAppConfigured() {
		t.Fatal("expected whatsapp to be unconfigured without credentials")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("PROVIDER_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_PER_CHANNEL", "20")
	t.Setenv("WHATSAPP_LANGUAGE", "en_US")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "1234")
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "tok")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPPort != "9090" || cfg.ProviderTimeout != 3*time.Second || cfg.RateLimit != 20 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.WhatsAppLanguage != "en_US" || !cfg.WhatsAppConfigured() {
		t.Fatalf("whatsapp overrides not applied: %+v", cfg)
	}
}

func TestLoad_PublicPrefixedAliases(t *testing.T) {
	t.Setenv("EXPO_PUBLIC_WHATSAPP_PHONE_NUMBER_ID", "alias-id")
	t.Setenv("EXPO_PUBLIC_WHATSAPP_ACCESS_TOKEN", "alias-token")
	t.Setenv("EXPO_PUBLIC_WHATSAPP_BUSINESS_ACCOUNT_ID", "waba")
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "direct-token")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WhatsAppPhoneNumberID != "alias-id" || cfg.WhatsAppBusinessAccountID != "waba" {
		t.Fatalf("expected prefixed aliases to be read, got %+v", cfg)
	}
	if cfg.WhatsAppAccessToken != "direct-token" {
		t.Fatalf("expected unprefixed key to win, got %q", cfg.WhatsAppAccessToken)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("bad duration falls back to default", func(t *testing.T) {
		t.Setenv("READ_TIMEOUT", "soon")
		cfg, err := config.Load()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.ReadTimeout != 5*time.Second {
			t.Fatalf("expected default read timeout, got %v", cfg.ReadTimeout)
		}
	})

	t.Run("relative api url is rejected", func(t *testing.T) {
		t.Setenv("WHATSAPP_API_URL", "graph.facebook.com")
		if _, err := config.Load(); err == nil {
			t.Fatal("expected an error for a relative url")
		}
	})
}

func TestLoad_DispatchTimeout(t *testing.T) {
	t.Run("defaults below write timeout", func(t *testing.T) {
		t.Setenv("WRITE_TIMEOUT", "10s")
		cfg, err := config.Load()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.DispatchTimeout != 9*time.Second {
			t.Fatalf("expected 9s, got %v", cfg.DispatchTimeout)
		}
	})

	t.Run("explicit value", func(t *testing.T) {
		t.Setenv("DISPATCH_TIMEOUT", "20s")
		cfg, err := config.Load()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.DispatchTimeout != 20*time.Second {
			t.Fatalf("expected 20s, got %v", cfg.DispatchTimeout)
		}
	})

	t.Run("not shorter than write timeout is rejected", func(t *testing.T) {
		t.Setenv("WRITE_TIMEOUT", "5s")
		t.Setenv("DISPATCH_TIMEOUT", "5s")
		if _, err := config.Load(); err == nil {
			t.Fatal("expected an error when the dispatch timeout reaches the write timeout")
		}
	})
}
