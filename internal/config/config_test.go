package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load defaults failed: %v", err)
	}
	if cfg.Cart.DeliveryFee != 15000 {
		t.Fatalf("unexpected delivery fee: %d", cfg.Cart.DeliveryFee)
	}
	if cfg.Cart.DefaultDeliOption != "delivery" || cfg.Cart.DefaultPaymentMethod != "cash" {
		t.Fatalf("unexpected cart defaults: %+v", cfg.Cart)
	}
	if cfg.Credential.Key != "coffee-shop-auth-user" {
		t.Fatalf("unexpected credential key: %s", cfg.Credential.Key)
	}
	if cfg.API.Timeout() != 0 {
		t.Fatalf("timeout should default to transport default")
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := []byte("api:\n  base_url: http://shop.local\n  timeout_seconds: 5\ncart:\n  delivery_fee: 20000\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv("CART_DEFAULT_DELI_OPTION", "pick-up")

	cfg, err := LoadFrom(viper.New(), dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://shop.local" {
		t.Fatalf("unexpected base url: %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout().Seconds() != 5 {
		t.Fatalf("unexpected timeout: %v", cfg.API.Timeout())
	}
	if cfg.Cart.DeliveryFee != 20000 {
		t.Fatalf("unexpected delivery fee: %d", cfg.Cart.DeliveryFee)
	}
	if cfg.Cart.DefaultDeliOption != "pick-up" {
		t.Fatalf("env override not applied: %s", cfg.Cart.DefaultDeliOption)
	}
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"deli option", func(c *Config) { c.Cart.DefaultDeliOption = "drone" }},
		{"payment method", func(c *Config) { c.Cart.DefaultPaymentMethod = "bitcoin" }},
		{"negative fee", func(c *Config) { c.Cart.DeliveryFee = -1 }},
		{"store", func(c *Config) { c.Credential.Store = "cookie" }},
		{"redis disabled", func(c *Config) { c.Credential.Store = "redis"; c.Redis.Enabled = false }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadFrom(viper.New(), t.TempDir())
			if err != nil {
				t.Fatalf("load defaults failed: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
