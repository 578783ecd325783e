package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"twsclient/src/models"
)

const minimal = `
name: twsclient
host: 127.0.0.1
port: 8080
gateway:
  port: 7496
storage:
  db_path: orders.db
subscriptions:
  - symbol: AAPL
    exchange: SMART
    currency: USD
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, minimal))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "INFO" || cfg.Gateway.Host != "127.0.0.1" || cfg.Storage.DBType != "sqlite" {
		t.Errorf("defaults not applied: %+v", cfg.MConfig)
	}
	if cfg.Gateway.ConnectTimeoutSec != 10 || cfg.Gateway.RequestTimeoutSec != 30 || cfg.Storage.RetentionDays != 30 {
		t.Errorf("timeouts = %+v storage = %+v", cfg.Gateway, cfg.Storage)
	}
	c, err := cfg.Subscriptions[0].Contract()
	if err != nil || c.SecType != models.SecTypeStock {
		t.Errorf("contract = %+v, %v", c, err)
	}
}

func TestDefaultFileLoads(t *testing.T) {
	cfg, err := NewConfig("../../config/default.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Subscriptions) == 0 || cfg.Policy.ExchangeCalendar == "" {
		t.Errorf("default config = %+v", cfg.MConfig)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		wantErr string
	}{
		{"bad server port", [2]string{"port: 8080", "port: 80"}, "server port"},
		{"bad gateway port", [2]string{"port: 7496", "port: 0"}, "gateway port"},
		{"unknown db", [2]string{"db_path: orders.db", "db_path: orders.db\n  db_type: mongo"}, "unsupported database"},
		{"bad sec type", [2]string{"exchange: SMART", "exchange: SMART\n    sec_type: XYZ"}, "AAPL"},
		{"missing name", [2]string{"name: twsclient", ""}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := strings.Replace(minimal, tt.replace[0], tt.replace[1], 1)
			_, err := NewConfig(writeConfig(t, body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSubscriptionsAndSave(t *testing.T) {
	path := writeConfig(t, minimal)
	cfg, err := NewConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.AddSubscription(models.MSubscriptionEntry{Symbol: "aapl", Exchange: "smart", Currency: "USD"}) {
		t.Error("duplicate subscription added")
	}
	if !cfg.AddSubscription(models.MSubscriptionEntry{Symbol: "IBM", SecType: "STK", Exchange: "SMART", Currency: "USD"}) {
		t.Error("new subscription rejected")
	}
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(reloaded.Subscriptions) != 2 || reloaded.Subscriptions[1].Symbol != "IBM" {
		t.Errorf("subscriptions = %+v", reloaded.Subscriptions)
	}

	if n := reloaded.RemoveSubscription("AAPL"); n != 1 || len(reloaded.Subscriptions) != 1 {
		t.Errorf("removed %d, left %+v", n, reloaded.Subscriptions)
	}
}
