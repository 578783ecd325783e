package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"twsclient/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
	mu sync.Mutex
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Gateway.Host == "" {
		c.Gateway.Host = "127.0.0.1"
	}
	if c.Gateway.ConnectTimeoutSec == 0 {
		c.Gateway.ConnectTimeoutSec = 10
	}
	if c.Gateway.RequestTimeoutSec == 0 {
		c.Gateway.RequestTimeoutSec = 30
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.RetentionDays == 0 {
		c.Storage.RetentionDays = 30
	}
	if c.Record.Enabled && c.Record.Directory == "" {
		c.Record.Directory = "recordings"
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARNING", "WARN", "ERROR", "CRITICAL":
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}

	// Monitoring servers
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}

	// Gateway
	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("invalid gateway port number: %d", c.Gateway.Port)
	}
	if c.Gateway.ClientID < 0 {
		return fmt.Errorf("client id cannot be negative")
	}
	if c.Gateway.ConnectTimeoutSec < 0 || c.Gateway.RequestTimeoutSec < 0 {
		return fmt.Errorf("gateway timeouts cannot be negative")
	}

	// Session policy
	if c.Policy.DuplicateTimeoutMs < 0 {
		return fmt.Errorf("duplicate timeout cannot be negative")
	}
	if c.Policy.HistoryDepth < 0 {
		return fmt.Errorf("history depth cannot be negative")
	}

	// Subscriptions
	for i, sub := range c.Subscriptions {
		if sub.Symbol == "" {
			return fmt.Errorf("subscription %d must have a symbol", i)
		}
		if _, err := sub.Contract(); err != nil {
			return err
		}
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}
	if c.Storage.RetentionDays < 0 {
		return fmt.Errorf("data retention days cannot be negative")
	}

	if c.Reconnect.MaxElapsedSeconds < 0 {
		return fmt.Errorf("reconnect max elapsed seconds cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// AddSubscription appends entry unless an entry with the same symbol,
// security type and exchange is already listed. It reports whether the list
// changed.
func (c *Config) AddSubscription(entry models.MSubscriptionEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.Subscriptions {
		if sameInstrument(e, entry) {
			return false
		}
	}
	c.Subscriptions = append(c.Subscriptions, entry)
	return true
}

// RemoveSubscription drops every entry for symbol and reports how many went.
func (c *Config) RemoveSubscription(symbol string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.Subscriptions[:0]
	for _, e := range c.Subscriptions {
		if !strings.EqualFold(e.Symbol, symbol) {
			kept = append(kept, e)
		}
	}
	removed := len(c.Subscriptions) - len(kept)
	c.Subscriptions = kept
	return removed
}

func sameInstrument(a, b models.MSubscriptionEntry) bool {
	return strings.EqualFold(a.Symbol, b.Symbol) &&
		strings.EqualFold(a.SecType, b.SecType) &&
		strings.EqualFold(a.Exchange, b.Exchange) &&
		a.Expiry == b.Expiry && a.Strike == b.Strike && strings.EqualFold(a.Right, b.Right)
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	c.mu.Lock()
	data, err := yaml.Marshal(c.MConfig)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
