package models

import (
	"fmt"
	"strings"
)

// MConfig Structure
type MConfig struct {
	Name          string               `yaml:"name"`
	LogLevel      string               `yaml:"log_level"`
	Host          string               `yaml:"host"`
	Port          int                  `yaml:"port"`
	GrpcHost      string               `yaml:"grpc_host"`
	GrpcPort      int                  `yaml:"grpc_port"`
	Gateway       MGatewayConfig       `yaml:"gateway"`
	Policy        MPolicyConfig        `yaml:"policy"`
	Subscriptions []MSubscriptionEntry `yaml:"subscriptions"`
	Storage       MStorageConfig       `yaml:"storage"`
	Record        MRecordConfig        `yaml:"record"`
	Reconnect     MReconnectConfig     `yaml:"reconnect"`
}

// GetLogLevel lets the logger pick its level from the config.
func (c *MConfig) GetLogLevel() string {
	if c == nil {
		return ""
	}
	return c.LogLevel
}

type MGatewayConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	ClientID          int    `yaml:"client_id"` // 0 derives one from the local endpoint
	ClientVersion     int    `yaml:"client_version"`
	MinServerVersion  int    `yaml:"min_server_version"`
	ConnectTimeoutSec int    `yaml:"connect_timeout"`
	RequestTimeoutSec int    `yaml:"request_timeout"`
}

type MPolicyConfig struct {
	DuplicateTimeoutMs       int    `yaml:"duplicate_timeout_ms"`
	GenerateTradesFromLast   bool   `yaml:"generate_trades_from_last"`
	GenerateTradesFromVolume bool   `yaml:"generate_trades_from_volume"`
	SuppressSizeWithPrice    bool   `yaml:"suppress_size_with_price"`
	ExchangeCalendar         string `yaml:"exchange_calendar"`
	HistoryDepth             int    `yaml:"history_depth"`
}

type MSubscriptionEntry struct {
	Symbol       string  `yaml:"symbol" json:"symbol"`
	SecType      string  `yaml:"sec_type" json:"sec_type"`
	Exchange     string  `yaml:"exchange" json:"exchange"`
	PrimaryExch  string  `yaml:"primary_exchange" json:"primary_exchange"`
	Currency     string  `yaml:"currency" json:"currency"`
	Expiry       string  `yaml:"expiry" json:"expiry"`
	Strike       float64 `yaml:"strike" json:"strike"`
	Right        string  `yaml:"right" json:"right"`
	GenericTicks string  `yaml:"generic_ticks" json:"generic_ticks"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MRecordConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`
}

type MReconnectConfig struct {
	MaxTries          uint `yaml:"max_tries"`
	MaxElapsedSeconds int  `yaml:"max_elapsed_seconds"`
}

// Contract builds the instrument the entry describes.
func (e MSubscriptionEntry) Contract() (MContract, error) {
	code := strings.ToUpper(e.SecType)
	if code == "" {
		code = "STK"
	}
	secType, err := ParseSecurityType(code)
	if err != nil {
		return MContract{}, fmt.Errorf("subscription %s: %w", e.Symbol, err)
	}
	right, err := ParseRight(strings.ToUpper(e.Right))
	if err != nil {
		return MContract{}, fmt.Errorf("subscription %s: %w", e.Symbol, err)
	}
	if e.Symbol == "" {
		return MContract{}, fmt.Errorf("subscription without symbol")
	}
	return MContract{
		Symbol:      e.Symbol,
		SecType:     secType,
		Expiry:      e.Expiry,
		Strike:      e.Strike,
		Right:       right,
		Exchange:    e.Exchange,
		PrimaryExch: e.PrimaryExch,
		Currency:    e.Currency,
	}, nil
}
