package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"twsclient/src/client"
	"twsclient/src/config"
	"twsclient/src/logger"
	"twsclient/src/marketdata"
	"twsclient/src/models"
	"twsclient/src/protocol"
	"twsclient/src/record"
)

// -----------------------------------------------------------------------------

// replay feeds a recorded session through a fresh client and prints the
// market data snapshots it ends with.
func main() {
	configPath := flag.String("config", "", "optional config file for log level and session policy")
	verbose := flag.Bool("v", false, "log every decoded request and message")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-config file] [-v] recording%s\n", os.Args[0], record.FileExt)
		os.Exit(2)
	}

	var modelConfig *models.MConfig
	policy := models.MSessionPolicy{DuplicateTimeout: 500 * time.Millisecond, GenerateTradesFromLast: true}
	if *configPath != "" {
		cfg, err := config.NewConfig(*configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		modelConfig = cfg.MConfig
		policy = marketdata.PolicyFromConfig(cfg.Policy)
	}
	appLogger := logger.NewLogger(modelConfig, "Replay")
	defer appLogger.Sync()

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		appLogger.Critical("Failed to open recording: %v", err)
		os.Exit(1)
	}
	defer f.Close()

	// Duplicate windows and session rolls follow the recording, not the wall clock.
	clock := &record.Clock{}
	engine := marketdata.NewEngine(marketdata.Options{Policy: policy, Now: clock.Now, Logger: logger.NewLogger(modelConfig, "MarketData")})
	tws := client.New(client.Options{Engine: engine, Logger: logger.NewLogger(modelConfig, "Client")})

	player := &record.Player{
		Clock:  clock,
		Logger: appLogger,
		OnHandshake: func(sv int, serverTime string) {
			appLogger.Info("Server version %d, server time %q", sv, serverTime)
		},
		OnRequest: func(at time.Time, req protocol.Request) {
			if *verbose {
				appLogger.Info("%s -> %s %+v", at.Format(time.RFC3339Nano), req.Tag(), req)
			}
			switch q := req.(type) {
			case *protocol.MktDataRequest:
				engine.Subscribe(q.TickerID, q.Contract)
			case *protocol.CancelMktDataRequest:
				engine.Unsubscribe(q.TickerID)
			}
		},
		OnMessage: func(at time.Time, msg protocol.Message) {
			if *verbose {
				appLogger.Info("%s <- %s %+v", at.Format(time.RFC3339Nano), msg.Tag(), msg)
			}
			tws.Deliver(msg)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := player.Play(ctx, f)
	if err != nil {
		appLogger.Error("Replay stopped: %v", err)
	}
	appLogger.Info("Client %d (version %d) over %v: %d bytes sent, %d bytes received",
		stats.ClientID, stats.ClientVersion, stats.Duration(), stats.SentBytes, stats.ReceivedBytes)

	out, jerr := json.MarshalIndent(map[string]any{
		"stats":         stats,
		"next_order_id": tws.NextOrderID(),
		"snapshots":     tws.Snapshots(),
		"orders":        tws.Orders(),
	}, "", "  ")
	if jerr != nil {
		appLogger.Critical("Failed to encode result: %v", jerr)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if err != nil {
		os.Exit(1)
	}
}
