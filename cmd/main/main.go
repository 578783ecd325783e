package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"twsclient/src/client"
	"twsclient/src/config"
	"twsclient/src/grpc_control"
	"twsclient/src/helpers"
	"twsclient/src/interfaces"
	"twsclient/src/logger"
	"twsclient/src/marketdata"
	"twsclient/src/metrics"
	"twsclient/src/models"
	"twsclient/src/record"
	"twsclient/src/server"
	"twsclient/src/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg, cfg.Name)
	defer appLogger.Sync()

	// 1. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collectorsSet := metrics.New(reg)

	// 2. Order journal
	journal, err := storage.NewJournal(cfg.MConfig, logger.NewLogger(cfg, "Journal"))
	if err != nil {
		appLogger.Critical("Failed to init journal: %v", err)
		os.Exit(1)
	}
	if err := journal.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate journal: %v", err)
		os.Exit(1)
	}
	defer journal.Close()

	subscriptions := cfg.Subscriptions
	if pg, ok := journal.(*storage.PostgresJournal); ok {
		if expanded, err := pg.ExpandSubscriptions(subscriptions); err != nil {
			appLogger.Warning("Failed to expand table subscriptions: %v", err)
		} else {
			subscriptions = expanded
		}
	}

	// 3. Market data engine and client
	engine := marketdata.NewEngine(marketdata.Options{
		Policy:       marketdata.PolicyFromConfig(cfg.Policy),
		CalendarMIC:  cfg.Policy.ExchangeCalendar,
		HistoryDepth: cfg.Policy.HistoryDepth,
		Logger:       logger.NewLogger(cfg, "MarketData"),
		Metrics:      collectorsSet,
	})

	opts := client.OptionsFromConfig(cfg.Gateway)
	opts.Engine = engine
	opts.Journal = journal
	opts.Metrics = collectorsSet
	opts.Logger = logger.NewLogger(cfg, "Client")
	if cfg.Record.Enabled {
		opts.WrapConn = recordingWrapper(cfg.Record.Directory, appLogger)
	}
	tws := client.New(opts)

	// 4. Monitoring servers
	srv := server.NewMonitorServer(cfg.MConfig, logger.NewLogger(cfg, "Server"), tws, journal, reg)
	tws.SetHandler(&monitorHandler{srv: srv, log: appLogger})

	grpcServer := grpc.NewServer()
	grpc_control.Register(grpcServer, grpc_control.NewControlService(cfg, *configPath, tws, logger.NewLogger(cfg, "ControlService")))

	// 5. Run until a signal arrives or a component fails
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	if cfg.GrpcPort != 0 {
		g.Go(func() error {
			addr := net.JoinHostPort(cfg.GrpcHost, fmt.Sprint(cfg.GrpcPort))
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen for gRPC: %w", err)
			}
			appLogger.Info("Starting gRPC Control Server on %s", addr)
			return grpcServer.Serve(lis)
		})
	}

	g.Go(func() error {
		eh := helpers.NewErrorHandler(logger.NewLogger(cfg, "Gateway"))
		eh.MaxTries = cfg.Reconnect.MaxTries
		eh.MaxElapsed = time.Duration(cfg.Reconnect.MaxElapsedSeconds) * time.Second
		return superviseGateway(ctx, tws, subscriptions, eh, appLogger)
	})

	g.Go(func() error {
		retention := time.Duration(cfg.Storage.RetentionDays) * 24 * time.Hour
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			if err := journal.CleanupOldData(retention); err != nil {
				appLogger.Warning("Journal cleanup failed: %v", err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		appLogger.Info("Shutting down...")
		tws.Disconnect()
		grpcServer.GracefulStop()
		return srv.Stop()
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Stopped with error: %v", err)
		os.Exit(1)
	}
}

// -----------------------------------------------------------------------------

// superviseGateway keeps the client connected. After every successful
// handshake the configured instruments are subscribed again, since the peer
// forgets them with the connection.
func superviseGateway(ctx context.Context, tws *client.Client, subs []models.MSubscriptionEntry, eh *helpers.ErrorHandler, log *logger.Logger) error {
	for {
		err := eh.ExecuteWithRetry(ctx, "Gateway connect", func() error {
			return tws.Connect(ctx)
		})
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gateway unreachable: %w", err)
		}

		log.Info("Connected to gateway, server version %d", tws.ServerVersion())
		subscribeAll(tws, subs, log)

		done := tws.Done()
		if done == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			log.Warning("Gateway connection lost, reconnecting")
		}
	}
}

func subscribeAll(tws *client.Client, subs []models.MSubscriptionEntry, log *logger.Logger) {
	for _, entry := range subs {
		contract, err := entry.Contract()
		if err != nil {
			log.Warning("Skipping subscription: %v", err)
			continue
		}
		id, err := tws.RequestMarketData(contract, entry.GenericTicks, false)
		if err != nil {
			log.Error("Subscribe %s failed: %v", entry.Symbol, err)
			continue
		}
		log.Info("Subscribed %s as request %d", entry.Symbol, id)
	}
}

// recordingWrapper records each connection into its own file under dir.
func recordingWrapper(dir string, log *logger.Logger) func(net.Conn) net.Conn {
	return func(conn net.Conn) net.Conn {
		rec, path, err := record.CreateFile(dir)
		if err != nil {
			log.Error("Recording disabled for this connection: %v", err)
			return conn
		}
		log.Info("Recording session to %s", path)
		return rec.Wrap(conn)
	}
}

// -----------------------------------------------------------------------------
// Event handler
// -----------------------------------------------------------------------------

type monitorHandler struct {
	interfaces.NoopHandler
	srv interfaces.IDataExchanger
	log *logger.Logger
}

func (h *monitorHandler) OnConnected(serverVersion int, serverTime string) {
	h.log.Info("Session started at %s (server version %d)", serverTime, serverVersion)
}

func (h *monitorHandler) OnDisconnected(cause error) {
	if cause != nil {
		h.log.Warning("Session ended: %v", cause)
	}
}

func (h *monitorHandler) OnInternalFault(err error) {
	h.log.Error("Internal fault: %v", err)
}

func (h *monitorHandler) OnMarketData(event models.MMarketDataEvent) {
	h.srv.Broadcast(event)
}

func (h *monitorHandler) OnOrderStatus(status models.MOrderStatus, _ *models.MOrderRecord) {
	h.log.Info("Order %d %s: filled %d, remaining %d", status.OrderID, status.Status, status.Filled, status.Remaining)
}

func (h *monitorHandler) OnError(event models.MErrorEvent) {
	h.log.Warning("Peer error %d for id %d: %s", event.Code, event.RequestID, event.Message)
}
