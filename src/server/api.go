package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"twsclient/src/interfaces"
	"twsclient/src/logger"
	"twsclient/src/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// -----------------------------------------------------------------------------
// MonitorServer
// -----------------------------------------------------------------------------

type MonitorServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	State   interfaces.IClientState
	Journal interfaces.IOrderJournal // optional
	engine  *gin.Engine
	http    *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan models.MMarketDataEvent
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once

	latestMutex sync.RWMutex
	latest      int64
}

var _ interfaces.IDataExchanger = (*MonitorServer)(nil)

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// NewMonitorServer builds the REST and websocket surface over state. gatherer
// backs /metrics; nil leaves the route out.
func NewMonitorServer(cfg *models.MConfig, log *logger.Logger, state interfaces.IClientState, journal interfaces.IOrderJournal, gatherer prometheus.Gatherer) *MonitorServer {
	// Set Gin mode
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &MonitorServer{
		Config:  cfg,
		Logger:  log,
		State:   state,
		Journal: journal,
		engine:  gin.New(),
		clients: make(map[*Client]struct{}),
		// Buffered so a tick burst does not stall the dispatcher
		broadcast:  make(chan models.MMarketDataEvent, 1024),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
	s.engine.Use(gin.Recovery())

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes(gatherer)
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *MonitorServer) setupRoutes(gatherer prometheus.Gatherer) {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/config", s.getConfig)

	api.GET("/snapshots", s.getSnapshots)
	api.GET("/snapshots/:id", s.getSnapshot)
	api.GET("/snapshots/:id/history", s.getHistory)
	api.POST("/subscriptions", s.postSubscription)
	api.DELETE("/subscriptions/:id", s.deleteSubscription)

	api.GET("/orders", s.getOrders)
	api.GET("/orders/journal", s.getJournal)

	api.GET("/policy", s.getPolicy)
	api.PUT("/policy", s.putPolicy)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)

	if gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// Handler exposes the routes, mainly for tests.
func (s *MonitorServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the hub and serves HTTP until Stop. It returns nil after a
// clean stop.
func (s *MonitorServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	s.latestMutex.Lock()
	s.http = srv
	s.latestMutex.Unlock()
	go s.handleWebsockets()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.quit)
		s.latestMutex.RLock()
		srv := s.http
		s.latestMutex.RUnlock()
		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = srv.Shutdown(ctx)
		}
	})
	return err
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *MonitorServer) getHealth(c *gin.Context) {
	s.latestMutex.RLock()
	latest := s.latest
	connections := len(s.clients)
	s.latestMutex.RUnlock()

	status := "ok"
	if !s.State.IsConnected() {
		status = "disconnected"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"server_version": s.State.ServerVersion(),
		"pending_calls":  s.State.PendingCalls(),
		"connections":    connections,
		"latest_update":  latest,
	})
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"gateway":       gin.H{"host": s.Config.Gateway.Host, "port": s.Config.Gateway.Port},
		"subscriptions": s.Config.Subscriptions,
	})
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) getSnapshots(c *gin.Context) {
	c.JSON(http.StatusOK, s.State.Snapshots())
}

func (s *MonitorServer) getSnapshot(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	snap, found := s.State.Snapshot(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no subscription %d", id)})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *MonitorServer) getHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	n, ok := queryInt(c, "n", 50)
	if !ok {
		return
	}
	events, found := s.State.History(id, n)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no subscription %d", id)})
		return
	}
	c.JSON(http.StatusOK, events)
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) postSubscription(c *gin.Context) {
	var entry models.MSubscriptionEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := entry.Contract()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := s.State.RequestMarketData(contract, entry.GenericTicks, false)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request_id": id})
}

func (s *MonitorServer) deleteSubscription(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.State.CancelMarketData(id); err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) getOrders(c *gin.Context) {
	c.JSON(http.StatusOK, s.State.Orders())
}

func (s *MonitorServer) getJournal(c *gin.Context) {
	if s.Journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no order journal configured"})
		return
	}
	limit, ok := queryInt(c, "limit", 100)
	if !ok {
		return
	}
	orders, err := s.Journal.RecentOrders(limit)
	if err != nil {
		s.Logger.Error("Journal query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) getPolicy(c *gin.Context) {
	c.JSON(http.StatusOK, policyView(s.State.Policy()))
}

func (s *MonitorServer) putPolicy(c *gin.Context) {
	var update models.MPolicyUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if update.DuplicateTimeoutMs != nil && *update.DuplicateTimeoutMs < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duplicate_timeout_ms must not be negative"})
		return
	}
	p := update.Apply(s.State.Policy())
	s.State.SetPolicy(p)
	s.Logger.Info("Session policy changed: %+v", p)
	c.JSON(http.StatusOK, policyView(p))
}
