package server

import (
	"encoding/json"
	"net/http"
	"time"

	"twsclient/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *MonitorServer) handleWebsockets() {
	for {
		select {
		case <-s.quit:
			s.latestMutex.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				client.close()
			}
			s.latestMutex.Unlock()
			return

		case client := <-s.register:
			s.latestMutex.Lock()
			s.clients[client] = struct{}{}
			s.latestMutex.Unlock()
			// Send full initial state on connect
			client.push(s.initialMessage(nil))

		case client := <-s.unregister:
			s.latestMutex.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				client.close()
			}
			s.latestMutex.Unlock()

		case event := <-s.broadcast:
			msg := &models.MPushMessage{Type: "UPDATE", Event: &event, Timestamp: event.Snapshot.UpdatedAt.UnixMilli()}

			s.latestMutex.Lock()
			s.latest = msg.Timestamp
			for client := range s.clients {
				if !wants(client.filter(), event.RequestID) {
					continue
				}
				if !client.push(msg) {
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					client.close()
				}
			}
			s.latestMutex.Unlock()
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues event for the hub. It never blocks the caller: when the
// queue is full the event is dropped, listeners catch up on the next one
// since every event carries a full snapshot.
func (s *MonitorServer) Broadcast(event models.MMarketDataEvent) {
	select {
	case <-s.quit:
	case s.broadcast <- event:
	default:
		s.Logger.Warning("Broadcast queue full, dropping event for request %d", event.RequestID)
	}
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) initialMessage(ids []int) *models.MPushMessage {
	all := s.State.Snapshots()
	snaps := make([]models.MMarketDataSnapshot, 0, len(all))
	for _, snap := range all {
		if wants(ids, snap.RequestID) {
			snaps = append(snaps, snap)
		}
	}
	return &models.MPushMessage{Type: "INITIAL", Snapshots: snaps, Timestamp: time.Now().UnixMilli()}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MPushMessage, 256),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *MonitorServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}
	client.setFilter(cmd.RequestIDs)

	// Answer with the snapshots of the new selection
	client.push(s.initialMessage(cmd.RequestIDs))
}
