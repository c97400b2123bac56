package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/emberduel/ember-server-go/internal/game"
	"github.com/emberduel/ember-server-go/internal/game/counters"
	"github.com/emberduel/ember-server-go/internal/game/rules"
	"github.com/emberduel/ember-server-go/internal/game/targeting"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SyncMessage is the wire envelope pushed to connected clients.
type SyncMessage struct {
	Type     string `json:"type"`
	PlayerID int    `json:"player_id,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// upgradeNotice announces a completed card replacement.
type upgradeNotice struct {
	BaseDefID     int    `json:"base_def_id"`
	UpgradedDefID int    `json:"upgraded_def_id"`
	InstanceID    string `json:"instance_id,omitempty"`
}

// Client is one websocket connection.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans broadcast messages out to every connected client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *zap.Logger
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run drives the hub loop until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("sync client connected", zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("sync client disconnected", zap.Int("clients", len(h.clients)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast queues a message for every connected client.
func (h *Hub) Broadcast(msg SyncMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("marshal sync message", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("sync broadcast queue full, message dropped", zap.String("type", msg.Type))
	}
}

func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.conn.Close()
	}()
	// Clients only listen; drain messages to keep control frames flowing.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
}

// SyncServer pushes upgrade progress to clients as fights run.
type SyncServer struct {
	hub    *Hub
	srv    *http.Server
	logger *zap.Logger

	mu      sync.Mutex
	handles map[*game.Fight][]int
}

// NewSyncServer creates the server listening on addr.
func NewSyncServer(addr string, logger *zap.Logger) *SyncServer {
	hub := NewHub(logger)
	mux := http.NewServeMux()
	s := &SyncServer{
		hub:     hub,
		logger:  logger,
		handles: make(map[*game.Fight][]int),
	}
	mux.HandleFunc("/ws", s.serveWS)
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *SyncServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, 256)}
	s.hub.register <- client
	go client.writePump()
	go client.readPump(s.hub)
}

// Watch subscribes to a fight's events and relays upgrade progress.
func (s *SyncServer) Watch(fight *game.Fight) {
	bus := fight.Bus()
	var handles []int

	handles = append(handles, bus.SubscribeTyped(rules.EventCardUpgraded, func(evt rules.Event) {
		s.hub.Broadcast(SyncMessage{
			Type:     "card_upgraded",
			PlayerID: evt.SourceID,
			Data: upgradeNotice{
				BaseDefID:     evt.CardDefID,
				UpgradedDefID: evt.UpgradeDefID,
				InstanceID:    evt.InstanceID,
			},
		})
	}))

	handles = append(handles, bus.SubscribeTyped(rules.EventFightEnded, func(rules.Event) {
		for _, id := range fight.EntityIDs() {
			e := fight.Entity(id)
			if e == nil || e.Side != targeting.SidePlayer {
				continue
			}
			s.PushCounters(id, fight.Store().LifetimeSnapshot(id))
		}
	}))

	s.mu.Lock()
	s.handles[fight] = handles
	s.mu.Unlock()
}

// Unwatch removes the fight's subscriptions.
func (s *SyncServer) Unwatch(fight *game.Fight) {
	s.mu.Lock()
	handles := s.handles[fight]
	delete(s.handles, fight)
	s.mu.Unlock()
	for _, h := range handles {
		fight.Bus().Unsubscribe(h)
	}
}

// PushCounters broadcasts a player's lifetime counter snapshot.
func (s *SyncServer) PushCounters(playerID int, snap counters.Snapshot) {
	s.hub.Broadcast(SyncMessage{
		Type:     "counters",
		PlayerID: playerID,
		Data:     snap,
	})
}

// Run starts the hub and listens until the context is cancelled or the
// listener fails.
func (s *SyncServer) Run(ctx context.Context) error {
	go s.hub.Run(ctx)
	s.logger.Info("sync server listening", zap.String("address", s.srv.Addr))
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown closes the listener gracefully.
func (s *SyncServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
