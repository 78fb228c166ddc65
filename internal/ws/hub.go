// Package ws broadcasts squad chat events to connected clients.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Event is the wire shape pushed to clients.
type Event struct {
	Type        string    `json:"type"` // "chat", "session_confirmed", ...
	SquadID     int64     `json:"squad_id"`
	UserID      int64     `json:"user_id,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Content     string    `json:"content"`
	SentAt      time.Time `json:"sent_at"`
}

// Hub tracks connected clients per squad and fans events out to them.
type Hub struct {
	log *zap.SugaredLogger

	register   chan *Client
	unregister chan *Client
	broadcast  chan Event

	// squad id -> connected clients
	squads map[int64]map[*Client]bool
	mu     sync.RWMutex
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:        log,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 64),
		squads:     make(map[int64]map[*Client]bool),
	}
}

// Run owns the client set. Call once, on its own goroutine; it returns
// when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.squads[c.squadID] == nil {
				h.squads[c.squadID] = make(map[*Client]bool)
			}
			h.squads[c.squadID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.squads[c.squadID]; ok {
				if clients[c] {
					delete(clients, c)
					close(c.send)
					if len(clients) == 0 {
						delete(h.squads, c.squadID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				h.log.Errorw("encode ws event", "error", err)
				continue
			}
			h.mu.RLock()
			for c := range h.squads[event.SquadID] {
				select {
				case c.send <- payload:
				default:
					// Slow client; drop the event rather than block the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues an event for every client in the squad.
func (h *Hub) Broadcast(event Event) {
	h.broadcast <- event
}

// Client is one websocket connection scoped to a squad.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	squadID int64
	userID  int64
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin checking is the reverse proxy's job here
	},
}

// Serve upgrades the connection and pumps messages until it closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, squadID, userID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		squadID: squadID,
		userID:  userID,
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
	return nil
}

// readPump discards inbound frames (chat posts go over HTTP) but keeps the
// connection's read side alive for pings and close handling.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
