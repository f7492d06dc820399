// Package live pushes a scope's dashboard view over WebSocket. Every store change
// sends the full recomputed view; clients never receive diffs.
package live

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"pharmstock/m/domain"
	"pharmstock/m/internal/viewmodel"
)

const (
	pingEvery    = 30 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 5 * time.Second
)

// Source supplies item snapshots and the projection settings of a scope.
type Source interface {
	Watch(ctx context.Context, scope domain.Scope) (<-chan []domain.Item, error)
	ViewOptions(scope domain.Scope) viewmodel.Options
	Now() time.Time
}

// Message is what the server writes to a client.
type Message struct {
	Type   string         `json:"type"`
	Scope  string         `json:"scope"`
	Search string         `json:"search"`
	View   viewmodel.View `json:"view"`
}

// Request is what a client may send: a new search term.
type Request struct {
	Search string `json:"search"`
}

type client struct {
	conn *ws.Conn
	mu   sync.Mutex
}

func (c *client) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(ws.TextMessage, data)
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(ws.PingMessage, nil, time.Now().Add(writeTimeout))
}

// Hub tracks connected viewers.
type Hub struct {
	src     Source
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a Hub serving views from src.
func NewHub(src Source) *Hub {
	return &Hub{src: src, clients: make(map[*client]struct{})}
}

// Upgrader is the default WebSocket upgrader.
var Upgrader = ws.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Count reports how many clients are connected.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	return len(h.clients)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		h.unregister(c)
	}
}

// Serve upgrades the request and streams views of scope until the client goes away.
// The view is sent on connect, after every store change and after every search request.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, scope domain.Scope) error {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	feed, err := h.src.Watch(ctx, scope)
	if err != nil {
		return err
	}
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: upgrade error: %v", err)
		return nil
	}
	c := &client{conn: conn}
	log.Printf("live: client connected to %s (%d total)", scope, h.register(c))
	defer func() {
		h.unregister(c)
		log.Printf("live: client disconnected from %s", scope)
	}()

	searches := make(chan string)
	go func() {
		defer cancel()
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readTimeout))
		})
		for {
			var req Request
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			select {
			case searches <- req.Search:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	state := viewmodel.NewState(scope)
	opts := h.src.ViewOptions(scope)
	for {
		select {
		case items, ok := <-feed:
			if !ok {
				return nil
			}
			state = state.WithItems(items)
		case term := <-searches:
			state = state.WithSearch(term)
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return nil
			}
			continue
		case <-ctx.Done():
			return nil
		}
		msg := Message{Type: "view", Scope: scope.Path(), Search: state.Search, View: state.View(h.src.Now(), opts)}
		if err := c.write(msg); err != nil {
			return nil
		}
	}
}
