package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/filler-arbiter/internal/engine"
	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
)

const (
	sendBuffer    = 32
	idlePing      = 30 * time.Second
	writeDeadline = 10 * time.Second
)

const (
	MessageHello = "hello"
	MessageTurn  = "turn"
	MessagePing  = "ping"
)

// Message is the envelope of everything sent to spectators.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TurnPayload describes one played turn and the plateau right after it.
type TurnPayload struct {
	Move    int               `json:"move"`
	Turn    entity.TurnRecord `json:"turn"`
	Plateau string            `json:"plateau"`
	Scores  []entity.Score    `json:"scores"`
}

type client struct {
	send chan []byte
}

// Hub streams turns to websocket spectators. It is an engine.Observer.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[*client]struct{}
	lastTurn []byte
}

// NewHub - allowedOrigins lists the Origin headers accepted besides the server's own;
// "*" accepts any origin.
func NewHub(logger *slog.Logger, allowedOrigins []string) *Hub {
	return &Hub{
		logger: logger.With("component", "spectators"),
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(allowedOrigins),
		},
		clients: make(map[*client]struct{}),
	}
}

// checkOrigin returns nil when nothing extra is allowed, which makes gorilla enforce
// same-origin requests.
func checkOrigin(allowedOrigins []string) func(*http.Request) bool {
	if len(allowedOrigins) == 0 {
		return nil
	}

	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.ToLower(strings.TrimRight(origin, "/"))] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}

		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
}

// OnMove renders the turn while the engine is paused between turns and broadcasts it.
func (that *Hub) OnMove(match *engine.Engine, response entity.PlayerResponse) {
	payload, err := json.Marshal(TurnPayload{
		Move:    match.Moves(),
		Turn:    response.Record(),
		Plateau: match.Plateau().String(),
		Scores:  match.PlacementCounts(),
	})
	if err != nil {
		that.logger.Error("failed to marshal turn", "error", err)
		return
	}

	data, err := json.Marshal(Message{Type: MessageTurn, Payload: payload})
	if err != nil {
		that.logger.Error("failed to marshal message", "error", err)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.lastTurn = data
	for c := range that.clients {
		c.push(data)
	}
}

// Clients - number of connected spectators.
func (that *Hub) Clients() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.clients)
}

func (that *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{send: make(chan []byte, sendBuffer)}
	that.register(c)

	go func() {
		defer conn.Close()
		if err := writeWithHeartbeat(conn, c.send); err != nil {
			log.Debug("spectator writer stopped", "error", err)
		}
	}()

	// spectators never send anything meaningful; reading only detects the disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			that.unregister(c)
			return
		}
	}
}

func (that *Hub) register(c *client) {
	hello := mustMarshal(Message{Type: MessageHello})

	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[c] = struct{}{}
	c.push(hello)
	if that.lastTurn != nil {
		c.push(that.lastTurn)
	}
}

func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.clients[c]; ok {
		delete(that.clients, c)
		close(c.send)
	}
}

// push drops the message when the spectator is too slow.
func (that *client) push(data []byte) {
	select {
	case that.send <- data:
	default:
	}
}

func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(idlePing)
	defer ticker.Stop()

	lastWrite := time.Now()
	ping := mustMarshal(Message{Type: MessagePing})

	write := func(data []byte) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
			return err
		}
		lastWrite = time.Now()
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	for {
		select {
		case data, ok := <-send:
			if !ok {
				return nil
			}
			if err := write(data); err != nil {
				return err
			}
		case <-ticker.C:
			if time.Since(lastWrite) < idlePing {
				continue
			}
			if err := write(ping); err != nil {
				return err
			}
		}
	}
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
