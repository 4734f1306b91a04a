package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-tally/internal/entity"
)

const (
	sendBufferSize = 16
	writeWait      = 10 * time.Second
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Message
}

// Hub - fans snapshots out to every connected browser. Publish never blocks:
// a client whose queue is full is disconnected.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "ws-hub"),
		clients: make(map[string]*client),
	}
}

// Publish - queues the snapshot for every client.
func (that *Hub) Publish(snapshot entity.Snapshot) {
	message, err := stateMessage(snapshot)
	if err != nil {
		that.logger.Error("failed to encode snapshot", "error", err)
		return
	}

	var slow []string

	that.mu.RLock()
	for id, c := range that.clients {
		select {
		case c.send <- message:
		default:
			slow = append(slow, id)
		}
	}
	that.mu.RUnlock()

	for _, id := range slow {
		that.logger.Warn("client is too slow, disconnecting", "client", id)
		that.remove(id)
	}
}

func (that *Hub) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.clients)
}

// register - adds the connection and starts its writer.
func (that *Hub) register(conn *websocket.Conn) *client {
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan Message, sendBufferSize),
	}

	that.mu.Lock()
	that.clients[c.id] = c
	that.mu.Unlock()

	go that.writePump(c)

	that.logger.Info("client connected", "client", c.id)

	return c
}

// remove - idempotent; closing send stops the writer, which closes the connection.
func (that *Hub) remove(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	c, ok := that.clients[id]
	if !ok {
		return
	}

	delete(that.clients, id)
	close(c.send)

	that.logger.Info("client disconnected", "client", id)
}

// enqueue - non-blocking send to a single client.
func (that *Hub) enqueue(c *client, message Message) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if _, ok := that.clients[c.id]; !ok {
		return
	}

	select {
	case c.send <- message:
	default:
		that.logger.Warn("dropping message for slow client", "client", c.id, "action", message.Action)
	}
}

func (that *Hub) writePump(c *client) {
	log := that.logger.With("method", "writePump", "client", c.id)

	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Error("failed to set write deadline", "error", err)
			go that.remove(c.id)
			return
		}

		if err := c.conn.WriteJSON(message); err != nil {
			log.Debug("failed to write message", "error", err)
			go that.remove(c.id)
			return
		}
	}
}

func stateMessage(snapshot entity.Snapshot) (Message, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return Message{}, err
	}

	return Message{Action: ActionState, Payload: payload}, nil
}

func errorMessage(text string) Message {
	payload, _ := json.Marshal(map[string]string{"error": text})

	return Message{Action: ActionError, Payload: payload}
}
