package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-tally/internal/entity"
)

const (
	ActionState = "game:state"
	ActionError = "error"

	ActionTurn       = "game:turn"
	ActionReset      = "game:reset"
	ActionMode       = "game:mode"
	ActionResetScore = "score:reset"
)

const maxMessageSize = 1024

var ErrUnknownAction = errors.New("unknown action")

type uGame interface {
	Subscribe(register func(snapshot entity.Snapshot))

	ClickCell(ctx context.Context, cell int) entity.Snapshot
	ResetBoard() entity.Snapshot
	SetMode(mode entity.Mode) entity.Snapshot
	ResetScore(ctx context.Context) entity.Snapshot
}

type turnPayload struct {
	Cell *int `json:"cell"`
}

type modePayload struct {
	Mode string `json:"mode"`
}

type Server struct {
	logger   *slog.Logger
	hub      *Hub
	uGame    uGame
	upgrader websocket.Upgrader

	handlers map[string]func(ctx context.Context, message *Message) error
}

func New(logger *slog.Logger, hub *Hub, uGame uGame) *Server {
	server := &Server{
		logger: logger.With("component", "ws-server"),
		hub:    hub,
		uGame:  uGame,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},

		handlers: make(map[string]func(context.Context, *Message) error),
	}

	server.handlers[ActionTurn] = server.handleTurn
	server.handlers[ActionReset] = server.handleReset
	server.handlers[ActionMode] = server.handleMode
	server.handlers[ActionResetScore] = server.handleResetScore

	return server
}

// ServeHTTP - upgrades the connection, sends the current snapshot and then every published one.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	var c *client
	that.uGame.Subscribe(func(snapshot entity.Snapshot) {
		c = that.hub.register(conn)

		message, err := stateMessage(snapshot)
		if err != nil {
			log.Error("failed to encode snapshot", "error", err)
			return
		}
		that.hub.enqueue(c, message)
	})

	defer that.hub.remove(c.id)

	if err = that.handleMessages(req.Context(), c); err != nil {
		log.Debug("connection closed", "client", c.id, "error", err)
	}
}

// handleMessages - processes messages from the client until the connection fails.
func (that *Server) handleMessages(ctx context.Context, c *client) error {
	c.conn.SetReadLimit(maxMessageSize)

	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			return fmt.Errorf("error reading message: %w", err)
		}

		if err := that.dispatch(ctx, &message); err != nil {
			that.logger.Debug("rejected message", "client", c.id, "action", message.Action, "error", err)
			that.hub.enqueue(c, errorMessage(err.Error()))
		}
	}
}

func (that *Server) dispatch(ctx context.Context, message *Message) error {
	handler, ok := that.handlers[message.Action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, message.Action)
	}

	return handler(ctx, message)
}

func (that *Server) handleTurn(ctx context.Context, message *Message) error {
	var payload turnPayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return fmt.Errorf("invalid turn payload: %w", err)
	}

	if payload.Cell == nil {
		return errors.New("turn payload has no cell")
	}

	that.uGame.ClickCell(ctx, *payload.Cell)

	return nil
}

func (that *Server) handleReset(_ context.Context, _ *Message) error {
	that.uGame.ResetBoard()

	return nil
}

func (that *Server) handleMode(_ context.Context, message *Message) error {
	var payload modePayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return fmt.Errorf("invalid mode payload: %w", err)
	}

	mode, err := entity.ParseMode(payload.Mode)
	if err != nil {
		return err
	}

	that.uGame.SetMode(mode)

	return nil
}

func (that *Server) handleResetScore(ctx context.Context, _ *Message) error {
	that.uGame.ResetScore(ctx)

	return nil
}
