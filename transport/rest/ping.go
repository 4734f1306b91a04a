package rest

import (
	"log/slog"
	"net/http"
)

type PingHandler interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)
}

type pingHandler struct {
	logger *slog.Logger
}

// NewPingHandler - liveness probe; it does not touch the score storage.
func NewPingHandler(logger *slog.Logger) PingHandler {
	return &pingHandler{logger: logger.With("component", "ping")}
}

func (that *pingHandler) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Debug("failed to write pong", "error", err)
	}
}
