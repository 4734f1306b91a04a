package rest

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-tally/internal/entity"
)

//go:embed static/index.html
var indexPage []byte

type uGame interface {
	State() entity.Snapshot
	ClickCell(ctx context.Context, cell int) entity.Snapshot
	ResetBoard() entity.Snapshot
	SetMode(mode entity.Mode) entity.Snapshot
	ResetScore(ctx context.Context) entity.Snapshot
}

type Handlers interface {
	Index(w http.ResponseWriter, r *http.Request)

	GetState(w http.ResponseWriter, r *http.Request)
	ClickCell(w http.ResponseWriter, r *http.Request)
	ResetBoard(w http.ResponseWriter, r *http.Request)
	ResetScore(w http.ResponseWriter, r *http.Request)
	SetMode(w http.ResponseWriter, r *http.Request)
}

type handlers struct {
	logger *slog.Logger
	uGame  uGame
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandlers(logger *slog.Logger, uGame uGame) Handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		uGame:  uGame,
	}
}

func (that *handlers) Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(indexPage); err != nil {
		that.logger.Debug("failed to write index page", "error", err)
	}
}

func (that *handlers) GetState(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.uGame.State())
}

// ClickCell - every well-formed click answers 200 with the current snapshot, accepted or not.
func (that *handlers) ClickCell(w http.ResponseWriter, r *http.Request) {
	cell, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cell index must be an integer"})
		return
	}

	that.writeJSON(w, http.StatusOK, that.uGame.ClickCell(r.Context(), cell))
}

func (that *handlers) ResetBoard(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.uGame.ResetBoard())
}

func (that *handlers) ResetScore(w http.ResponseWriter, r *http.Request) {
	that.writeJSON(w, http.StatusOK, that.uGame.ResetScore(r.Context()))
}

func (that *handlers) SetMode(w http.ResponseWriter, r *http.Request) {
	var request modeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	mode, err := entity.ParseMode(request.Mode)
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	that.writeJSON(w, http.StatusOK, that.uGame.SetMode(mode))
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
