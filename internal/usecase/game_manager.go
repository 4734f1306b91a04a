package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-tally/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tally/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tally/internal/tictactoe"
)

type gameController interface {
	PlaceMove(ctx context.Context, cell int, player entity.Mark) error
	Reset()
	SetMode(mode entity.Mode)
	ResetScore(ctx context.Context)
	Snapshot() entity.Snapshot

	BeginComputerTurn() (tictactoe.Ticket, error)
	FinishComputerTurn(ctx context.Context, ticket tictactoe.Ticket) error
}

// Scheduler - runs f once after d on its own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Notifier - receives every snapshot produced by a state change.
type Notifier interface {
	Publish(snapshot entity.Snapshot)
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// NewTimerScheduler - Scheduler backed by time.AfterFunc.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

// GameManager - serializes every intent against a single game controller.
// Holding mu for the whole intent gives the same atomicity as a single-threaded event loop.
type GameManager struct {
	logger *slog.Logger

	mu         sync.Mutex
	controller gameController

	scheduler     Scheduler
	computerDelay time.Duration
	notifier      Notifier
}

func NewGameManager(logger *slog.Logger, controller gameController, scheduler Scheduler, computerDelay time.Duration, notifier Notifier) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game-manager"),

		controller:    controller,
		scheduler:     scheduler,
		computerDelay: computerDelay,
		notifier:      notifier,
	}
}

func (that *GameManager) State() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.controller.Snapshot()
}

// Subscribe - hands the current snapshot to register while no intent can run,
// so a subscriber attached inside register never sees an older snapshot after a newer one.
func (that *GameManager) Subscribe(register func(snapshot entity.Snapshot)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	register(that.controller.Snapshot())
}

// ClickCell - places the mark whose turn it is. Rejected clicks leave the table as it was.
func (that *GameManager) ClickCell(ctx context.Context, cell int) entity.Snapshot {
	log := that.logger.With("method", "ClickCell", "cell", cell)

	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.controller.Snapshot().Turn
	if err := that.controller.PlaceMove(ctx, cell, player); err != nil {
		log.Debug("click ignored", "player", player, "error", err)
		return that.controller.Snapshot()
	}

	that.scheduleComputerTurn()

	return that.logOutcome(that.publish())
}

func (that *GameManager) ResetBoard() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.controller.Reset()

	return that.publish()
}

func (that *GameManager) SetMode(mode entity.Mode) entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.controller.SetMode(mode)
	that.logger.Info("mode changed", "mode", mode)

	return that.publish()
}

func (that *GameManager) ResetScore(ctx context.Context) entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.controller.ResetScore(ctx)
	that.logger.Info("score reset")

	return that.publish()
}

// scheduleComputerTurn - must be called with mu held.
func (that *GameManager) scheduleComputerTurn() {
	ticket, err := that.controller.BeginComputerTurn()
	if err != nil {
		return
	}

	that.scheduler.AfterFunc(that.computerDelay, func() {
		that.finishComputerTurn(ticket)
	})
}

func (that *GameManager) finishComputerTurn(ticket tictactoe.Ticket) {
	log := that.logger.With("method", "finishComputerTurn")

	that.mu.Lock()
	defer that.mu.Unlock()

	err := that.controller.FinishComputerTurn(context.Background(), ticket)
	switch {
	case errors.Is(err, apperror.ErrStaleComputerTurn):
		log.Debug("computer turn aborted", "error", err)
		return
	case err != nil:
		log.Warn("computer turn failed", "error", err)
	}

	that.logOutcome(that.publish())
}

// publish - must be called with mu held.
func (that *GameManager) publish() entity.Snapshot {
	snapshot := that.controller.Snapshot()

	if that.notifier != nil {
		that.notifier.Publish(snapshot)
	}

	return snapshot
}

func (that *GameManager) logOutcome(snapshot entity.Snapshot) entity.Snapshot {
	if snapshot.Outcome.IsTerminal() {
		that.logger.Info("game finished", "outcome", snapshot.Outcome, "score", snapshot.Score)
	}

	return snapshot
}
