package tictactoe

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/tictactoe-tally/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tally/internal/entity"
)

// ScoreStore - persistence collaborator. Load never fails: missing or corrupt records yield the zero score.
type ScoreStore interface {
	Load(ctx context.Context) entity.Score
	Save(ctx context.Context, score entity.Score)
}

// GameController - state machine of a single tic-tac-toe table and its tally.
// It is not safe for concurrent use; callers serialize access.
type GameController struct {
	board    entity.Board
	turn     entity.Mark
	mode     entity.Mode
	outcome  entity.Outcome
	score    entity.Score
	thinking bool

	// generation is bumped by every reset so pending computer turns can detect staleness.
	generation uint64

	scores ScoreStore
	rnd    *rand.Rand
}

type Option func(*GameController)

// WithRand - overrides the source used to pick computer moves.
func WithRand(rnd *rand.Rand) Option {
	return func(that *GameController) {
		that.rnd = rnd
	}
}

func WithMode(mode entity.Mode) Option {
	return func(that *GameController) {
		that.mode = mode
	}
}

// NewGameController - creates a controller with an empty board, X to move, and the persisted score loaded.
func NewGameController(ctx context.Context, scores ScoreStore, opts ...Option) *GameController {
	controller := &GameController{
		mode:   entity.ModeTwoPlayer,
		scores: scores,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())), //nolint: gosec // it's ok
	}

	for _, opt := range opts {
		opt(controller)
	}

	controller.Reset()
	controller.score = scores.Load(ctx)

	return controller
}

// PlaceMove - places a human mark. In vs-computer mode only the human seat may call it.
func (that *GameController) PlaceMove(ctx context.Context, cell int, player entity.Mark) error {
	if that.mode == entity.ModeVsComputer && player != entity.HumanMark {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidMove, apperror.ErrNotYourTurn)
	}

	return that.place(ctx, cell, player)
}

// ComputerMove - places the computer's mark on a uniformly random empty cell.
func (that *GameController) ComputerMove(ctx context.Context) error {
	availableCells := that.board.EmptyCells()
	if len(availableCells) == 0 {
		return apperror.ErrNoLegalMove
	}

	chosenCell := availableCells[that.rnd.Intn(len(availableCells))]

	if err := that.place(ctx, chosenCell, entity.ComputerMark); err != nil {
		return fmt.Errorf("computer failed to make turn: %w", err)
	}

	return nil
}

func (that *GameController) place(ctx context.Context, cell int, player entity.Mark) error {
	if err := that.validateMove(cell, player); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
	}

	that.board[cell] = player
	that.turn = player.Opponent()

	that.updateGameStatus(ctx)

	return nil
}

// validateMove - checks if the move is valid.
func (that *GameController) validateMove(cell int, player entity.Mark) error {
	if that.outcome.IsTerminal() {
		return apperror.ErrGameFinished
	}

	if !entity.IsValidCell(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.turn != player {
		return apperror.ErrNotYourTurn
	}

	if that.board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateGameStatus - recomputes the outcome and records a finished game in the tally.
func (that *GameController) updateGameStatus(ctx context.Context) {
	that.outcome = entity.DetermineOutcome(that.board)
	if !that.outcome.IsTerminal() {
		return
	}

	that.thinking = false
	that.score = that.score.Record(that.outcome)
	that.scores.Save(ctx, that.score)
}

// Reset - clears the board and hands the first move to X. The score is kept.
func (that *GameController) Reset() {
	that.board = entity.Board{}
	that.turn = entity.PlayerX
	that.outcome = entity.OutcomeInProgress
	that.thinking = false
	that.generation++
}

// SetMode - switches mode; the current board is discarded.
func (that *GameController) SetMode(mode entity.Mode) {
	that.mode = mode
	that.Reset()
}

func (that *GameController) ResetScore(ctx context.Context) {
	that.score = entity.Score{}
	that.scores.Save(ctx, that.score)
}

func (that *GameController) Outcome() entity.Outcome {
	return that.outcome
}

func (that *GameController) Snapshot() entity.Snapshot {
	return entity.Snapshot{
		Board:            that.board,
		Turn:             that.turn,
		Outcome:          that.outcome,
		Winner:           that.outcome.Winner(),
		Score:            that.score,
		Mode:             that.mode,
		ComputerThinking: that.thinking,
	}
}
