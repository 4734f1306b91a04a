package tictactoe

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-tally/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tally/internal/entity"
)

// Ticket - guard for a delayed computer reply. It records the state the reply was scheduled against.
type Ticket struct {
	generation uint64
	board      entity.Board
}

// IsComputerTurnDue - vs-computer game in progress, O to move, nothing pending.
func (that *GameController) IsComputerTurnDue() bool {
	return that.mode == entity.ModeVsComputer &&
		!that.outcome.IsTerminal() &&
		that.turn == entity.ComputerMark &&
		!that.thinking
}

// BeginComputerTurn - raises the thinking flag and returns the ticket FinishComputerTurn must present.
func (that *GameController) BeginComputerTurn() (Ticket, error) {
	if !that.IsComputerTurnDue() {
		return Ticket{}, apperror.ErrComputerTurnNotDue
	}

	that.thinking = true

	return Ticket{generation: that.generation, board: that.board}, nil
}

// FinishComputerTurn - re-validates the table against the ticket and, if nothing changed, plays the computer's move.
func (that *GameController) FinishComputerTurn(ctx context.Context, ticket Ticket) error {
	if ticket.generation != that.generation || ticket.board != that.board {
		return fmt.Errorf("%w: table changed while computer was thinking", apperror.ErrStaleComputerTurn)
	}

	that.thinking = false

	if that.mode != entity.ModeVsComputer || that.outcome.IsTerminal() || that.turn != entity.ComputerMark {
		return apperror.ErrStaleComputerTurn
	}

	if err := that.ComputerMove(ctx); err != nil {
		return fmt.Errorf("failed to finish computer turn: %w", err)
	}

	return nil
}
