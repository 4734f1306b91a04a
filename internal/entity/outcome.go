package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-tally/internal/apperror"
)

type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	OutcomeXWon       Outcome = "x_won"
	OutcomeOWon       Outcome = "o_won"
	OutcomeDraw       Outcome = "draw"
)

func (that Outcome) IsTerminal() bool {
	return that != OutcomeInProgress
}

// Winner - the winning mark, EmptyCell for draws and unfinished games.
func (that Outcome) Winner() Mark {
	switch that {
	case OutcomeXWon:
		return PlayerX
	case OutcomeOWon:
		return PlayerO
	default:
		return EmptyCell
	}
}

type Mode string

const (
	ModeTwoPlayer  Mode = "two_player"
	ModeVsComputer Mode = "vs_computer"
)

func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(raw); mode {
	case ModeTwoPlayer, ModeVsComputer:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownMode, raw)
	}
}

// Snapshot - read-only view of the game consumed on every render.
type Snapshot struct {
	Board            Board   `json:"board"`
	Turn             Mark    `json:"turn"`
	Outcome          Outcome `json:"outcome"`
	Winner           Mark    `json:"winner,omitempty"`
	Score            Score   `json:"score"`
	Mode             Mode    `json:"mode"`
	ComputerThinking bool    `json:"computerThinking"`
}
