package entity

type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

// HumanMark and ComputerMark are fixed seats in vs-computer mode.
const (
	HumanMark    = PlayerX
	ComputerMark = PlayerO
)

const BoardSize = 9

var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board - 3x3 grid stored row-major.
type Board [BoardSize]Mark

// Opponent - returns the mark that moves after that one.
func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Winner - returns the mark owning a complete line, or EmptyCell if there is none.
func (that Board) Winner() Mark {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// EmptyCells - indices of every empty cell in ascending order.
func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

func IsValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}

// DetermineOutcome - classifies the board. A win takes precedence over a full board.
func DetermineOutcome(board Board) Outcome {
	switch board.Winner() {
	case PlayerX:
		return OutcomeXWon
	case PlayerO:
		return OutcomeOWon
	}

	// the game will continue until all the squares are full
	if board.IsFull() {
		return OutcomeDraw
	}

	return OutcomeInProgress
}
