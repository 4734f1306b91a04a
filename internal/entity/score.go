package entity

type Score struct {
	XWins int `json:"xWins"`
	OWins int `json:"oWins"`
	Draws int `json:"draws"`
}

// IsValid - counters are never negative.
func (that Score) IsValid() bool {
	return that.XWins >= 0 && that.OWins >= 0 && that.Draws >= 0
}

// Record - returns the score with the field matching a terminal outcome incremented.
func (that Score) Record(outcome Outcome) Score {
	switch outcome {
	case OutcomeXWon:
		that.XWins++
	case OutcomeOWon:
		that.OWins++
	case OutcomeDraw:
		that.Draws++
	}

	return that
}
