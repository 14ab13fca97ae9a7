// Package scoring compares a taker's answers against a creator's answer key
// and classifies the resulting percentage into a status label.
package scoring

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoCreatorAnswers is returned when the answer key is empty, which
	// leaves the percentage undefined.
	ErrNoCreatorAnswers = errors.New("creator answer set is empty")

	// ErrClassificationGap is returned when no configured range contains a
	// percentage. It always indicates a misconfigured range table.
	ErrClassificationGap = errors.New("percentage not covered by any status range")
)

// AnswerSet maps a question id to the chosen option index.
type AnswerSet map[string]int

// Clone returns an independent copy of a.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Outcome is the result of scoring one attempt.
type Outcome struct {
	Matches    int
	Total      int
	Percentage int
	Status     string
}

// Engine scores attempts against a fixed status table.
type Engine struct {
	ranges Ranges
}

// NewEngine validates ranges and returns an Engine using them.
func NewEngine(ranges Ranges) (*Engine, error) {
	if err := ranges.Validate(); err != nil {
		return nil, fmt.Errorf("status ranges: %w", err)
	}
	cp := make(Ranges, len(ranges))
	copy(cp, ranges)
	return &Engine{ranges: cp}, nil
}

// Ranges returns a copy of the engine's status table.
func (e *Engine) Ranges() Ranges {
	cp := make(Ranges, len(e.ranges))
	copy(cp, e.ranges)
	return cp
}

// Score computes the match percentage of taker against creator and its
// status. Questions absent from creator do not count toward the total.
func (e *Engine) Score(creator, taker AnswerSet) (Outcome, error) {
	matches := CountMatches(creator, taker)
	pct, err := Percentage(matches, len(creator))
	if err != nil {
		return Outcome{}, err
	}
	status, err := e.ranges.Classify(pct)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Matches:    matches,
		Total:      len(creator),
		Percentage: pct,
		Status:     status,
	}, nil
}

// Classify maps a percentage to its status label.
func (e *Engine) Classify(pct int) (string, error) {
	return e.ranges.Classify(pct)
}

// CountMatches counts creator questions the taker answered identically.
func CountMatches(creator, taker AnswerSet) int {
	matches := 0
	for id, want := range creator {
		if got, ok := taker[id]; ok && got == want {
			matches++
		}
	}
	return matches
}

// Percentage returns round(100*matches/total) using Round.
func Percentage(matches, total int) (int, error) {
	if total <= 0 {
		return 0, ErrNoCreatorAnswers
	}
	if matches < 0 || matches > total {
		return 0, fmt.Errorf("matches %d outside [0, %d]", matches, total)
	}
	return Round(100 * float64(matches) / float64(total)), nil
}

// Round rounds half to even: 12.5 → 12, 37.5 → 38. Every percentage and
// average in the system goes through this function.
func Round(x float64) int {
	return int(math.RoundToEven(x))
}
