package questions

import (
	"errors"
	"fmt"
)

// ErrEmptyBank is returned when a bank definition has no questions.
var ErrEmptyBank = errors.New("question bank is empty")

// Question is a single quiz question. The index into Options is the
// canonical answer value.
type Question struct {
	ID      string
	Text    string
	Options []string
}

// ValidOption reports whether idx addresses one of the question's options.
func (q Question) ValidOption(idx int) bool {
	return idx >= 0 && idx < len(q.Options)
}

// Option returns the option text for idx, or "" when idx is out of range.
func (q Question) Option(idx int) string {
	if !q.ValidOption(idx) {
		return ""
	}
	return q.Options[idx]
}

// Bank is the immutable ordered set of questions every test is built from.
// A Bank is safe for concurrent use because nothing mutates it after load.
type Bank struct {
	version   string
	questions []Question
	byID      map[string]int
}

// newBank builds a Bank, copying the slice so callers cannot mutate it.
func newBank(version string, qs []Question) (*Bank, error) {
	if len(qs) == 0 {
		return nil, ErrEmptyBank
	}
	b := &Bank{
		version:   version,
		questions: make([]Question, len(qs)),
		byID:      make(map[string]int, len(qs)),
	}
	for i, q := range qs {
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		opts := make([]string, len(q.Options))
		copy(opts, q.Options)
		b.questions[i] = Question{ID: q.ID, Text: q.Text, Options: opts}
		b.byID[q.ID] = i
	}
	return b, nil
}

// Count returns the number of questions.
func (b *Bank) Count() int {
	return len(b.questions)
}

// At returns the question at position idx. It panics if idx is out of
// range, like a slice index; callers check bounds against Count first.
func (b *Bank) At(idx int) Question {
	return b.questions[idx]
}

// Lookup returns the question with the given id.
func (b *Bank) Lookup(id string) (Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

// All returns a deep copy of the questions in bank order.
func (b *Bank) All() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		opts := make([]string, len(q.Options))
		copy(opts, q.Options)
		out[i] = Question{ID: q.ID, Text: q.Text, Options: opts}
	}
	return out
}

// Version returns the bank format version, or "" if the file had none.
func (b *Bank) Version() string {
	return b.version
}
