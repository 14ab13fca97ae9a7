package scoring

import "github.com/abhisek/knowme/internal/questions"

// Mark classifies one question of an attempt.
type Mark int

const (
	MarkCorrect           Mark = iota // taker matched the creator
	MarkIncorrect                     // taker chose differently
	MarkCreatorUnanswered             // creator never answered this question
)

// Symbol returns the emoji shown next to the question in reports.
func (m Mark) Symbol() string {
	switch m {
	case MarkCorrect:
		return "✅"
	case MarkIncorrect:
		return "❌"
	default:
		return "❓"
	}
}

// Comparison is the per-question detail of an attempt.
type Comparison struct {
	Question      questions.Question
	TakerChoice   int
	CreatorChoice int // -1 when the creator did not answer
	Mark          Mark
}

// TakerOption returns the text of the taker's choice.
func (c Comparison) TakerOption() string {
	return c.Question.Option(c.TakerChoice)
}

// CreatorOption returns the text of the creator's choice, or "".
func (c Comparison) CreatorOption() string {
	return c.Question.Option(c.CreatorChoice)
}

// Compare walks the bank in order and reports every question the taker
// answered, marked against the creator's key.
func Compare(bank *questions.Bank, creator, taker AnswerSet) []Comparison {
	var out []Comparison
	for i := 0; i < bank.Count(); i++ {
		q := bank.At(i)
		choice, ok := taker[q.ID]
		if !ok {
			continue
		}
		c := Comparison{Question: q, TakerChoice: choice, CreatorChoice: -1}
		want, answered := creator[q.ID]
		switch {
		case !answered:
			c.Mark = MarkCreatorUnanswered
		case want == choice:
			c.CreatorChoice = want
			c.Mark = MarkCorrect
		default:
			c.CreatorChoice = want
			c.Mark = MarkIncorrect
		}
		out = append(out, c)
	}
	return out
}
