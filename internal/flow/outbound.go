package flow

import (
	"context"

	"github.com/abhisek/knowme/internal/scoring"
	"github.com/abhisek/knowme/internal/texts"
)

// Prompt is a question ready to show. A non-zero EditMessageID asks the
// transport to replace that message instead of sending a new one.
type Prompt struct {
	EditMessageID int
	Current       int // 1-based
	Total         int
	Text          string
	Options       []string
}

// Completion closes a flow. ShareLink is set when a test was created.
type Completion struct {
	EditMessageID int
	Text          string
	ShareLink     string
}

// Outbound delivers what the flow has to say.
type Outbound interface {
	// RenderQuestion shows p and returns the id of the message holding it.
	// When the edit is impossible a new message is sent instead.
	RenderQuestion(ctx context.Context, chatID int64, p Prompt) (int, error)

	RenderCompletion(ctx context.Context, chatID int64, c Completion) error

	// RenderError replaces message editID with text, or sends text when
	// editID is zero or cannot be edited.
	RenderError(ctx context.Context, chatID int64, editID int, text string) error

	// Say sends a plain message.
	Say(ctx context.Context, chatID int64, text string) error

	// Notify sends text to a user other than the one in the conversation.
	Notify(ctx context.Context, recipientID int64, text string) error
}

// Details turns a comparison into notification line items.
func Details(cmp []scoring.Comparison) []texts.Detail {
	out := make([]texts.Detail, 0, len(cmp))
	for _, c := range cmp {
		out = append(out, texts.Detail{
			Symbol:        c.Mark.Symbol(),
			Question:      c.Question.Text,
			Selected:      c.TakerOption(),
			Correct:       c.CreatorOption(),
			ShowCorrect:   c.Mark == scoring.MarkIncorrect,
			CreatorMissed: c.Mark == scoring.MarkCreatorUnanswered,
		})
	}
	return out
}
