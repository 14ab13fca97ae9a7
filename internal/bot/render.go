package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/knowme/internal/flow"
	"github.com/abhisek/knowme/internal/outbox"
	"github.com/abhisek/knowme/internal/texts"
)

// Renderer delivers flow output through an outbox. It implements
// flow.Outbound.
type Renderer struct {
	box *outbox.Outbox
}

var _ flow.Outbound = (*Renderer)(nil)

// NewRenderer returns a Renderer writing to box.
func NewRenderer(box *outbox.Outbox) *Renderer {
	return &Renderer{box: box}
}

// OptionButtons builds one answer button per option.
func OptionButtons(options []string) []outbox.Button {
	buttons := make([]outbox.Button, len(options))
	for i, opt := range options {
		buttons[i] = outbox.Button{Text: opt, Data: fmt.Sprintf("%s%d", CallbackAnswerPrefix, i)}
	}
	return buttons
}

func (r *Renderer) RenderQuestion(_ context.Context, chatID int64, p flow.Prompt) (int, error) {
	c := outbox.Content{
		Text:    texts.Question(p.Current, p.Total, p.Text),
		Buttons: OptionButtons(p.Options),
	}
	return r.editOrSend(chatID, p.EditMessageID, c)
}

func (r *Renderer) RenderCompletion(_ context.Context, chatID int64, c flow.Completion) error {
	content := outbox.Content{Text: c.Text}
	if c.ShareLink != "" {
		content.Buttons = []outbox.Button{{Text: texts.ShareButton, URL: c.ShareLink}}
	}
	_, err := r.editOrSend(chatID, c.EditMessageID, content)
	return err
}

func (r *Renderer) RenderError(_ context.Context, chatID int64, editID int, text string) error {
	_, err := r.editOrSend(chatID, editID, outbox.Content{Text: text})
	return err
}

func (r *Renderer) Say(_ context.Context, chatID int64, text string) error {
	r.box.Send(chatID, outbox.Content{Text: text})
	return nil
}

func (r *Renderer) Notify(_ context.Context, recipientID int64, text string) error {
	r.box.Send(recipientID, outbox.Content{Text: text})
	return nil
}

// Send queues arbitrary content, such as the welcome keyboard.
func (r *Renderer) Send(chatID int64, c outbox.Content) int {
	return r.box.Send(chatID, c)
}

func (r *Renderer) editOrSend(chatID int64, editID int, c outbox.Content) (int, error) {
	if editID != 0 {
		err := r.box.Edit(chatID, editID, c)
		if err == nil {
			return editID, nil
		}
		if !errors.Is(err, outbox.ErrUnknownMessage) {
			return 0, err
		}
	}
	return r.box.Send(chatID, c), nil
}
