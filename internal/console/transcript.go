package console

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowme/internal/outbox"
	"github.com/abhisek/knowme/internal/ui/theme"
)

type entryKind int

const (
	fromBot entryKind = iota
	fromUser
	localNotice
)

type entry struct {
	kind entryKind
	msg  outbox.Message
	text string
}

// transcript is the visible history of one chat.
type transcript struct {
	entries []entry
}

func (t *transcript) said(text string) {
	t.entries = append(t.entries, entry{kind: fromUser, text: text})
}

func (t *transcript) notice(text string) {
	t.entries = append(t.entries, entry{kind: localNotice, text: text})
}

// apply appends new messages and rewrites edited ones in place.
func (t *transcript) apply(msgs []outbox.Message) {
	for _, m := range msgs {
		if m.Edit {
			if i := t.find(m.ID); i >= 0 {
				t.entries[i].msg = m
				continue
			}
		}
		t.entries = append(t.entries, entry{kind: fromBot, msg: m})
	}
}

func (t *transcript) find(id int) int {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].kind == fromBot && t.entries[i].msg.ID == id {
			return i
		}
	}
	return -1
}

// buttons returns the keyboard of the latest bot message, which is the
// only one the user can still act on.
func (t *transcript) buttons() []outbox.Button {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].kind == fromBot {
			return t.entries[i].msg.Buttons
		}
	}
	return nil
}

func (t *transcript) render(width int) string {
	if width < 10 {
		width = 10
	}
	parts := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		switch e.kind {
		case fromBot:
			parts = append(parts, theme.BotMessage.Width(width).Render(e.msg.Text))
		case fromUser:
			parts = append(parts, lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(theme.UserMessage.Render(e.text)))
		case localNotice:
			parts = append(parts, theme.Notice.Render("· "+e.text))
		}
	}
	return strings.Join(parts, "\n")
}
