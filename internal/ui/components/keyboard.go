package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/knowme/internal/outbox"
	"github.com/abhisek/knowme/internal/ui/theme"
)

// Keyboard shows the inline buttons of a message, numbered from 1, with a
// movable selection.
type Keyboard struct {
	Buttons  []outbox.Button
	Selected int
}

// NewKeyboard creates a keyboard for buttons.
func NewKeyboard(buttons []outbox.Button) Keyboard {
	return Keyboard{Buttons: buttons}
}

// Pressed is produced when a button is chosen.
type Pressed struct {
	Index  int
	Button outbox.Button
}

// Update moves the selection with up/down and presses with enter. Digit
// keys press the numbered button directly.
func (k Keyboard) Update(msg tea.Msg) (Keyboard, *Pressed) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(k.Buttons) == 0 {
		return k, nil
	}

	key := kmsg.String()
	switch key {
	case "up":
		if k.Selected > 0 {
			k.Selected--
		}
	case "down":
		if k.Selected < len(k.Buttons)-1 {
			k.Selected++
		}
	case "enter":
		return k, k.press(k.Selected)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			return k, k.press(int(key[0] - '1'))
		}
	}
	return k, nil
}

func (k *Keyboard) press(i int) *Pressed {
	if i < 0 || i >= len(k.Buttons) {
		return nil
	}
	k.Selected = i
	return &Pressed{Index: i, Button: k.Buttons[i]}
}

// View renders one button per row.
func (k Keyboard) View() string {
	var b strings.Builder
	for i, btn := range k.Buttons {
		prefix := "  "
		style := theme.Unselected
		if i == k.Selected {
			prefix = "▸ "
			style = theme.Selected
		}
		line := fmt.Sprintf("%s%d) %s", prefix, i+1, btn.Text)
		if btn.URL != "" {
			line += " " + theme.Link.Render(btn.URL)
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}
