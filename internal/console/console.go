// Package console is a terminal chat client for the bot. It talks to the
// same dispatcher as the HTTP gateway and can switch between identities so
// one person can play both creator and taker.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowme/internal/bot"
	"github.com/abhisek/knowme/internal/outbox"
	"github.com/abhisek/knowme/internal/texts"
	"github.com/abhisek/knowme/internal/ui/components"
	"github.com/abhisek/knowme/internal/ui/layout"
	"github.com/abhisek/knowme/internal/ui/theme"
)

// Handler processes one inbound update.
type Handler interface {
	Handle(ctx context.Context, u bot.Update) error
}

// handledMsg reports that an update went through the dispatcher.
type handledMsg struct {
	chatID int64
	err    error
}

// Model is the root Bubble Tea model of the console.
type Model struct {
	ctx     context.Context
	handler Handler
	box     *outbox.Outbox

	user     bot.User
	chats    map[int64]*transcript
	input    components.Input
	keyboard components.Keyboard
	busy     bool
	status   string

	width  int
	height int
}

// New creates a console chatting as user.
func New(ctx context.Context, h Handler, box *outbox.Outbox, user bot.User) Model {
	return Model{
		ctx:     ctx,
		handler: h,
		box:     box,
		user:    user,
		chats:   map[int64]*transcript{},
		input:   components.NewInput("type /start, /create, /stats ... or press a number", 200),
	}
}

func (m Model) Init() tea.Cmd {
	return m.input.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case handledMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.collect(msg.chatID)
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		if key == "enter" && !m.input.Empty() {
			return m.submit()
		}
		if m.input.Empty() && len(m.keyboard.Buttons) > 0 {
			kb, pressed := m.keyboard.Update(msg)
			m.keyboard = kb
			if pressed != nil {
				return m.press(*pressed)
			}
			if key == "up" || key == "down" {
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	m.status = ""

	if rest, ok := strings.CutPrefix(text, "/as"); ok && (rest == "" || rest[0] == ' ') {
		user, err := parseIdentity(rest)
		if err != nil {
			m.status = texts.UnknownIdentity
			return m, nil
		}
		m.user = user
		m.chat().notice(fmt.Sprintf("now chatting as %s", displayName(user)))
		m.collect(user.ID)
		return m, nil
	}

	m.chat().said(text)
	return m.send(bot.Update{From: m.user, Text: text})
}

func (m Model) press(p components.Pressed) (tea.Model, tea.Cmd) {
	if p.Button.URL != "" {
		m.chat().notice("link: " + p.Button.URL)
		return m, nil
	}
	m.chat().said("[" + p.Button.Text + "]")
	return m.send(bot.Update{From: m.user, CallbackData: p.Button.Data})
}

func (m Model) send(u bot.Update) (tea.Model, tea.Cmd) {
	m.busy = true
	ctx, h := m.ctx, m.handler
	chat := u.Chat()
	return m, func() tea.Msg {
		return handledMsg{chatID: chat, err: h.Handle(ctx, u)}
	}
}

// collect moves queued messages of chatID into its transcript and
// refreshes the keyboard when it is the active chat.
func (m *Model) collect(chatID int64) {
	t := m.chatFor(chatID)
	t.apply(m.box.Drain(chatID))
	if chatID == m.user.ID {
		m.keyboard = components.NewKeyboard(t.buttons())
	}
}

func (m *Model) chat() *transcript {
	return m.chatFor(m.user.ID)
}

func (m *Model) chatFor(id int64) *transcript {
	t, ok := m.chats[id]
	if !ok {
		t = &transcript{}
		m.chats[id] = t
	}
	return t
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	header := layout.RenderHeader(displayName(m.user), m.box.Pending(m.user.ID), m.width)

	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "/as id name", Description: "Switch user"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if len(m.keyboard.Buttons) > 0 {
		hints = append([]layout.KeyHint{{Key: "1-9 ↑↓", Description: "Answer"}}, hints...)
	}
	footer := layout.RenderFooter(hints, m.width)

	bottom := ""
	if len(m.keyboard.Buttons) > 0 {
		bottom += m.keyboard.View()
	}
	if m.status != "" {
		bottom += theme.ErrorText.Render(m.status) + "\n"
	}
	bottom += m.input.View()

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	historyHeight := contentHeight - lipgloss.Height(bottom) - 1
	history := layout.TailLines(m.chat().render(m.width-2), historyHeight)

	content := history + "\n" + bottom
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, h Handler, box *outbox.Outbox, user bot.User) error {
	p := tea.NewProgram(New(ctx, h, box, user), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// parseIdentity reads " <id> [name]" from an /as command.
func parseIdentity(s string) (bot.User, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return bot.User{}, fmt.Errorf("missing id")
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || id <= 0 {
		return bot.User{}, fmt.Errorf("invalid id %q", fields[0])
	}
	u := bot.User{ID: id}
	if len(fields) > 1 {
		name := strings.Join(fields[1:], " ")
		u.FirstName = name
		u.Username = strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	}
	return u, nil
}

func displayName(u bot.User) string {
	if u.FirstName != "" {
		return fmt.Sprintf("%s (%d)", u.FirstName, u.ID)
	}
	return strconv.FormatInt(u.ID, 10)
}
