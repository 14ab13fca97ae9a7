package console

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/knowme/internal/bot"
	"github.com/abhisek/knowme/internal/outbox"
)

// echoHandler answers every update with a question keyboard and records
// what it received.
type echoHandler struct {
	box     *outbox.Outbox
	updates []bot.Update
	lastID  map[int64]int
}

func (h *echoHandler) Handle(_ context.Context, u bot.Update) error {
	h.updates = append(h.updates, u)
	c := outbox.Content{
		Text: "Question 1/2:\n\nTea or coffee?",
		Buttons: []outbox.Button{
			{Text: "Tea", Data: "answer_0"},
			{Text: "Coffee", Data: "answer_1"},
		},
	}
	if id, ok := h.lastID[u.Chat()]; ok && u.CallbackData != "" {
		c.Text = "got " + u.CallbackData
		c.Buttons = nil
		return h.box.Edit(u.Chat(), id, c)
	}
	h.lastID[u.Chat()] = h.box.Send(u.Chat(), c)
	return nil
}

func newTestModel(t *testing.T) (Model, *echoHandler) {
	t.Helper()
	box := outbox.New()
	h := &echoHandler{box: box, lastID: map[int64]int{}}
	m := New(context.Background(), h, box, bot.User{ID: 1, FirstName: "Ann"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), h
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		updated, _ := m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
		m = updated.(Model)
	}
	return m
}

// step sends msg and runs the returned command once, feeding its result
// back, the way the Bubble Tea runtime would.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			if hm, ok := out.(handledMsg); ok {
				updated, _ = m.Update(hm)
				m = updated.(Model)
			}
		}
	}
	return m
}

func TestSubmitTextSendsUpdate(t *testing.T) {
	m, h := newTestModel(t)
	m = typeText(m, "/create")
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if len(h.updates) != 1 || h.updates[0].Text != "/create" || h.updates[0].From.ID != 1 {
		t.Fatalf("updates = %+v", h.updates)
	}
	if len(m.keyboard.Buttons) != 2 {
		t.Errorf("keyboard = %+v, want the two answer buttons", m.keyboard.Buttons)
	}
	if !m.input.Empty() {
		t.Error("input should be cleared after sending")
	}
	if !strings.Contains(m.chat().render(80), "Tea or coffee?") {
		t.Error("transcript should show the question")
	}
}

func TestDigitPressesButton(t *testing.T) {
	m, h := newTestModel(t)
	m = typeText(m, "/create")
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = step(t, m, tea.KeyPressMsg{Code: '2', Text: "2"})

	if len(h.updates) != 2 || h.updates[1].CallbackData != "answer_1" {
		t.Fatalf("updates = %+v, want answer_1", h.updates)
	}
	// The edit replaced the question in place.
	bots := 0
	for _, e := range m.chat().entries {
		if e.kind == fromBot {
			bots++
			if e.msg.Text != "got answer_1" {
				t.Errorf("bot message = %q, want the edited text", e.msg.Text)
			}
		}
	}
	if bots != 1 {
		t.Errorf("bot messages = %d, want 1", bots)
	}
	if len(m.keyboard.Buttons) != 0 {
		t.Error("keyboard should be gone after the edit")
	}
}

func TestArrowAndEnterPressSelected(t *testing.T) {
	m, h := newTestModel(t)
	m = typeText(m, "/create")
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyDown})
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if len(h.updates) != 2 || h.updates[1].CallbackData != "answer_1" {
		t.Errorf("updates = %+v, want answer_1", h.updates)
	}
}

func TestSwitchIdentityShowsQueuedNotifications(t *testing.T) {
	m, _ := newTestModel(t)
	m.box.Send(2, outbox.Content{Text: "@ann took your test and scored 80%"})

	m = typeText(m, "/as 2 Bob")
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.user.ID != 2 || m.user.FirstName != "Bob" || m.user.Username != "bob" {
		t.Fatalf("user = %+v", m.user)
	}
	if !strings.Contains(m.chat().render(80), "scored 80%") {
		t.Error("notification should appear after switching")
	}
	if m.box.Pending(2) != 0 {
		t.Error("notification should be drained")
	}
}

func TestSwitchIdentityInvalid(t *testing.T) {
	m, h := newTestModel(t)
	m = typeText(m, "/as nope")
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.user.ID != 1 {
		t.Errorf("user switched to %+v", m.user)
	}
	if m.status == "" {
		t.Error("status should explain the usage")
	}
	if len(h.updates) != 0 {
		t.Error("/as must not reach the bot")
	}
}

func TestParseIdentity(t *testing.T) {
	u, err := parseIdentity(" 42 Mary Jane")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != 42 || u.FirstName != "Mary Jane" || u.Username != "mary_jane" {
		t.Errorf("parseIdentity = %+v", u)
	}
	if _, err := parseIdentity(" -1"); err == nil {
		t.Error("negative id should be rejected")
	}
	if _, err := parseIdentity(""); err == nil {
		t.Error("missing id should be rejected")
	}
}

func TestViewRenders(t *testing.T) {
	m, _ := newTestModel(t)
	v := m.View()
	if !v.AltScreen {
		t.Error("console should use the alt screen")
	}

	small, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	_ = small.(Model).View()
}
