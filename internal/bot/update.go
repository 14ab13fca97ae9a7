// Package bot turns inbound chat updates into flow events and renders the
// flow's output as chat messages.
package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/knowme/internal/store"
)

// Callback data sent by inline buttons.
const (
	CallbackCreateTest   = "create_test"
	CallbackAnswerPrefix = "answer_"
)

// User is the sender of an update.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Profile converts u to the stored user profile.
func (u User) Profile() store.User {
	return store.User{
		ID:        u.ID,
		Username:  strings.TrimPrefix(u.Username, "@"),
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// Update is one inbound event: a text message or a button press.
type Update struct {
	// ChatID defaults to the sender id, as in a private chat.
	ChatID       int64  `json:"chat_id,omitempty"`
	MessageID    int    `json:"message_id,omitempty"`
	From         User   `json:"from"`
	Text         string `json:"text,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// Chat returns the conversation id of u.
func (u Update) Chat() int64 {
	if u.ChatID != 0 {
		return u.ChatID
	}
	return u.From.ID
}

// Kind labels the update for metrics.
func (u Update) Kind() string {
	switch {
	case u.CallbackData != "":
		return "callback"
	case strings.HasPrefix(u.Text, "/"):
		return "command"
	default:
		return "text"
	}
}

// ParseCommand splits "/start@knowme_bot s_abc" into "start" and "s_abc".
// ok is false for text that is not a command.
func ParseCommand(text string) (name, arg string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// ParseAnswer extracts the option index from "answer_<i>" data. Malformed
// data yields -1, which every question rejects.
func ParseAnswer(data string) (int, bool) {
	s, ok := strings.CutPrefix(data, CallbackAnswerPrefix)
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(s)
	if err != nil {
		return -1, true
	}
	return idx, true
}

// String renders u for logs.
func (u Update) String() string {
	if u.CallbackData != "" {
		return fmt.Sprintf("callback %q from %d", u.CallbackData, u.From.ID)
	}
	return fmt.Sprintf("text %q from %d", u.Text, u.From.ID)
}
