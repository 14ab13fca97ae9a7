// Package outbox queues outgoing chat messages until a transport picks
// them up. It stands in for a messenger API: every chat has its own
// increasing message ids and delivered messages can be edited later.
package outbox

import (
	"errors"
	"sync"
)

// ErrUnknownMessage is returned by Edit for an id never issued in the chat.
var ErrUnknownMessage = errors.New("unknown message")

// Button is an inline keyboard button. Data buttons send a callback,
// URL buttons open a link.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Content is the visible part of a message.
type Content struct {
	Text    string   `json:"text"`
	Buttons []Button `json:"buttons,omitempty"`
}

// Message is a pending delivery. Edit marks an update of a message the
// transport already delivered under the same ID.
type Message struct {
	ID   int  `json:"id"`
	Edit bool `json:"edit,omitempty"`
	Content
}

// Outbox holds pending messages per chat.
type Outbox struct {
	mu      sync.Mutex
	lastID  map[int64]int
	pending map[int64][]Message
}

// New returns an empty Outbox.
func New() *Outbox {
	return &Outbox{
		lastID:  make(map[int64]int),
		pending: make(map[int64][]Message),
	}
}

// Send queues a new message and returns its id.
func (o *Outbox) Send(chatID int64, c Content) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastID[chatID]++
	id := o.lastID[chatID]
	o.pending[chatID] = append(o.pending[chatID], Message{ID: id, Content: clone(c)})
	return id
}

// Edit replaces the content of message id. A still-pending message is
// rewritten in place; otherwise an edit is queued.
func (o *Outbox) Edit(chatID int64, id int, c Content) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if id <= 0 || id > o.lastID[chatID] {
		return ErrUnknownMessage
	}
	queue := o.pending[chatID]
	for i := range queue {
		if queue[i].ID == id {
			queue[i].Content = clone(c)
			return nil
		}
	}
	o.pending[chatID] = append(queue, Message{ID: id, Edit: true, Content: clone(c)})
	return nil
}

// Drain removes and returns the chat's pending messages in queue order.
func (o *Outbox) Drain(chatID int64) []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.pending[chatID]
	delete(o.pending, chatID)
	if out == nil {
		return []Message{}
	}
	return out
}

// Pending reports how many messages wait for chatID.
func (o *Outbox) Pending(chatID int64) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending[chatID])
}

func clone(c Content) Content {
	if c.Buttons != nil {
		c.Buttons = append([]Button(nil), c.Buttons...)
	}
	return c
}
