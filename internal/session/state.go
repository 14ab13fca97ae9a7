// Package session holds the transient per-conversation progress of a
// creating or taking flow and the stores that keep it between events.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/knowme/internal/scoring"
)

// ErrUnknownBackend is returned by New for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown session backend")

// Mode distinguishes the two flows that share one session shape.
type Mode string

const (
	ModeCreating Mode = "creating" // answering questions about yourself
	ModeTaking   Mode = "taking"   // guessing someone else's answers
)

// Session is the state of one in-progress flow in one conversation.
type Session struct {
	// FlowID correlates log lines of one flow.
	FlowID string `json:"flow_id"`

	Mode Mode `json:"mode"`

	// Current is the index of the question awaiting an answer. Reaching
	// the bank size means the flow is complete.
	Current int `json:"current"`

	Answers scoring.AnswerSet `json:"answers"`

	// TestID and CreatorID are set for ModeTaking only.
	TestID    string `json:"test_id,omitempty"`
	CreatorID int64  `json:"creator_id,omitempty"`

	// PromptMessageID is the message holding the current question, edited
	// in place as the flow advances. Zero means nothing to edit.
	PromptMessageID int `json:"prompt_message_id,omitempty"`

	StartedAt time.Time `json:"started_at"`
}

// New starts a fresh session at the first question.
func New(mode Mode) *Session {
	return &Session{
		FlowID:    uuid.NewString(),
		Mode:      mode,
		Answers:   make(scoring.AnswerSet),
		StartedAt: time.Now(),
	}
}

// NewTaking starts a taking session for the given test.
func NewTaking(testID string, creatorID int64) *Session {
	s := New(ModeTaking)
	s.TestID = testID
	s.CreatorID = creatorID
	return s
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Answers = s.Answers.Clone()
	return &cp
}

// Store keeps sessions keyed by conversation id.
type Store interface {
	// Get returns the session for chatID, or nil if there is none.
	Get(ctx context.Context, chatID int64) (*Session, error)

	// Put stores s for chatID, replacing any previous session.
	Put(ctx context.Context, chatID int64, s *Session) error

	// Delete removes the session for chatID. Deleting a missing session
	// is not an error.
	Delete(ctx context.Context, chatID int64) error
}
