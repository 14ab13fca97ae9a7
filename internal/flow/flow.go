// Package flow drives the two conversations of the bot: a creator answering
// the question bank about themselves, and a taker guessing those answers.
package flow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/knowme/internal/deeplink"
	"github.com/abhisek/knowme/internal/questions"
	"github.com/abhisek/knowme/internal/scoring"
	"github.com/abhisek/knowme/internal/session"
	"github.com/abhisek/knowme/internal/store"
	"github.com/abhisek/knowme/internal/texts"
)

// ErrInvalidState is returned by Answer when the event does not fit the
// session: the index is past the bank, the option does not exist or the
// question was already answered. The session is gone by then.
var ErrInvalidState = errors.New("invalid flow state")

// Abort reasons reported to the Recorder.
const (
	ReasonOutOfRange    = "index_out_of_range"
	ReasonInvalidOption = "invalid_option"
	ReasonDuplicate     = "duplicate_answer"
	ReasonStorage       = "storage"
	ReasonTestMissing   = "test_missing"
	ReasonDegenerate    = "degenerate_scoring"
)

// Conversation identifies who an event came from and where replies go.
type Conversation struct {
	ChatID int64
	User   store.User
}

// Repository is the storage the flow needs.
type Repository interface {
	CreateTest(ctx context.Context, creatorID int64, answers scoring.AnswerSet) (string, error)
	GetTest(ctx context.Context, testID string) (*store.TestInfo, error)
	SaveResult(ctx context.Context, in store.ResultInput) (*store.SaveOutcome, error)
}

// Recorder counts flow outcomes.
type Recorder interface {
	TestCreated()
	ResultRecorded()
	FlowAborted(reason string)
}

type nopRecorder struct{}

func (nopRecorder) TestCreated()       {}
func (nopRecorder) ResultRecorded()    {}
func (nopRecorder) FlowAborted(string) {}

// Deps wires a Flow.
type Deps struct {
	Bank     *questions.Bank
	Repo     Repository
	Sessions session.Store
	Locks    *session.Locker
	Out      Outbound
	Links    deeplink.Builder
	Logger   *zap.Logger
	Recorder Recorder
}

// Flow is the conversation state machine. It is safe for concurrent use;
// events of one conversation are serialized.
type Flow struct {
	bank     *questions.Bank
	repo     Repository
	sessions session.Store
	locks    *session.Locker
	out      Outbound
	links    deeplink.Builder
	log      *zap.Logger
	rec      Recorder
}

// New returns a Flow. Logger, Locks and Recorder are optional.
func New(d Deps) *Flow {
	f := &Flow{
		bank:     d.Bank,
		repo:     d.Repo,
		sessions: d.Sessions,
		locks:    d.Locks,
		out:      d.Out,
		links:    d.Links,
		log:      d.Logger,
		rec:      d.Recorder,
	}
	if f.log == nil {
		f.log = zap.NewNop()
	}
	if f.locks == nil {
		f.locks = session.NewLocker()
	}
	if f.rec == nil {
		f.rec = nopRecorder{}
	}
	return f
}

// Bank returns the question bank the flow serves.
func (f *Flow) Bank() *questions.Bank { return f.bank }

// StartCreating begins a new test about the sender, replacing any flow
// already in progress.
func (f *Flow) StartCreating(ctx context.Context, c Conversation) error {
	defer f.locks.Lock(c.ChatID)()

	sess := session.New(session.ModeCreating)
	if err := f.out.Say(ctx, c.ChatID, texts.CreateStart); err != nil {
		return err
	}
	return f.promptNew(ctx, c, sess)
}

// StartTaking begins an attempt at the test named by ref. An unknown test
// leaves any flow in progress untouched.
func (f *Flow) StartTaking(ctx context.Context, c Conversation, ref string) error {
	defer f.locks.Lock(c.ChatID)()

	testID, err := deeplink.Parse(ref)
	if err != nil {
		return f.out.Say(ctx, c.ChatID, texts.NotFound)
	}
	info, err := f.repo.GetTest(ctx, testID)
	if err != nil {
		f.log.Error("get test failed", zap.Int64("chat_id", c.ChatID), zap.String("test_id", testID), zap.Error(err))
		return f.out.Say(ctx, c.ChatID, texts.Error)
	}
	if info == nil {
		return f.out.Say(ctx, c.ChatID, texts.NotFound)
	}

	sess := session.NewTaking(info.ID, info.CreatorID)
	if err := f.out.Say(ctx, c.ChatID, texts.TakingStart(info.Creator.CreatorName())); err != nil {
		return err
	}
	return f.promptNew(ctx, c, sess)
}

// Answer records option idx for the current question and moves on.
func (f *Flow) Answer(ctx context.Context, c Conversation, idx int) error {
	defer f.locks.Lock(c.ChatID)()

	sess, err := f.sessions.Get(ctx, c.ChatID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return f.out.Say(ctx, c.ChatID, texts.NoActiveFlow)
	}

	if sess.Current < 0 || sess.Current >= f.bank.Count() {
		return f.abort(ctx, c, sess, ReasonOutOfRange)
	}
	q := f.bank.At(sess.Current)
	if !q.ValidOption(idx) {
		return f.abort(ctx, c, sess, ReasonInvalidOption)
	}
	if _, dup := sess.Answers[q.ID]; dup {
		return f.abort(ctx, c, sess, ReasonDuplicate)
	}

	sess.Answers[q.ID] = idx
	sess.Current++

	if sess.Current < f.bank.Count() {
		id, err := f.out.RenderQuestion(ctx, c.ChatID, f.prompt(sess, sess.PromptMessageID))
		if err != nil {
			return err
		}
		sess.PromptMessageID = id
		if err := f.sessions.Put(ctx, c.ChatID, sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		return nil
	}

	if sess.Mode == session.ModeTaking {
		return f.finishTaking(ctx, c, sess)
	}
	return f.finishCreating(ctx, c, sess)
}

// Cancel drops the flow in progress. Nothing is persisted.
func (f *Flow) Cancel(ctx context.Context, c Conversation) error {
	defer f.locks.Lock(c.ChatID)()

	sess, err := f.sessions.Get(ctx, c.ChatID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return f.out.Say(ctx, c.ChatID, texts.NothingToCancel)
	}
	if err := f.sessions.Delete(ctx, c.ChatID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	f.log.Info("flow cancelled", f.fields(c, sess)...)
	return f.out.Say(ctx, c.ChatID, texts.Cancelled)
}

// OtherMessage handles free text. During a flow the current question is
// sent again as a new message; state does not advance.
func (f *Flow) OtherMessage(ctx context.Context, c Conversation) error {
	defer f.locks.Lock(c.ChatID)()

	sess, err := f.sessions.Get(ctx, c.ChatID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return f.out.Say(ctx, c.ChatID, texts.Help)
	}
	if err := f.out.Say(ctx, c.ChatID, texts.UseButtons); err != nil {
		return err
	}
	if sess.Current < 0 || sess.Current >= f.bank.Count() {
		if err := f.sessions.Delete(ctx, c.ChatID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		f.rec.FlowAborted(ReasonOutOfRange)
		f.log.Warn("flow aborted", append(f.fields(c, sess), zap.String("reason", ReasonOutOfRange))...)
		return f.out.RenderError(ctx, c.ChatID, 0, texts.AnswerError)
	}
	return f.promptNew(ctx, c, sess)
}

// promptNew sends the current question as a new message and stores sess
// with the new prompt id.
func (f *Flow) promptNew(ctx context.Context, c Conversation, sess *session.Session) error {
	id, err := f.out.RenderQuestion(ctx, c.ChatID, f.prompt(sess, 0))
	if err != nil {
		return err
	}
	sess.PromptMessageID = id
	if err := f.sessions.Put(ctx, c.ChatID, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (f *Flow) prompt(sess *session.Session, editID int) Prompt {
	q := f.bank.At(sess.Current)
	return Prompt{
		EditMessageID: editID,
		Current:       sess.Current + 1,
		Total:         f.bank.Count(),
		Text:          q.Text,
		Options:       append([]string(nil), q.Options...),
	}
}

func (f *Flow) finishCreating(ctx context.Context, c Conversation, sess *session.Session) error {
	testID, err := f.repo.CreateTest(ctx, c.User.ID, sess.Answers)
	if err != nil {
		return f.fail(ctx, c, sess, ReasonStorage, err)
	}
	f.release(ctx, c, sess)
	f.rec.TestCreated()
	f.log.Info("test created", append(f.fields(c, sess), zap.String("test_id", testID))...)

	link := f.links.Link(testID)
	return f.out.RenderCompletion(ctx, c.ChatID, Completion{
		EditMessageID: sess.PromptMessageID,
		Text:          texts.TestCreated(link),
		ShareLink:     link,
	})
}

func (f *Flow) finishTaking(ctx context.Context, c Conversation, sess *session.Session) error {
	res, err := f.repo.SaveResult(ctx, store.ResultInput{
		TestID:    sess.TestID,
		TakerID:   c.User.ID,
		TakerName: c.User.TakerName(),
		Answers:   sess.Answers,
	})
	if err != nil {
		reason := ReasonStorage
		switch {
		case errors.Is(err, store.ErrTestNotFound):
			reason = ReasonTestMissing
		case errors.Is(err, scoring.ErrNoCreatorAnswers):
			reason = ReasonDegenerate
		}
		return f.fail(ctx, c, sess, reason, err)
	}
	f.release(ctx, c, sess)
	f.rec.ResultRecorded()
	f.log.Info("result recorded", append(f.fields(c, sess), zap.Int("score", res.Percentage))...)

	err = f.out.RenderCompletion(ctx, c.ChatID, Completion{
		EditMessageID: sess.PromptMessageID,
		Text:          texts.TestCompleted(res.Test.Creator.CreatorName(), res.Percentage, res.Status),
	})
	if err != nil {
		return err
	}

	details := Details(scoring.Compare(f.bank, res.Test.Answers, sess.Answers))
	note := texts.NewResult(res.Result.TakerName, res.Percentage, res.Status, texts.Details(details))
	if err := f.out.Notify(ctx, sess.CreatorID, note); err != nil {
		f.log.Warn("notify creator failed", append(f.fields(c, sess), zap.Int64("creator_id", sess.CreatorID), zap.Error(err))...)
	}
	return nil
}

// release destroys the session of a completed flow. The outcome is already
// stored, so a failed delete is logged and the reply still goes out.
func (f *Flow) release(ctx context.Context, c Conversation, sess *session.Session) {
	if err := f.sessions.Delete(ctx, c.ChatID); err != nil {
		f.log.Error("delete session failed", append(f.fields(c, sess), zap.Error(err))...)
	}
}

// abort ends the flow after an event that does not fit the session.
func (f *Flow) abort(ctx context.Context, c Conversation, sess *session.Session, reason string) error {
	if err := f.sessions.Delete(ctx, c.ChatID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	f.rec.FlowAborted(reason)
	f.log.Warn("flow aborted", append(f.fields(c, sess), zap.String("reason", reason))...)
	if err := f.out.RenderError(ctx, c.ChatID, sess.PromptMessageID, texts.AnswerError); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", ErrInvalidState, reason)
}

// fail ends the flow after a storage or scoring failure.
func (f *Flow) fail(ctx context.Context, c Conversation, sess *session.Session, reason string, cause error) error {
	if err := f.sessions.Delete(ctx, c.ChatID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	f.rec.FlowAborted(reason)
	f.log.Error("flow failed", append(f.fields(c, sess), zap.String("reason", reason), zap.Error(cause))...)
	return f.out.RenderError(ctx, c.ChatID, sess.PromptMessageID, texts.Error)
}

func (f *Flow) fields(c Conversation, sess *session.Session) []zap.Field {
	return []zap.Field{
		zap.Int64("chat_id", c.ChatID),
		zap.String("flow_id", sess.FlowID),
		zap.String("mode", string(sess.Mode)),
		zap.Int("current", sess.Current),
	}
}
