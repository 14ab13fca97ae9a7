package bot

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/abhisek/knowme/internal/deeplink"
	"github.com/abhisek/knowme/internal/flow"
	"github.com/abhisek/knowme/internal/outbox"
	"github.com/abhisek/knowme/internal/stats"
	"github.com/abhisek/knowme/internal/store"
	"github.com/abhisek/knowme/internal/texts"
)

// Users is the repository surface the dispatcher uses directly.
type Users interface {
	AddOrUpdateUser(ctx context.Context, u store.User) error
	ListTests(ctx context.Context, creatorID int64) ([]store.TestSummary, error)
}

// UpdateRecorder counts inbound updates.
type UpdateRecorder interface {
	Update(kind string)
}

// Dispatcher routes updates to the flow and answers report commands.
type Dispatcher struct {
	flow     *flow.Flow
	users    Users
	stats    *stats.Service
	renderer *Renderer
	links    deeplink.Builder
	limit    int
	log      *zap.Logger
	rec      UpdateRecorder
}

// DispatcherDeps wires a Dispatcher. Logger and Recorder are optional.
type DispatcherDeps struct {
	Flow             *flow.Flow
	Users            Users
	Stats            *stats.Service
	Renderer         *Renderer
	Links            deeplink.Builder
	LeaderboardLimit int
	Logger           *zap.Logger
	Recorder         UpdateRecorder
}

// NewDispatcher returns a Dispatcher.
func NewDispatcher(d DispatcherDeps) *Dispatcher {
	disp := &Dispatcher{
		flow:     d.Flow,
		users:    d.Users,
		stats:    d.Stats,
		renderer: d.Renderer,
		links:    d.Links,
		limit:    d.LeaderboardLimit,
		log:      d.Logger,
		rec:      d.Recorder,
	}
	if disp.log == nil {
		disp.log = zap.NewNop()
	}
	return disp
}

// Handle processes one update. Problems the user was already told about
// are not returned.
func (d *Dispatcher) Handle(ctx context.Context, u Update) error {
	if u.From.ID == 0 {
		return errors.New("update without sender")
	}
	if d.rec != nil {
		d.rec.Update(u.Kind())
	}

	conv := flow.Conversation{ChatID: u.Chat(), User: u.From.Profile()}
	err := d.route(ctx, conv, u)
	if errors.Is(err, flow.ErrInvalidState) {
		d.log.Debug("update rejected", zap.Int64("chat_id", conv.ChatID), zap.Error(err))
		return nil
	}
	return err
}

func (d *Dispatcher) route(ctx context.Context, conv flow.Conversation, u Update) error {
	if u.CallbackData != "" {
		return d.callback(ctx, conv, u.CallbackData)
	}

	name, arg, ok := ParseCommand(u.Text)
	if !ok {
		return d.flow.OtherMessage(ctx, conv)
	}
	switch name {
	case "start":
		if err := d.users.AddOrUpdateUser(ctx, conv.User); err != nil {
			d.log.Warn("save user failed", zap.Int64("user_id", conv.User.ID), zap.Error(err))
		}
		if arg != "" {
			return d.flow.StartTaking(ctx, conv, arg)
		}
		d.renderer.Send(conv.ChatID, outbox.Content{
			Text:    texts.Start,
			Buttons: []outbox.Button{{Text: texts.CreateButton, Data: CallbackCreateTest}},
		})
		return nil
	case "create":
		return d.flow.StartCreating(ctx, conv)
	case "cancel":
		return d.flow.Cancel(ctx, conv)
	case "help":
		return d.renderer.Say(ctx, conv.ChatID, texts.Help)
	case "mytests":
		return d.myTests(ctx, conv)
	case "stats":
		return d.creatorStats(ctx, conv)
	case "top":
		return d.leaderboard(ctx, conv)
	default:
		return d.flow.OtherMessage(ctx, conv)
	}
}

func (d *Dispatcher) callback(ctx context.Context, conv flow.Conversation, data string) error {
	if data == CallbackCreateTest {
		return d.flow.StartCreating(ctx, conv)
	}
	if idx, ok := ParseAnswer(data); ok {
		return d.flow.Answer(ctx, conv, idx)
	}
	d.log.Debug("unknown callback", zap.Int64("chat_id", conv.ChatID), zap.String("data", data))
	return nil
}

func (d *Dispatcher) myTests(ctx context.Context, conv flow.Conversation) error {
	tests, err := d.users.ListTests(ctx, conv.User.ID)
	if err != nil {
		d.log.Error("list tests failed", zap.Int64("user_id", conv.User.ID), zap.Error(err))
		return d.renderer.Say(ctx, conv.ChatID, texts.Error)
	}
	if len(tests) == 0 {
		return d.renderer.Say(ctx, conv.ChatID, texts.NoTests)
	}
	lines := make([]texts.TestLine, len(tests))
	for i, t := range tests {
		lines[i] = texts.TestLine{Link: d.links.Link(t.ID), Passes: t.Passes}
	}
	return d.renderer.Say(ctx, conv.ChatID, texts.MyTests(lines))
}

func (d *Dispatcher) creatorStats(ctx context.Context, conv flow.Conversation) error {
	st, err := d.stats.CreatorStatistics(ctx, conv.User.ID)
	if err != nil {
		d.log.Error("creator statistics failed", zap.Int64("user_id", conv.User.ID), zap.Error(err))
		return d.renderer.Say(ctx, conv.ChatID, texts.Error)
	}
	if st == nil {
		return d.renderer.Say(ctx, conv.ChatID, texts.NoTests)
	}
	return d.renderer.Say(ctx, conv.ChatID, texts.Stats(StatsView(st)))
}

func (d *Dispatcher) leaderboard(ctx context.Context, conv flow.Conversation) error {
	entries, err := d.stats.Leaderboard(ctx, d.limit)
	if err != nil {
		d.log.Error("leaderboard failed", zap.Error(err))
		return d.renderer.Say(ctx, conv.ChatID, texts.Error)
	}
	return d.renderer.Say(ctx, conv.ChatID, texts.Leaderboard(LeaderRows(entries)))
}

// StatsView converts aggregated statistics for rendering.
func StatsView(st *stats.Stats) texts.StatsView {
	v := texts.StatsView{
		TestsCount:   st.TestsCount,
		TotalPasses:  st.TotalPasses,
		AverageScore: st.AverageScore,
	}
	for i, t := range st.Tests {
		line := texts.StatsTest{Number: i + 1, Passes: t.Passes, Average: t.AverageScore}
		if t.Top != nil {
			line.Top, line.TopPct = t.Top.TakerName, t.Top.Score
		}
		if t.Bottom != nil {
			line.Low, line.LowPct = t.Bottom.TakerName, t.Bottom.Score
		}
		v.Tests = append(v.Tests, line)
	}
	for _, p := range st.BestFriends {
		v.BestFriends = append(v.BestFriends, texts.StatsFriend{Name: p.TakerName, Score: p.Score})
	}
	for _, p := range st.WorstFriends {
		v.WorstFriends = append(v.WorstFriends, texts.StatsFriend{Name: p.TakerName, Score: p.Score})
	}
	return v
}

// LeaderRows converts leaderboard entries for rendering.
func LeaderRows(entries []stats.LeaderboardEntry) []texts.LeaderRow {
	rows := make([]texts.LeaderRow, len(entries))
	for i, e := range entries {
		rows[i] = texts.LeaderRow{Name: e.TakerName, Average: e.AverageScore, Count: e.Count}
	}
	return rows
}
