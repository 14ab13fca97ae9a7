// Package app assembles the bot from configuration: storage, question
// bank, scoring, sessions, the flow and the update dispatcher.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/knowme/internal/bot"
	"github.com/abhisek/knowme/internal/config"
	"github.com/abhisek/knowme/internal/deeplink"
	"github.com/abhisek/knowme/internal/flow"
	"github.com/abhisek/knowme/internal/metrics"
	"github.com/abhisek/knowme/internal/outbox"
	"github.com/abhisek/knowme/internal/questions"
	"github.com/abhisek/knowme/internal/scoring"
	"github.com/abhisek/knowme/internal/session"
	"github.com/abhisek/knowme/internal/stats"
	"github.com/abhisek/knowme/internal/store"
)

// Options carries what the caller has already built.
type Options struct {
	Config  config.Config
	DBPath  string
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// App is the assembled bot.
type App struct {
	Config     config.Config
	Bank       *questions.Bank
	Engine     *scoring.Engine
	Store      *store.Store
	Repo       store.QuizRepo
	Sessions   session.Store
	Outbox     *outbox.Outbox
	Flow       *flow.Flow
	Stats      *stats.Service
	Dispatcher *bot.Dispatcher
	Links      deeplink.Builder
	Logger     *zap.Logger
	Metrics    *metrics.Metrics

	closers []func() error
}

// New builds an App. The caller must Close it.
func New(ctx context.Context, opts Options) (*App, error) {
	a := &App{
		Config:  opts.Config,
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
		Links:   deeplink.NewBuilder(opts.Config.Bot.LinkBase),
	}
	if a.Logger == nil {
		a.Logger = zap.NewNop()
	}
	if a.Metrics == nil {
		a.Metrics = metrics.New()
	}

	var err error
	a.Bank, err = questions.Load(opts.Config.Questions.Path)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	a.Engine, err = scoring.NewEngine(opts.Config.Status.Ranges)
	if err != nil {
		return nil, err
	}

	a.Store, err = store.Open(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.closers = append(a.closers, a.Store.Close)
	a.Repo = a.Store.QuizRepo(a.Engine)

	sessions, closeSessions, err := session.Open(ctx, opts.Config.SessionOptions())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open sessions: %w", err)
	}
	a.closers = append(a.closers, closeSessions)
	a.Sessions = sessions

	a.Outbox = outbox.New()
	renderer := bot.NewRenderer(a.Outbox)
	a.Flow = flow.New(flow.Deps{
		Bank:     a.Bank,
		Repo:     a.Repo,
		Sessions: a.Sessions,
		Locks:    session.NewLocker(),
		Out:      renderer,
		Links:    a.Links,
		Logger:   a.Logger.Named("flow"),
		Recorder: a.Metrics,
	})
	a.Stats = stats.NewService(a.Repo)
	a.Dispatcher = bot.NewDispatcher(bot.DispatcherDeps{
		Flow:             a.Flow,
		Users:            a.Repo,
		Stats:            a.Stats,
		Renderer:         renderer,
		Links:            a.Links,
		LeaderboardLimit: opts.Config.Leaderboard.Limit,
		Logger:           a.Logger.Named("bot"),
		Recorder:         a.Metrics,
	})

	a.Logger.Info("bot ready",
		zap.Int("questions", a.Bank.Count()),
		zap.String("bank_version", a.Bank.Version()),
		zap.String("sessions", opts.Config.Session.Backend),
	)
	return a, nil
}

// Close releases storage and session backends in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
