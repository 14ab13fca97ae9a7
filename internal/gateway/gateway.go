// Package gateway exposes the bot over HTTP: updates in, queued messages
// out, plus read-only statistics.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/knowme/internal/bot"
	"github.com/abhisek/knowme/internal/metrics"
	"github.com/abhisek/knowme/internal/outbox"
	"github.com/abhisek/knowme/internal/stats"
)

// Pinger reports storage health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler processes one inbound update.
type Handler interface {
	Handle(ctx context.Context, u bot.Update) error
}

// Deps wires a Server.
type Deps struct {
	Handler          Handler
	Outbox           *outbox.Outbox
	Stats            *stats.Service
	Metrics          *metrics.Metrics
	DB               Pinger
	Logger           *zap.Logger
	LeaderboardLimit int
}

// Server owns the gin engine.
type Server struct {
	handler Handler
	box     *outbox.Outbox
	stats   *stats.Service
	metrics *metrics.Metrics
	db      Pinger
	log     *zap.Logger
	limit   int
	engine  *gin.Engine
}

// New builds a Server with all routes registered.
func New(d Deps) *Server {
	s := &Server{
		handler: d.Handler,
		box:     d.Outbox,
		stats:   d.Stats,
		metrics: d.Metrics,
		db:      d.DB,
		log:     d.Logger,
		limit:   d.LeaderboardLimit,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
		r.GET("/metrics", s.metrics.Handler())
	}
	r.GET("/healthz", s.health)

	v1 := r.Group("/v1")
	{
		v1.POST("/updates", s.postUpdate)
		v1.GET("/chats/:chat_id/messages", s.drainMessages)
		v1.GET("/creators/:id/stats", s.creatorStats)
		v1.GET("/leaderboard", s.leaderboard)
	}
	s.engine = r
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http gateway listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// UpdateReply is the body returned for a posted update.
type UpdateReply struct {
	ChatID   int64            `json:"chat_id"`
	Messages []outbox.Message `json:"messages"`
}

func (s *Server) postUpdate(c *gin.Context) {
	var u bot.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		fail(c, http.StatusBadRequest, "invalid update: "+err.Error())
		return
	}
	if u.From.ID == 0 {
		fail(c, http.StatusBadRequest, "update needs from.id")
		return
	}
	if err := s.handler.Handle(c.Request.Context(), u); err != nil {
		s.log.Error("handle update failed", zap.Stringer("update", u), zap.Error(err))
		fail(c, http.StatusInternalServerError, "update failed")
		return
	}
	chat := u.Chat()
	success(c, UpdateReply{ChatID: chat, Messages: s.box.Drain(chat)})
}

func (s *Server) drainMessages(c *gin.Context) {
	chat, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid chat id")
		return
	}
	success(c, UpdateReply{ChatID: chat, Messages: s.box.Drain(chat)})
}

func (s *Server) creatorStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid creator id")
		return
	}
	st, err := s.stats.CreatorStatistics(c.Request.Context(), id)
	if err != nil {
		s.log.Error("creator statistics failed", zap.Int64("creator_id", id), zap.Error(err))
		fail(c, http.StatusInternalServerError, "statistics unavailable")
		return
	}
	if st == nil {
		fail(c, http.StatusNotFound, "creator has no tests")
		return
	}
	success(c, st)
}

func (s *Server) leaderboard(c *gin.Context) {
	limit := s.limit
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			fail(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	entries, err := s.stats.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		s.log.Error("leaderboard failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}
	success(c, entries)
}

func (s *Server) health(c *gin.Context) {
	if s.db != nil {
		if err := s.db.PingContext(c.Request.Context()); err != nil {
			fail(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	success(c, gin.H{"status": "ok"})
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
