package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Rebroadcaster republishes the current auction cursor
type Rebroadcaster interface {
	Rebroadcast(ctx context.Context) (bool, error)
}

// SessionCleaner drops expired sessions
type SessionCleaner interface {
	CleanExpiredSessions() int
}

// Config sets the job intervals. A zero interval disables the job.
type Config struct {
	CursorRebroadcast time.Duration
	SessionCleanup    time.Duration
}

// Scheduler runs the background jobs of the auction server
type Scheduler struct {
	s        gocron.Scheduler
	cursor   Rebroadcaster
	sessions SessionCleaner
	logger   *slog.Logger
	cfg      Config
}

// New creates a scheduler. Jobs are registered by Start.
func New(cfg Config, cursor Rebroadcaster, sessions SessionCleaner, logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		s:        s,
		cursor:   cursor,
		sessions: sessions,
		logger:   logger,
		cfg:      cfg,
	}, nil
}

func (s *Scheduler) Start() error {
	if s.cfg.CursorRebroadcast > 0 {
		_, err := s.s.NewJob(
			gocron.DurationJob(s.cfg.CursorRebroadcast),
			gocron.NewTask(s.rebroadcastCursor),
			gocron.WithName("cursor-rebroadcast"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create cursor rebroadcast job: %w", err)
		}
	}

	if s.cfg.SessionCleanup > 0 {
		_, err := s.s.NewJob(
			gocron.DurationJob(s.cfg.SessionCleanup),
			gocron.NewTask(s.cleanSessions),
			gocron.WithName("session-cleanup"),
		)
		if err != nil {
			return fmt.Errorf("failed to create session cleanup job: %w", err)
		}
	}

	s.s.Start()
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.s.Jobs())))
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) rebroadcastCursor() {
	timeout := s.cfg.CursorRebroadcast
	if timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sent, err := s.cursor.Rebroadcast(ctx)
	if err != nil {
		s.logger.Error("failed to rebroadcast cursor", slog.String("error", err.Error()))
		return
	}
	if sent {
		s.logger.Debug("cursor rebroadcast")
	}
}

func (s *Scheduler) cleanSessions() {
	if n := s.sessions.CleanExpiredSessions(); n > 0 {
		s.logger.Info("expired sessions removed", slog.Int("count", n))
	}
}
