// Package reminder periodically asks the interview service to queue reminders
// for events that start soon.
package reminder

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Sender is satisfied by *service.Service.
type Sender interface {
	SendDueReminders(ctx context.Context, now time.Time) (int, error)
}

// Scheduler runs SendDueReminders on a fixed interval.
type Scheduler struct {
	sender   Sender
	interval time.Duration
	logger   *slog.Logger
	clock    func() time.Time
}

type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithClock overrides the wall clock passed to each sweep.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

func New(sender Sender, interval time.Duration, opts ...Option) (*Scheduler, error) {
	if sender == nil {
		return nil, errors.New("reminder sender is required")
	}
	if interval <= 0 {
		return nil, errors.New("reminder interval must be positive")
	}
	s := &Scheduler{
		sender:   sender,
		interval: interval,
		logger:   slog.Default(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
// Sweep failures are logged; the loop keeps going.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	sent, err := s.sender.SendDueReminders(ctx, s.clock().UTC())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.ErrorContext(ctx, "reminder sweep failed", "error", err, "sent", sent)
		return
	}
	if sent > 0 {
		s.logger.DebugContext(ctx, "reminder sweep finished", "sent", sent)
	}
}
