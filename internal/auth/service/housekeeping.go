package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/querydeck/querydeck/internal/auth/store"
)

// HousekeepingService periodically deactivates expired sessions so the
// sessions table doesn't accumulate rows that can never authenticate again.
// Expiry is also enforced lazily on every session lookup, so the system
// stays correct even if this worker never runs.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Now is the clock used for the expiry cutoff. Defaults to time.Now.
	Now func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (s *HousekeepingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Start begins the background worker that periodically runs the sweep.
// Non-blocking; call Stop() to gracefully shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker. Blocks until any
// in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	count, err := s.CleanupExpiredSessions(context.Background())
	if err != nil {
		s.Logger.Error("session sweep failed", "error", err)
		return
	}
	if count > 0 {
		s.Logger.Info("session sweep completed", "deactivated", count)
	}
}

// CleanupExpiredSessions deactivates every active session past its expiry
// and returns how many were flipped. Safe to call at any cadence.
func (s *HousekeepingService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.Store.Sessions().SweepExpired(ctx, s.now())
}
