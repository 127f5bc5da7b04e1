package presence

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Expirer flips presence rows not refreshed since cutoff to offline.
type Expirer interface {
	MarkStalePresenceOffline(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically marks presence rows offline once they go unrefreshed for StaleAfter.
type Sweeper struct {
	store      Expirer
	staleAfter time.Duration
	interval   time.Duration
	logger     *logrus.Logger
	now        func() time.Time
}

func NewSweeper(store Expirer, staleAfter, interval time.Duration, logger *logrus.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		store:      store,
		staleAfter: staleAfter,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
	}
}

// Run sweeps every interval until ctx is cancelled. A non-positive StaleAfter disables it.
func (s *Sweeper) Run(ctx context.Context) {
	if s.staleAfter <= 0 {
		s.logger.Info("presence sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.WithError(err).Warn("presence sweep failed")
			}
		}
	}
}

// SweepOnce runs a single pass and returns how many rows were marked offline.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.store.MarkStalePresenceOffline(ctx, s.now().Add(-s.staleAfter))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.WithField("rows", n).Info("marked stale presence offline")
	}
	return n, nil
}
