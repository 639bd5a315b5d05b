package jobs

import (
	"context"
	"log"
	"time"

	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/metrics"
)

// ExpiredSessionDeleter removes sessions past their expiry.
// *services.SessionService implements it.
type ExpiredSessionDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// StartSessionSweepJob periodically deletes expired sessions until ctx is
// cancelled. Expiry is still enforced when a session is read.
func StartSessionSweepJob(ctx context.Context, cfg *config.Config, sessions ExpiredSessionDeleter) {
	if sessions == nil {
		log.Printf("session sweep job disabled: no session store")
		return
	}
	interval := cfg.SessionSweepInterval
	if interval <= 0 {
		log.Printf("session sweep job disabled: interval %s", interval)
		return
	}
	timeout := cfg.SessionSweepTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				SweepSessions(ctx, sessions, timeout)
			}
		}
	}()
}

// SweepSessions runs one sweep bounded by timeout and returns the number
// of deleted sessions.
func SweepSessions(ctx context.Context, sessions ExpiredSessionDeleter, timeout time.Duration) int64 {
	tickCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	n, err := sessions.DeleteExpired(tickCtx)
	if err != nil {
		log.Printf("session sweep job error: %v", err)
		return 0
	}
	if n > 0 {
		metrics.SessionsSwept.Add(float64(n))
		log.Printf("session sweep job removed %d expired sessions", n)
	}
	return n
}
