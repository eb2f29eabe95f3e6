package auth

import (
	"context"
	"sync"
	"time"

	"github.com/mercadito-app/mercadito-backend/pkg/logger"
)

// CheckFunc verifies that a credential is still acceptable. It returns
// an error when the credential should be considered stale.
type CheckFunc func(ctx context.Context) error

// Revalidator periodically re-checks a credential in the background so
// that staleness is discovered before the next order submission needs
// it. Failures are logged and surfaced through Healthy; the ordering
// paths are never blocked by the poller.
type Revalidator struct {
	check    CheckFunc
	interval time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	healthy bool
}

func NewRevalidator(check CheckFunc, interval time.Duration, log *logger.Logger) *Revalidator {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Revalidator{
		check:    check,
		interval: interval,
		log:      log,
		healthy:  true,
	}
}

// Run blocks until ctx is cancelled, re-validating on every tick.
func (r *Revalidator) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.revalidate(ctx)
		}
	}
}

func (r *Revalidator) revalidate(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := r.check(checkCtx)

	r.mu.Lock()
	r.healthy = err == nil
	r.mu.Unlock()

	if err != nil {
		r.log.Warn(r.log.WithField(ctx, "error", err.Error()), "credential revalidation failed")
	}
}

// Healthy reports the outcome of the most recent check.
func (r *Revalidator) Healthy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.healthy
}
