package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/core/outcome"
	"github.com/kirillkom/docresult-viewer/internal/core/ports"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultMaxAttempts  = 30
)

// Watcher polls a result until it leaves the pending state. The transport
// never retries; this is the only polling policy.
type Watcher struct {
	backend     ports.ResultBackend
	interval    time.Duration
	maxAttempts int
}

var _ ports.ResultWatcher = (*Watcher)(nil)

func NewWatcher(backend ports.ResultBackend, interval time.Duration, maxAttempts int) *Watcher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Watcher{
		backend:     backend,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Watch returns the first non-pending outcome. When attempts run out it
// returns the last outcome seen together with a temporary error.
func (w *Watcher) Watch(ctx context.Context, fileID string) (outcome.Outcome, error) {
	const op = "watch result"

	limiter := rate.NewLimiter(rate.Every(w.interval), 1)
	var last outcome.Outcome
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return last, fmt.Errorf("%s: %w", op, err)
		}

		last = loadOutcome(ctx, w.backend, fileID)
		if !last.Pending() && !isNotFound(last) {
			return last, nil
		}
	}
	return last, domain.WrapError(domain.ErrTemporary, op, fmt.Errorf("%s still %s after %d attempts", fileID, last.Classification.Label(), w.maxAttempts))
}
