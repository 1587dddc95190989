package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Purger deletes analytics rows older than a cutoff.
type Purger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJob purges analytics past the retention window.
type RetentionJob struct {
	store   Purger
	window  time.Duration
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewRetentionJob creates a job keeping window worth of analytics.
func NewRetentionJob(store Purger, window time.Duration, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		store:   store,
		window:  window,
		timeout: time.Minute,
		now:     func() time.Time { return time.Now().UTC() },
		log:     log.With().Str("job", "analytics_retention").Logger(),
	}
}

// Name implements Job.
func (j *RetentionJob) Name() string {
	return "analytics_retention"
}

// Run implements Job.
func (j *RetentionJob) Run() error {
	if j.window <= 0 {
		return fmt.Errorf("retention window must be positive, got %s", j.window)
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	cutoff := j.now().Add(-j.window)
	n, err := j.store.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge analytics before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	j.log.Info().Time("cutoff", cutoff).Int64("rows", n).Msg("analytics purged")
	return nil
}
