// Package jobs runs periodic maintenance next to the HTTP server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"content-catalog/pkg/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	cleanupTimeout = time.Minute
	limiterMaxIdle = 10 * time.Minute
)

// CodePurger deletes confirmation codes that can no longer be redeemed.
type CodePurger interface {
	DeleteStale(ctx context.Context) (int64, error)
}

// IdleForgetter drops per-client state that has not been touched recently.
type IdleForgetter interface {
	Cleanup(maxIdle time.Duration) int
}

// Counter is the slice of prometheus.Counter the cleanup job reports to.
type Counter interface {
	Add(float64)
}

// Cleanup purges used and expired confirmation codes and idle rate limiter
// entries. It implements cron.Job.
type Cleanup struct {
	codes   CodePurger
	limiter IdleForgetter
	purged  Counter
	log     *zap.Logger
}

func NewCleanup(codes CodePurger, limiter IdleForgetter, purged Counter, log *zap.Logger) *Cleanup {
	return &Cleanup{
		codes:   codes,
		limiter: limiter,
		purged:  purged,
		log:     log.With(zap.String("job", "cleanup")),
	}
}

func (c *Cleanup) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	removed, err := c.codes.DeleteStale(ctx)
	if err != nil {
		c.log.Error("Failed to purge confirmation codes", zap.Error(err))
	} else {
		if c.purged != nil {
			c.purged.Add(float64(removed))
		}
		c.log.Info("Purged confirmation codes", zap.Int64("removed", removed))
	}

	if c.limiter != nil {
		forgotten := c.limiter.Cleanup(limiterMaxIdle)
		c.log.Debug("Forgot idle rate limit entries", zap.Int("removed", forgotten))
	}
}

// Scheduler wraps a cron runner.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func NewScheduler(cfg utils.JobsConfig, cleanup cron.Job, log *zap.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log.With(zap.String("component", "cron")).Sugar()}

	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := c.AddJob(cfg.CleanupSchedule, cleanup); err != nil {
		return nil, fmt.Errorf("schedule cleanup %q: %w", cfg.CleanupSchedule, err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.log.Info("Starting scheduler", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out")
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
