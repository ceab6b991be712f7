package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"content-catalog/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePurger struct {
	removed int64
	err     error
	calls   int
}

func (f *fakePurger) DeleteStale(context.Context) (int64, error) {
	f.calls++
	return f.removed, f.err
}

type fakeLimiter struct {
	maxIdle time.Duration
}

func (f *fakeLimiter) Cleanup(maxIdle time.Duration) int {
	f.maxIdle = maxIdle
	return 0
}

type fakeCounter struct {
	total float64
}

func (f *fakeCounter) Add(v float64) { f.total += v }

func TestCleanupRun(t *testing.T) {
	purger := &fakePurger{removed: 3}
	limiter := &fakeLimiter{}
	counter := &fakeCounter{}

	NewCleanup(purger, limiter, counter, zap.NewNop()).Run()

	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, limiterMaxIdle, limiter.maxIdle)
	assert.Equal(t, 3.0, counter.total)
}

func TestCleanupRunSurvivesErrors(t *testing.T) {
	purger := &fakePurger{err: errors.New("db down")}
	counter := &fakeCounter{}

	assert.NotPanics(t, func() {
		NewCleanup(purger, nil, counter, zap.NewNop()).Run()
	})
	assert.Equal(t, 0.0, counter.total)
}

func TestNewSchedulerRejectsBadSchedule(t *testing.T) {
	job := NewCleanup(&fakePurger{}, nil, nil, zap.NewNop())

	_, err := NewScheduler(utils.JobsConfig{CleanupSchedule: "every tuesday"}, job, zap.NewNop())
	assert.Error(t, err)

	s, err := NewScheduler(utils.JobsConfig{CleanupSchedule: "@hourly"}, job, zap.NewNop())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
