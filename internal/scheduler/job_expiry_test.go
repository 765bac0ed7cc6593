package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"mybench_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubExpirer struct {
	calls int
	n     int
	err   error
	at    time.Time
}

func (s *stubExpirer) ExpireJobs(ctx context.Context, now time.Time) (int, error) {
	s.calls++
	s.at = now
	return s.n, s.err
}

func TestRunOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	expirer := &stubExpirer{n: 4}
	job := NewJobExpiryJob(expirer, zap.New(core), &config.Config{})

	job.RunOnce(context.Background())

	assert.Equal(t, 1, expirer.calls)
	assert.Equal(t, time.UTC, expirer.at.Location())
	completed := logs.FilterMessage("Job expiry run completed").All()
	require.Len(t, completed, 1)
	assert.EqualValues(t, 4, completed[0].ContextMap()["jobs_expired"])
}

func TestRunOnce_LogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	job := NewJobExpiryJob(&stubExpirer{err: errors.New("db down")}, zap.New(core), &config.Config{})

	job.RunOnce(context.Background())

	assert.Equal(t, 1, logs.FilterMessage("Job expiry run failed").Len())
}

func TestSetupAndStart(t *testing.T) {
	t.Run("empty schedule does not run", func(t *testing.T) {
		job := NewJobExpiryJob(&stubExpirer{}, zap.NewNop(), &config.Config{})
		assert.NoError(t, job.SetupAndStart())
		assert.Empty(t, job.cronScheduler.Entries())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		job := NewJobExpiryJob(&stubExpirer{}, zap.NewNop(), &config.Config{JobExpirySchedule: "every tuesday"})
		assert.Error(t, job.SetupAndStart())
	})

	t.Run("valid schedule", func(t *testing.T) {
		job := NewJobExpiryJob(&stubExpirer{}, zap.NewNop(), &config.Config{JobExpirySchedule: "@hourly"})
		require.NoError(t, job.SetupAndStart())
		assert.Len(t, job.cronScheduler.Entries(), 1)
		job.Stop()
	})
}

func TestCronLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewCronLogger(zap.New(core))

	l.Info("schedule", "entry", 1, "dangling")
	l.Error(errors.New("boom"), "panic", "entry", 2)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.EqualValues(t, 1, entries[0].ContextMap()["entry"])
	assert.Equal(t, "MISSING_VALUE", entries[0].ContextMap()["dangling"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
