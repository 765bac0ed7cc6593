// File: internal/scheduler/job_expiry.go
package scheduler

import (
	"context"
	"time"

	"mybench_backend/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobExpirer closes job postings whose expiry has passed. job.Service satisfies it.
type JobExpirer interface {
	ExpireJobs(ctx context.Context, now time.Time) (int, error)
}

// JobExpiryJob periodically expires stale job postings.
type JobExpiryJob struct {
	jobs          JobExpirer
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
	runTimeout    time.Duration
	stopTimeout   time.Duration
}

// NewJobExpiryJob creates a new JobExpiryJob.
func NewJobExpiryJob(jobs JobExpirer, logger *zap.Logger, cfg *config.Config) *JobExpiryJob {
	cronLog := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	return &JobExpiryJob{
		jobs:          jobs,
		logger:        logger.Named("JobExpiryJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
		runTimeout:    5 * time.Minute,
		stopTimeout:   10 * time.Second,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *JobExpiryJob) SetupAndStart() error {
	spec := j.cfg.JobExpirySchedule
	if spec == "" {
		j.logger.Warn("Job expiry schedule not defined (JOB_EXPIRY_SCHEDULE). Job will not run.")
		return nil
	}

	entryID, err := j.cronScheduler.AddFunc(spec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule job expiry", zap.String("spec", spec), zap.Error(err))
		return err
	}

	j.logger.Info("Job expiry scheduled", zap.String("spec", spec), zap.Int("entryID", int(entryID)))
	j.cronScheduler.Start()
	return nil
}

func (j *JobExpiryJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), j.runTimeout)
	defer cancel()
	j.RunOnce(ctx)
}

// RunOnce expires every posting past its expiry right now.
func (j *JobExpiryJob) RunOnce(ctx context.Context) {
	j.logger.Info("Starting job expiry run...")
	expired, err := j.jobs.ExpireJobs(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Error("Job expiry run failed", zap.Error(err))
		return
	}
	j.logger.Info("Job expiry run completed", zap.Int("jobs_expired", expired))
}

// Stop gracefully stops the cron scheduler.
func (j *JobExpiryJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	j.logger.Info("Stopping job expiry scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Job expiry scheduler stopped gracefully.")
	case <-time.After(j.stopTimeout):
		j.logger.Warn("Job expiry scheduler stop timed out.")
	}
}
