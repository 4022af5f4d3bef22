package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Scheduler runs the registered jobs on their schedules.
type Scheduler struct {
	cron   *cron.Cron
	db     *gorm.DB
	logger *logrus.Logger
}

// NewScheduler adds every registered job. An invalid schedule fails the whole setup.
func NewScheduler(db *gorm.DB, logger *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(logger)),
			cron.SkipIfStillRunning(cron.PrintfLogger(logger)),
		)),
		db:     db,
		logger: logger,
	}
	for _, j := range Jobs() {
		job := j
		if _, err := s.cron.AddFunc(job.Schedule, func() { s.Run(context.Background(), job) }); err != nil {
			return nil, fmt.Errorf("cron: job %s: %w", job.Name, err)
		}
		logger.WithFields(logrus.Fields{"job": job.Name, "schedule": job.Schedule}).Info("cron: job scheduled")
	}
	return s, nil
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Run executes one job now and logs its outcome.
func (s *Scheduler) Run(ctx context.Context, job Job) error {
	start := time.Now()
	entry := s.logger.WithField("job", job.Name)
	err := job.Run(ctx, s.db)
	entry = entry.WithField("duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		entry.WithError(err).Error("cron: job failed")
		return err
	}
	entry.Info("cron: job finished")
	return nil
}
