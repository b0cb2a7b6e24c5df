package jobs

import (
	"fmt"

	"hotel-booking-backend/internal/clock"
	"hotel-booking-backend/internal/config"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/repository"
	"hotel-booking-backend/internal/service"
)

const JobExpireHolds = "expire-holds"

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	reservations repository.ReservationRepository
	lifecycle    service.LifecycleService
	config       *config.Config
	clock        clock.Clock
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(reservations repository.ReservationRepository, lifecycle service.LifecycleService, cfg *config.Config, c clock.Clock) *JobRunner {
	if c == nil {
		c = clock.NewSystem()
	}
	return &JobRunner{
		reservations: reservations,
		lifecycle:    lifecycle,
		config:       cfg,
		clock:        c,
	}
}

// Config exposes the configuration the scheduler reads its schedules from
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Debug("Starting job", "job", jobName)
	jobFunc()
	logger.Debug("Job completed", "job", jobName)
}

// RunJob runs a single named job once (for manual execution)
func (jr *JobRunner) RunJob(name string) error {
	switch name {
	case JobExpireHolds:
		jr.ExpireHolds()
	default:
		return fmt.Errorf("unknown job: %s", name)
	}
	return nil
}
