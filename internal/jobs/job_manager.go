package jobs

import (
	"fmt"

	"fulfillment/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	backlogSweepJob *BacklogSweepJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(sweepHandler commands.SweepReadyOrdersCommandHandler, sweepSchedule string) *JobManager {
	return &JobManager{
		backlogSweepJob: NewBacklogSweepJob(sweepHandler, sweepSchedule),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.backlogSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start backlog sweep job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.backlogSweepJob.Stop()
}

// KickBacklogSweep triggers an immediate backlog sweep outside the schedule.
func (jm *JobManager) KickBacklogSweep() {
	jm.backlogSweepJob.Kick()
}
