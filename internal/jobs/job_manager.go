package jobs

import (
	"errors"
	"fmt"
)

type scheduledJob interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	reconciliationJob *ProviderReconciliationJob
	relayJob          *OutboxRelayJob
}

func NewJobManager(reconciliationJob *ProviderReconciliationJob, relayJob *OutboxRelayJob) (*JobManager, error) {
	if reconciliationJob == nil || relayJob == nil {
		return nil, errors.New("job manager needs every job")
	}
	return &JobManager{reconciliationJob: reconciliationJob, relayJob: relayJob}, nil
}

func (jm *JobManager) jobs() []scheduledJob {
	return []scheduledJob{jm.relayJob, jm.reconciliationJob}
}

// StartAll starts all scheduled jobs. If one fails to start, the jobs already
// started are stopped.
func (jm *JobManager) StartAll() error {
	started := make([]scheduledJob, 0, 2)
	for _, job := range jm.jobs() {
		if err := job.Start(); err != nil {
			for _, s := range started {
				s.Stop()
			}
			return fmt.Errorf("failed to start %T: %w", job, err)
		}
		started = append(started, job)
	}
	return nil
}

// StopAll stops all scheduled jobs and waits for running ticks to finish.
func (jm *JobManager) StopAll() {
	for _, job := range jm.jobs() {
		job.Stop()
	}
}
