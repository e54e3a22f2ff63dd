package jobs

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	reconciliationJobName = "provider_reconciliation"
	reconciliationLockKey = "provider-reconciliation"
)

type ReconcileHandler interface {
	Handle(ctx context.Context, cmd commands.ReconcileProviderRegistrationsCommand) (commands.ReconcileResult, error)
}

type Schedule struct {
	Spec      string
	BatchSize int
	LockTTL   time.Duration
}

// ProviderReconciliationJob re-registers orders stuck without a provider
// order code.
type ProviderReconciliationJob struct {
	handler  ReconcileHandler
	lock     ports.JobLock
	metrics  *metrics.JobMetrics
	schedule Schedule
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewProviderReconciliationJob(
	handler ReconcileHandler,
	lock ports.JobLock,
	jobMetrics *metrics.JobMetrics,
	schedule Schedule,
	logger *zap.Logger,
) *ProviderReconciliationJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "provider_reconciliation_job"))
	return &ProviderReconciliationJob{
		handler:  handler,
		lock:     lock,
		metrics:  jobMetrics,
		schedule: schedule,
		cron:     newCron(logger),
		logger:   logger,
	}
}

func (j *ProviderReconciliationJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule.Spec, func() {
		if err := j.Run(context.Background()); err != nil {
			j.logger.Error("Provider reconciliation failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", j.schedule.Spec, err)
	}

	j.cron.Start()
	j.logger.Info("Provider reconciliation job started", zap.String("schedule", j.schedule.Spec))
	return nil
}

func (j *ProviderReconciliationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Provider reconciliation job stopped")
}

// Run performs one reconciliation pass. It returns nil without doing anything
// when another instance holds the lock.
func (j *ProviderReconciliationJob) Run(ctx context.Context) (err error) {
	release, acquired, err := j.lock.TryLock(ctx, reconciliationLockKey, j.schedule.LockTTL)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		j.logger.Debug("Reconciliation skipped, lock held by another instance")
		return nil
	}
	defer func() {
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
			j.logger.Warn("Failed to release reconciliation lock", zap.Error(relErr))
		}
	}()

	started := time.Now()
	defer func() { j.metrics.Observe(reconciliationJobName, time.Since(started), err) }()

	cmd, err := commands.NewReconcileProviderRegistrationsCommand(j.schedule.BatchSize)
	if err != nil {
		return err
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		return err
	}
	if result.Attempted > 0 {
		j.logger.Info("Provider reconciliation finished",
			zap.Int("attempted", result.Attempted),
			zap.Int("registered", result.Registered),
			zap.Int("failed", result.Failed),
		)
	}
	return nil
}
