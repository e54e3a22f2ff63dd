package jobs

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const relayJobName = "outbox_relay"

type RelayHandler interface {
	Handle(ctx context.Context, cmd commands.RelayOutboxEventsCommand) (commands.RelayResult, error)
}

// OutboxRelayJob drains pending outbox events to the broker. A full batch is
// followed by another pass in the same tick.
type OutboxRelayJob struct {
	handler  RelayHandler
	metrics  *metrics.JobMetrics
	schedule Schedule
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewOutboxRelayJob(
	handler RelayHandler,
	jobMetrics *metrics.JobMetrics,
	schedule Schedule,
	logger *zap.Logger,
) *OutboxRelayJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "outbox_relay_job"))
	return &OutboxRelayJob{
		handler:  handler,
		metrics:  jobMetrics,
		schedule: schedule,
		cron:     newCron(logger),
		logger:   logger,
	}
}

func (j *OutboxRelayJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule.Spec, func() {
		if err := j.Run(context.Background()); err != nil {
			j.logger.Error("Outbox relay failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", j.schedule.Spec, err)
	}

	j.cron.Start()
	j.logger.Info("Outbox relay job started", zap.String("schedule", j.schedule.Spec))
	return nil
}

func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Outbox relay job stopped")
}

// Run relays batches until one comes back short or fails.
func (j *OutboxRelayJob) Run(ctx context.Context) (err error) {
	started := time.Now()
	defer func() { j.metrics.Observe(relayJobName, time.Since(started), err) }()

	cmd, err := commands.NewRelayOutboxEventsCommand(j.schedule.BatchSize)
	if err != nil {
		return err
	}

	total := 0
	for ctx.Err() == nil {
		result, runErr := j.handler.Handle(ctx, cmd)
		total += result.Published
		if runErr != nil {
			return runErr
		}
		if result.Fetched < cmd.BatchSize() {
			break
		}
	}
	if total > 0 {
		j.logger.Debug("Outbox events relayed", zap.Int("published", total))
	}
	return nil
}
