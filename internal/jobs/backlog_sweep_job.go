package jobs

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/pkg/logger"
)

// BacklogSweepJob periodically re-broadcasts ready orders that still have no
// rider. A single sweep runs at a time: ticks and kicks that arrive while a
// sweep is in flight are skipped instead of piling up.
type BacklogSweepJob struct {
	handler  commands.SweepReadyOrdersCommandHandler
	cron     *cron.Cron
	schedule string
	running  atomic.Bool
}

// NewBacklogSweepJob creates the sweep job. The schedule is a six-field cron
// expression, for example "*/30 * * * * *" for every thirty seconds.
func NewBacklogSweepJob(handler commands.SweepReadyOrdersCommandHandler, schedule string) *BacklogSweepJob {
	return &BacklogSweepJob{
		handler:  handler,
		cron:     cron.New(cron.WithSeconds()),
		schedule: schedule,
	}
}

// Start begins the periodic sweep.
func (j *BacklogSweepJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	logger.L().Info("backlog sweep job started", zap.String("schedule", j.schedule))
	return nil
}

// Stop stops the periodic sweep. A sweep already in flight finishes.
func (j *BacklogSweepJob) Stop() {
	j.cron.Stop()
	logger.L().Info("backlog sweep job stopped")
}

// Kick runs a sweep immediately in the background, skipping the wait for the
// next scheduled tick. Used when a courier comes online.
func (j *BacklogSweepJob) Kick() {
	go j.run(context.Background())
}

func (j *BacklogSweepJob) run(ctx context.Context) {
	if !j.running.CompareAndSwap(false, true) {
		return
	}
	defer j.running.Store(false)

	cmd := commands.NewSweepReadyOrdersCommand()
	if _, err := j.handler.Handle(ctx, cmd); err != nil {
		logger.L().Error("backlog sweep failed", zap.Error(err))
	}
}
