package cron

import (
	"context"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
)

// SyncJobs re-dispatches pending sync items the dispatch queue may have lost.
type SyncJobs struct {
	engine   erpsync.Engine
	interval time.Duration
}

func NewSyncJobs(engine erpsync.Engine, interval time.Duration) *SyncJobs {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SyncJobs{engine: engine, interval: interval}
}

func (j *SyncJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("sync_queue_sweep", j.interval, j.Sweep)
}

func (j *SyncJobs) Sweep(ctx context.Context) error {
	_, err := j.engine.Sweep(ctx)
	return err
}
