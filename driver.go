package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/hoseok0727-sudo/subculture/config"
	"github.com/hoseok0727-sudo/subculture/dispatch"
)

type ingestRunner interface {
	RunDueSources(ctx context.Context) (int, error)
}

type dispatchRunner interface {
	DispatchDue(ctx context.Context, limit int) (dispatch.Summary, error)
}

// Driver runs the periodic pipeline: ingest due sources, then dispatch due
// schedules. Phases run sequentially within a tick. Overlapping ticks from
// multiple processes are safe because the content hash gate, the canonical
// event upsert, the dedupe keys and the locked schedule claim all make the
// work idempotent.
type Driver struct {
	pipeline   ingestRunner
	dispatcher dispatchRunner
	logger     *slog.Logger
}

func NewDriver(pipeline ingestRunner, dispatcher dispatchRunner, logger *slog.Logger) *Driver {
	return &Driver{
		pipeline:   pipeline,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (d *Driver) Start(ctx context.Context) {
	d.runTick(ctx)

	interval := time.Duration(config.Config.DriverIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runTick(ctx)
		}
	}
}

func (d *Driver) runTick(ctx context.Context) {
	if err := d.tick(ctx); err != nil {
		d.logger.Error("driver tick failed", "error", err)
	}
}

func (d *Driver) tick(ctx context.Context) error {
	processed, err := d.pipeline.RunDueSources(ctx)
	if err != nil {
		return errors.Wrap(err, "driver: run due sources")
	}
	if processed > 0 {
		d.logger.Info("ingest phase finished", "sources", processed)
	}

	summary, err := d.dispatcher.DispatchDue(ctx, config.Config.DispatchBatchLimit)
	if err != nil {
		return errors.Wrap(err, "driver: dispatch due")
	}
	if summary.Picked > 0 {
		d.logger.Info("dispatch phase finished",
			"picked", summary.Picked,
			"sent", summary.Sent,
			"failed", summary.Failed)
	}

	return nil
}
