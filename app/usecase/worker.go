package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
	"uistudio/internal/stream"
)

// Worker executes runs submitted without a live stream. It polls the run store
// for pending runs and records each stage's progress on the run.
type Worker struct {
	runs        repository.RunRepository
	gen         GenerationUsecase
	logger      *slog.Logger
	interval    time.Duration
	concurrency int

	stop    chan struct{}
	stopped chan struct{}
}

func NewWorker(
	runs repository.RunRepository,
	gen GenerationUsecase,
	interval time.Duration,
	concurrency int,
	logger *slog.Logger,
) *Worker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		runs:        runs,
		gen:         gen,
		logger:      logger,
		interval:    interval,
		concurrency: concurrency,
		stop:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.stopped)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.logger.Info("run worker started", "interval", w.interval, "concurrency", w.concurrency)

		if err := w.RunOnce(ctx); err != nil {
			w.logger.Warn("initial poll failed", "err", err)
		}

		for {
			select {
			case <-ctx.Done():
				w.logger.Info("run worker context canceled")
				return
			case <-w.stop:
				w.logger.Info("run worker stopped")
				return
			case <-ticker.C:
				if err := w.RunOnce(ctx); err != nil {
					w.logger.Warn("poll failed", "err", err)
				}
			}
		}
	}()
}

// Stop ends the polling loop and waits for the runs in flight.
func (w *Worker) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
	<-w.stopped
}

// RunOnce executes every currently pending run, at most concurrency at a time.
func (w *Worker) RunOnce(ctx context.Context) error {
	pending, err := w.runs.ListByStatus(ctx, entity.RunStatusPending)
	if err != nil {
		return fmt.Errorf("list pending runs: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}
	w.logger.Debug("found pending runs", "count", len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, run := range pending {
		g.Go(func() error {
			w.gen.Execute(gctx, run, w.progressSink(gctx, run))
			return nil
		})
	}
	return g.Wait()
}

// progressSink stores each non-terminal stage's progress on the run.
func (w *Worker) progressSink(ctx context.Context, run *entity.Run) stream.Sink {
	return stream.SinkFunc(func(stage entity.PipelineStage) error {
		if stage.Terminal() {
			return nil
		}
		run.Progress = stage.Progress
		if err := w.runs.Update(ctx, run); err != nil {
			w.logger.Warn("failed to record progress", "run_id", run.ID, "err", err)
		}
		return nil
	})
}
