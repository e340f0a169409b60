package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
	"uistudio/internal/infrastructure/metrics"
	"uistudio/internal/preview"
	"uistudio/internal/stream"
)

// Pipeline runs one request to completion, streaming its stages to sink.
type Pipeline interface {
	Run(ctx context.Context, runID string, req entity.Request, sink stream.Sink) entity.PipelineStage
}

type GenerationUsecase interface {
	Generate(ctx context.Context, req entity.Request, sink stream.Sink) (*entity.Run, error)
	Submit(ctx context.Context, req entity.Request) (*entity.Run, error)
	Execute(ctx context.Context, run *entity.Run, sink stream.Sink) entity.PipelineStage
}

var _ GenerationUsecase = (*GenerationService)(nil)

const persistTimeout = 15 * time.Second

type GenerationService struct {
	runs      repository.RunRepository
	files     repository.FileRepository
	artifacts repository.ArtifactStore
	pipeline  Pipeline
	logger    *slog.Logger
}

// NewGenerationService wires the generation flow. artifacts may be nil.
func NewGenerationService(
	runs repository.RunRepository,
	files repository.FileRepository,
	artifacts repository.ArtifactStore,
	pipeline Pipeline,
	logger *slog.Logger,
) *GenerationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationService{
		runs:      runs,
		files:     files,
		artifacts: artifacts,
		pipeline:  pipeline,
		logger:    logger,
	}
}

// Generate validates req, records a run and executes it synchronously. Validation
// errors are returned before anything is stored or streamed. The run is stored
// as running so the worker never picks it up.
func (s *GenerationService) Generate(ctx context.Context, req entity.Request, sink stream.Sink) (*entity.Run, error) {
	run, err := s.create(ctx, req, entity.RunStatusRunning)
	if err != nil {
		return nil, err
	}
	s.Execute(ctx, run, sink)
	return run, nil
}

// Submit validates req and stores it as a pending run for the background worker.
func (s *GenerationService) Submit(ctx context.Context, req entity.Request) (*entity.Run, error) {
	return s.create(ctx, req, entity.RunStatusPending)
}

func (s *GenerationService) create(ctx context.Context, req entity.Request, status entity.RunStatus) (*entity.Run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	run := entity.NewRun(req)
	if status != run.Status {
		s.transition(run, status)
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	metrics.IncRunsCreated(run.Mode, run.TechStack.String())
	s.logger.Info("run created", "run_id", run.ID, "mode", run.Mode, "stack", run.TechStack)
	return run, nil
}

// Execute runs the pipeline for run and stores its outcome. It returns the last
// stage the pipeline emitted.
func (s *GenerationService) Execute(ctx context.Context, run *entity.Run, sink stream.Sink) entity.PipelineStage {
	start := time.Now()
	metrics.IncActiveRuns()
	defer metrics.DecActiveRuns()

	if run.Status != entity.RunStatusRunning {
		s.transition(run, entity.RunStatusRunning)
		if err := s.runs.Update(ctx, run); err != nil {
			s.logger.Warn("failed to mark run running", "run_id", run.ID, "err", err)
		}
	}

	last := s.pipeline.Run(ctx, run.ID, run.Request, sink)

	from := run.Status
	run.Finish(last)
	if run.Title == "" {
		// Image runs have no prompt to name them by.
		run.Title = preview.Title(last.Preview)
	}
	metrics.IncRunStatusChange(string(from), string(run.Status))
	metrics.ObserveRunDuration(run.TechStack.String(), string(run.Status), time.Since(start))

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if run.Status == entity.RunStatusCompleted {
		if err := s.persist(persistCtx, run, last); err != nil {
			s.logger.Error("failed to persist run output", "run_id", run.ID, "err", err)
		}
	}
	if err := s.runs.Update(persistCtx, run); err != nil {
		s.logger.Error("failed to update run", "run_id", run.ID, "err", err)
	}

	s.logger.Info("run finished",
		"run_id", run.ID,
		"status", run.Status,
		"error_kind", run.ErrorKind,
		"duration", time.Since(start),
	)
	return last
}

func (s *GenerationService) persist(ctx context.Context, run *entity.Run, last entity.PipelineStage) error {
	var errs []error
	if err := s.files.SaveFiles(ctx, run.ID, last.Files); err != nil {
		errs = append(errs, fmt.Errorf("save files: %w", err))
	}
	if s.artifacts != nil {
		artifact := entity.Artifact{
			RunID:     run.ID,
			TechStack: run.TechStack,
			Files:     last.Files,
			Preview:   last.Preview,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.artifacts.Put(ctx, artifact); err != nil {
			errs = append(errs, fmt.Errorf("put artifact: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *GenerationService) transition(run *entity.Run, to entity.RunStatus) {
	metrics.IncRunStatusChange(string(run.Status), string(to))
	run.UpdateStatus(to)
}
