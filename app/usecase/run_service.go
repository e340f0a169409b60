package usecase

import (
	"context"
	"errors"
	"fmt"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
)

type RunUsecase interface {
	GetRun(ctx context.Context, id string) (*entity.Run, error)
	ListRuns(ctx context.Context) ([]*entity.Run, error)
	DeleteRun(ctx context.Context, id string) error
}

var _ RunUsecase = (*RunService)(nil)

type RunService struct {
	runs      repository.RunRepository
	files     repository.FileRepository
	artifacts repository.ArtifactStore
}

func NewRunService(
	runs repository.RunRepository,
	files repository.FileRepository,
	artifacts repository.ArtifactStore,
) *RunService {
	return &RunService{
		runs:      runs,
		files:     files,
		artifacts: artifacts,
	}
}

func (u *RunService) GetRun(ctx context.Context, id string) (*entity.Run, error) {
	run, err := u.runs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

func (u *RunService) ListRuns(ctx context.Context) ([]*entity.Run, error) {
	return u.runs.List(ctx)
}

// DeleteRun removes a finished run together with its files and artifacts.
func (u *RunService) DeleteRun(ctx context.Context, id string) error {
	run, err := u.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if !run.IsFinished() && run.Status != entity.RunStatusPending {
		return ErrRunActive
	}

	if err := u.files.DeleteFiles(ctx, id); err != nil {
		return fmt.Errorf("delete files: %w", err)
	}
	if u.artifacts != nil {
		if err := u.artifacts.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("delete artifact: %w", err)
		}
	}
	if err := u.runs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

// ErrRunActive is returned when deleting a run that is still executing.
var ErrRunActive = errors.New("run is still executing")
