package usecase

import (
	"context"
	"errors"
	"fmt"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
)

// Renderer turns source into a sandboxed preview document.
type Renderer interface {
	Render(source string, stack entity.TechStack) string
}

type FilesUsecase interface {
	GetFiles(ctx context.Context, runID string) ([]entity.GeneratedFile, error)
	Preview(ctx context.Context, runID string) (string, error)
	RenderSource(source string, stack entity.TechStack) (string, error)
}

var _ FilesUsecase = (*FileService)(nil)

type FileService struct {
	runs      repository.RunRepository
	files     repository.FileRepository
	artifacts repository.ArtifactStore
	renderer  Renderer
}

func NewFileService(
	runs repository.RunRepository,
	files repository.FileRepository,
	artifacts repository.ArtifactStore,
	renderer Renderer,
) *FileService {
	return &FileService{runs: runs, files: files, artifacts: artifacts, renderer: renderer}
}

func (s *FileService) GetFiles(ctx context.Context, runID string) ([]entity.GeneratedFile, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID is required")
	}
	files, err := s.files.GetFiles(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get files for run %s: %w", runID, err)
	}
	return files, nil
}

// Preview returns the stored preview of a run, rendering it again from the
// stored files when no artifact is kept.
func (s *FileService) Preview(ctx context.Context, runID string) (string, error) {
	if s.artifacts != nil {
		doc, err := s.artifacts.Preview(ctx, runID)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("get preview for run %s: %w", runID, err)
		}
	}

	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return "", fmt.Errorf("get run %s: %w", runID, err)
	}
	files, err := s.GetFiles(ctx, runID)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(files[0].Content, run.TechStack), nil
}

// RenderSource compiles arbitrary source of stack into a preview document.
func (s *FileService) RenderSource(source string, stack entity.TechStack) (string, error) {
	if !stack.Valid() {
		return "", &entity.ValidationError{Field: "tech_stack", Message: fmt.Sprintf("unknown stack %q", stack)}
	}
	return s.renderer.Render(source, stack), nil
}
