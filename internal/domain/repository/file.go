package repository

import (
	"context"
	"errors"

	"uistudio/internal/domain/entity"
)

// ErrNotFound is returned by stores when nothing is kept for a run.
var ErrNotFound = errors.New("not found")

// FileRepository stores the generated files of completed runs.
type FileRepository interface {
	SaveFiles(ctx context.Context, runID string, files []entity.GeneratedFile) error
	GetFiles(ctx context.Context, runID string) ([]entity.GeneratedFile, error)
	DeleteFiles(ctx context.Context, runID string) error
}

// ArtifactStore keeps a browsable copy of a run's files and rendered preview.
type ArtifactStore interface {
	Put(ctx context.Context, artifact entity.Artifact) error
	Preview(ctx context.Context, runID string) (string, error)
	Delete(ctx context.Context, runID string) error
}
