package repository

import (
	"context"

	"uistudio/internal/domain/entity"
)

// RunRepository is the storage port for generation runs.
type RunRepository interface {
	Create(ctx context.Context, run *entity.Run) error
	GetByID(ctx context.Context, id string) (*entity.Run, error)
	List(ctx context.Context) ([]*entity.Run, error)
	ListByStatus(ctx context.Context, status entity.RunStatus) ([]*entity.Run, error)
	Update(ctx context.Context, run *entity.Run) error
	UpdateStatus(ctx context.Context, id string, status entity.RunStatus) error
	Delete(ctx context.Context, id string) error
}
