package repository

import (
	"context"

	"uistudio/internal/domain/entity"
)

// Collaborator is the external text/vision generation service.
type Collaborator interface {
	// Generate returns the raw model text for prompt, optionally grounded on image.
	Generate(ctx context.Context, prompt string, image *entity.Image) (string, error)
	Name() string
}
