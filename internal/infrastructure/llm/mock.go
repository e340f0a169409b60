package llm

import (
	"context"
	"strings"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
)

// MockCollaborator answers without calling any model, for local runs. Layout
// analysis requests get a fixed JSON answer; everything else gets an empty reply,
// which makes the pipeline fall back to its templates.
type MockCollaborator struct{}

var _ repository.Collaborator = MockCollaborator{}

func (MockCollaborator) Name() string { return "mock" }

func (MockCollaborator) Generate(_ context.Context, prompt string, _ *entity.Image) (string, error) {
	if strings.Contains(prompt, `"sections"`) {
		return "```json\n" + `{"sections":["hero","features","pricing","footer"],"navigation":"topnav","pageType":"landing","pages":1}` + "\n```", nil
	}
	return "", nil
}
