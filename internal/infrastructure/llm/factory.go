package llm

import (
	"context"
	"fmt"
	"strings"

	"uistudio/internal/domain/repository"
)

// Settings selects and configures a collaborator backend.
type Settings struct {
	Provider   string // gemini, openai, gateway, mock
	Model      string
	APIKey     string
	BaseURL    string
	AuthHeader string
}

// New builds the backend named by s.Provider.
func New(ctx context.Context, s Settings) (repository.Collaborator, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", "gemini":
		return NewGeminiCollaborator(ctx, s.APIKey, s.Model)
	case "openai":
		return NewOpenAICollaborator(s.APIKey, s.BaseURL, s.Model)
	case "gateway":
		return NewGatewayCollaborator(s.APIKey, s.BaseURL, s.Model, s.AuthHeader)
	case "mock":
		return MockCollaborator{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
	}
}
