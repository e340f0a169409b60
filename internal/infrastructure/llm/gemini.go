package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiCollaborator calls the Gemini API through the official genai client. The
// optional image is sent inline next to the prompt.
type GeminiCollaborator struct {
	cli   *genai.Client
	model string
}

var _ repository.Collaborator = (*GeminiCollaborator)(nil)

func NewGeminiCollaborator(ctx context.Context, apiKey, model string) (*GeminiCollaborator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &entity.CollaboratorError{Kind: entity.ErrorKindMissingCredential, Op: "gemini", Err: errors.New("api key is required")}
	}
	if model == "" {
		model = defaultGeminiModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiCollaborator{cli: cli, model: model}, nil
}

func (g *GeminiCollaborator) Name() string { return "gemini:" + g.model }

func (g *GeminiCollaborator) Generate(ctx context.Context, prompt string, image *entity.Image) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if image != nil && len(image.Data) > 0 {
		parts = append(parts, genai.NewPartFromBytes(image.Data, image.MimeType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
