package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
)

const defaultOpenAIModel = "gpt-4o"

// OpenAICollaborator uses chat completions; images travel as data URLs.
type OpenAICollaborator struct {
	client openai.Client
	model  string
}

var _ repository.Collaborator = (*OpenAICollaborator)(nil)

func NewOpenAICollaborator(apiKey, baseURL, model string) (*OpenAICollaborator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &entity.CollaboratorError{Kind: entity.ErrorKindMissingCredential, Op: "openai", Err: errors.New("api key is required")}
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAICollaborator{client: openai.NewClient(opts...), model: model}, nil
}

func (o *OpenAICollaborator) Name() string { return "openai:" + o.model }

func (o *OpenAICollaborator) Generate(ctx context.Context, prompt string, image *entity.Image) (string, error) {
	var msg openai.ChatCompletionMessageParamUnion
	if image != nil && len(image.Data) > 0 {
		msg = openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(prompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: dataURL(image),
			}),
		})
	} else {
		msg = openai.UserMessage(prompt)
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{msg},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func dataURL(image *entity.Image) string {
	return "data:" + image.MimeType + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
}
