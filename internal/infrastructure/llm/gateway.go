package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
	"uistudio/internal/infrastructure/metrics"
)

// GatewayCollaborator talks to an OpenAI-compatible chat endpoint over plain
// HTTP, for model gateways that the SDKs do not cover.
type GatewayCollaborator struct {
	apiKey      string
	baseURL     string
	model       string
	authHeader  string
	client      *http.Client
	temperature float64
}

var _ repository.Collaborator = (*GatewayCollaborator)(nil)

func NewGatewayCollaborator(apiKey, baseURL, model, authHeader string) (*GatewayCollaborator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &entity.CollaboratorError{Kind: entity.ErrorKindMissingCredential, Op: "gateway", Err: errors.New("api key is required")}
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("gateway base url is required")
	}
	if authHeader == "" {
		authHeader = "Authorization"
	}
	return &GatewayCollaborator{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		authHeader:  authHeader,
		client:      &http.Client{Timeout: 3 * time.Minute},
		temperature: 0.7,
	}, nil
}

func (g *GatewayCollaborator) Name() string { return "gateway:" + g.model }

func (g *GatewayCollaborator) Generate(ctx context.Context, prompt string, image *entity.Image) (string, error) {
	var content interface{} = prompt
	if image != nil && len(image.Data) > 0 {
		content = []map[string]interface{}{
			{"type": "text", "text": prompt},
			{"type": "image_url", "image_url": map[string]string{"url": dataURL(image)}},
		}
	}

	request := map[string]interface{}{
		"model": g.model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": content,
			},
		},
		"temperature": g.temperature,
	}

	response, err := g.makeRequest(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to make gateway request: %w", err)
	}

	text, err := g.parseResponse(response)
	if err != nil {
		metrics.IncError("llm", "parse_response")
		return "", fmt.Errorf("failed to parse gateway response: %w", err)
	}
	return text, nil
}

func (g *GatewayCollaborator) makeRequest(ctx context.Context, request map[string]interface{}) (map[string]interface{}, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		metrics.IncError("llm", "marshal_request")
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		metrics.IncError("llm", "create_request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(g.authHeader, "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		metrics.IncError("llm", "http_do")
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		err := resp.Body.Close()
		if err != nil {
			log.Printf("close body err: %s", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		metrics.IncError("llm", fmt.Sprintf("api_error_%d", resp.StatusCode))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var response map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		metrics.IncError("llm", "decode_response")
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return response, nil
}

func (g *GatewayCollaborator) parseResponse(response map[string]interface{}) (string, error) {
	choices, ok := response["choices"].([]interface{})
	if !ok || len(choices) == 0 {
		return "", fmt.Errorf("invalid response format: no choices")
	}

	choice, ok := choices[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid response format: invalid choice")
	}

	message, ok := choice["message"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid response format: no message")
	}

	content, ok := message["content"].(string)
	if !ok {
		return "", fmt.Errorf("invalid response format: no content")
	}

	return strings.TrimSpace(content), nil
}
