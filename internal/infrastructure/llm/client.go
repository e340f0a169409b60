package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
	"uistudio/internal/infrastructure/metrics"
)

// DefaultTimeout bounds a single collaborator call when no phase budget is given.
const DefaultTimeout = 60 * time.Second

// Client bounds every call to a backend by an explicit timeout, classifies its
// failures and strips code fences from its output.
type Client struct {
	backend repository.Collaborator
	phase   string
	timeout time.Duration
	logger  *slog.Logger
}

var _ repository.Collaborator = (*Client)(nil)

func NewClient(backend repository.Collaborator, phase string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{backend: backend, phase: phase, timeout: timeout, logger: logger}
}

func (c *Client) Name() string {
	if c.backend == nil {
		return "none"
	}
	return c.backend.Name()
}

type result struct {
	text string
	err  error
}

// Generate races the backend call against the client's timeout. The first of the
// two to finish decides the outcome; a late backend answer is dropped.
func (c *Client) Generate(ctx context.Context, prompt string, image *entity.Image) (string, error) {
	if c.backend == nil {
		return "", &entity.CollaboratorError{Kind: entity.ErrorKindMissingCredential, Op: c.phase, Err: errors.New("no collaborator configured")}
	}
	metrics.IncLLMRequest(c.backend.Name(), c.phase)
	start := time.Now()
	defer func() {
		metrics.ObserveLLMDuration(c.backend.Name(), c.phase, time.Since(start))
	}()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		text, err := c.backend.Generate(callCtx, prompt, image)
		done <- result{text: text, err: err}
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			err := Classify(c.phase, r.err)
			metrics.IncError("llm", string(entity.KindOf(err)))
			c.logger.Warn("collaborator call failed", "phase", c.phase, "backend", c.backend.Name(), "err", err)
			return "", err
		}
		return StripCodeFences(r.text), nil
	case <-timer.C:
		metrics.IncError("llm", string(entity.ErrorKindTimeout))
		return "", &entity.CollaboratorError{
			Kind: entity.ErrorKindTimeout,
			Op:   c.phase,
			Err:  fmt.Errorf("no answer after %s", c.timeout),
		}
	case <-ctx.Done():
		metrics.IncError("llm", "canceled")
		return "", Classify(c.phase, ctx.Err())
	}
}
