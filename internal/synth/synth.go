// Package synth builds per-stack generation directives, normalizes collaborator
// output and owns the deterministic fallback templates.
package synth

import (
	"context"
	"fmt"
	"strings"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
)

// Minimum plausible scaffold lengths. Shorter collaborator output is replaced
// by the fallback template.
const (
	MarkupMinLength    = 500
	ComponentMinLength = 200
)

// Synthesizer is the strategy for one target stack.
type Synthesizer interface {
	Stack() entity.TechStack
	// Format names the source format in directives, e.g. "HTML document".
	Format() string
	MinLength() int
	Directive(in Input) string
	Normalize(raw string) string
	Fallback(in Input) string
	// Accepts reports whether a styled rewrite is still a valid source of this stack.
	Accepts(source string) bool
	Files(source string) []entity.GeneratedFile
}

var registry = map[entity.TechStack]Synthesizer{
	entity.StackHTML:   markup{},
	entity.StackReact:  component{stack: entity.StackReact},
	entity.StackNextJS: component{stack: entity.StackNextJS},
	entity.StackVue:    singleFile{stack: entity.StackVue},
	entity.StackSvelte: singleFile{stack: entity.StackSvelte},
}

// For returns the synthesizer of stack.
func For(stack entity.TechStack) (Synthesizer, error) {
	s, ok := registry[stack]
	if !ok {
		return nil, fmt.Errorf("no synthesizer for stack %q", stack)
	}
	return s, nil
}

// Result is a settled scaffold.
type Result struct {
	Source   string
	Fallback bool
}

// Scaffold asks the collaborator for a first version and settles it. Collaborator
// failures are returned; implausible output is not an error.
func Scaffold(ctx context.Context, s Synthesizer, collab repository.Collaborator, in Input) (Result, error) {
	raw, err := collab.Generate(ctx, s.Directive(in), in.Image)
	if err != nil {
		return Result{}, fmt.Errorf("scaffold %s: %w", s.Stack(), err)
	}
	return Settle(s, raw, in), nil
}

// Settle normalizes raw output, or substitutes the fallback template when raw is
// shorter than the stack's minimum length.
func Settle(s Synthesizer, raw string, in Input) Result {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < s.MinLength() {
		return Result{Source: s.Fallback(in), Fallback: true}
	}
	return Result{Source: s.Normalize(trimmed)}
}
