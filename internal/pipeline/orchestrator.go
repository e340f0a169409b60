// Package pipeline runs one generation request through the analyzing,
// scaffold, styling and complete stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
	"uistudio/internal/infrastructure/metrics"
	"uistudio/internal/stream"
	"uistudio/internal/synth"
)

// Progress of each emitted record.
const (
	ProgressAnalysisStarted = 5
	ProgressAnalysisDone    = 20
	ProgressScaffold        = 45
	ProgressStyling         = 75
	ProgressComplete        = 100
)

// Timeouts are the per-phase and whole-run budgets.
type Timeouts struct {
	Analysis time.Duration
	Scaffold time.Duration
	Styling  time.Duration
	Run      time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Analysis: 30 * time.Second,
		Scaffold: 90 * time.Second,
		Styling:  60 * time.Second,
		Run:      120 * time.Second,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	d := DefaultTimeouts()
	if t.Analysis <= 0 {
		t.Analysis = d.Analysis
	}
	if t.Scaffold <= 0 {
		t.Scaffold = d.Scaffold
	}
	if t.Styling <= 0 {
		t.Styling = d.Styling
	}
	if t.Run <= 0 {
		t.Run = d.Run
	}
	return t
}

// Collaborators holds the collaborator used by each phase.
type Collaborators struct {
	Analysis repository.Collaborator
	Scaffold repository.Collaborator
	Styling  repository.Collaborator
}

// Shared uses c for every phase.
func Shared(c repository.Collaborator) Collaborators {
	return Collaborators{Analysis: c, Scaffold: c, Styling: c}
}

// Renderer turns a source into a sandboxed preview document.
type Renderer interface {
	Render(source string, stack entity.TechStack) string
}

type Orchestrator struct {
	collabs  Collaborators
	renderer Renderer
	timeouts Timeouts
	logger   *slog.Logger
}

func NewOrchestrator(collabs Collaborators, renderer Renderer, timeouts Timeouts, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		collabs:  collabs,
		renderer: renderer,
		timeouts: timeouts.withDefaults(),
		logger:   logger,
	}
}

// Run executes req and sends every stage record to sink. It always returns the
// last record it managed to send: a complete record on success or failure, or
// an earlier one when the sink was closed by the consumer.
func (o *Orchestrator) Run(ctx context.Context, runID string, req entity.Request, sink stream.Sink) (last entity.PipelineStage) {
	ctx, cancel := context.WithTimeout(ctx, o.timeouts.Run)
	defer cancel()

	r := &run{
		o:      o,
		id:     runID,
		req:    req,
		sink:   sink,
		logger: o.logger.With("run_id", runID, "stack", req.Config.TechStack, "mode", req.Mode()),
	}
	defer func() {
		if p := recover(); p != nil {
			metrics.IncError("pipeline", "panic")
			r.logger.Error("pipeline panic", "panic", p, "stack_trace", string(debug.Stack()))
			r.fail(fmt.Errorf("internal error: %v", p))
		}
		last = r.last
	}()

	if err := r.execute(ctx); err != nil {
		r.fail(err)
	}
	return r.last
}

type run struct {
	o      *Orchestrator
	id     string
	req    entity.Request
	sink   stream.Sink
	logger *slog.Logger

	last   entity.PipelineStage
	closed bool
	stack  entity.TechStack
	source string
	files  []entity.GeneratedFile
}

// errSinkClosed ends execute without an error record.
var errSinkClosed = errors.New("sink closed")

func (r *run) execute(ctx context.Context) error {
	if err := r.req.Validate(); err != nil {
		return err
	}
	s, err := synth.For(r.req.Config.TechStack)
	if err != nil {
		return &entity.ValidationError{Field: "config.tech_stack", Message: err.Error()}
	}
	r.stack = s.Stack()

	if err := r.emit(entity.PipelineStage{Stage: entity.StageAnalyzing, Progress: ProgressAnalysisStarted, Message: "Analyzing layout"}); err != nil {
		return err
	}
	analysis := r.analyze(ctx)
	if err := r.emit(entity.PipelineStage{
		Stage:    entity.StageAnalyzing,
		Progress: ProgressAnalysisDone,
		Message:  fmt.Sprintf("Layout analyzed: %s with %d sections", analysis.PageType, len(analysis.Sections)),
	}); err != nil {
		return err
	}

	if r.o.collabs.Scaffold == nil {
		return &entity.CollaboratorError{Kind: entity.ErrorKindMissingCredential, Op: "scaffold", Err: errors.New("no collaborator configured")}
	}
	in := synth.Input{Config: r.req.Config, Analysis: analysis, Prompt: r.req.Prompt, Image: r.req.Image}
	scaffoldCtx, cancel := context.WithTimeout(ctx, r.o.timeouts.Scaffold)
	res, err := synth.Scaffold(scaffoldCtx, s, r.o.collabs.Scaffold, in)
	cancel()
	if err != nil {
		return err
	}
	message := "Scaffold generated"
	if res.Fallback {
		metrics.IncScaffoldFallback(r.stack.String())
		r.logger.Warn("scaffold output too short, using fallback template")
		message = "Scaffold generated from template"
	}
	r.setSource(s, res.Source)
	if err := r.emit(r.withCode(entity.PipelineStage{Stage: entity.StageScaffold, Progress: ProgressScaffold, Message: message}, r.stack.IsMarkup())); err != nil {
		return err
	}

	styled, outcome, err := r.style(ctx, s)
	if err != nil {
		return err
	}
	metrics.IncStylingOutcome(outcome)
	r.setSource(s, styled)
	if err := r.emit(r.withCode(entity.PipelineStage{Stage: entity.StageStyling, Progress: ProgressStyling, Message: stylingMessage(outcome)}, r.stack.IsMarkup())); err != nil {
		return err
	}

	return r.emit(r.withCode(entity.PipelineStage{Stage: entity.StageComplete, Progress: ProgressComplete, Message: "Generation complete"}, true))
}

// analyze never fails: unusable answers fall back to a default layout.
func (r *run) analyze(ctx context.Context) entity.Analysis {
	cfg := r.req.Config
	analysis, ok := entity.Analysis{}, false

	if r.o.collabs.Analysis != nil {
		actx, cancel := context.WithTimeout(ctx, r.o.timeouts.Analysis)
		text, err := r.o.collabs.Analysis.Generate(actx, analysisDirective(r.req), r.req.Image)
		cancel()
		if err != nil {
			r.logger.Warn("layout analysis failed", "error", err)
		} else {
			analysis, ok = parseAnalysis(text)
		}
	}
	if !ok && r.req.Image == nil {
		analysis, ok = classifyPrompt(r.req.Prompt)
	}
	if !ok {
		metrics.IncAnalysisDefault()
		r.logger.Info("using default layout analysis")
		analysis = entity.DefaultAnalysis()
	}

	if len(cfg.Page.Sections) > 0 {
		analysis.Sections = append([]string(nil), cfg.Page.Sections...)
	}
	if nav := strings.TrimSpace(cfg.Page.Navigation); nav != "" {
		analysis.Navigation = nav
	}
	if pt := strings.TrimSpace(cfg.Page.Type); pt != "" {
		analysis.PageType = pt
	}
	return analysis
}

// style runs the optional polish pass. Only an exhausted run budget is fatal;
// any other failure keeps the scaffold.
func (r *run) style(ctx context.Context, s synth.Synthesizer) (string, string, error) {
	if alreadyStyled(r.source) {
		return r.source, stylingSkipped, nil
	}
	if r.o.collabs.Styling == nil {
		return r.source, stylingSkipped, nil
	}

	sctx, cancel := context.WithTimeout(ctx, r.o.timeouts.Styling)
	text, err := r.o.collabs.Styling.Generate(sctx, synth.StylingDirective(s, r.req.Config, r.source), nil)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return "", stylingFailed, fmt.Errorf("styling: %w", err)
		}
		r.logger.Warn("styling failed, keeping scaffold", "error", err)
		return r.source, stylingFailed, nil
	}

	styled := strings.TrimSpace(text)
	if len(styled) < len(r.source)/2 || !s.Accepts(styled) {
		r.logger.Info("styled output rejected", "scaffold_bytes", len(r.source), "styled_bytes", len(styled))
		return r.source, stylingRejected, nil
	}
	return s.Normalize(styled), stylingApplied, nil
}

func stylingMessage(outcome string) string {
	switch outcome {
	case stylingApplied:
		return "Styles enhanced"
	case stylingSkipped:
		return "Styles already complete"
	}
	return "Kept scaffold styles"
}

func (r *run) setSource(s synth.Synthesizer, source string) {
	r.source = source
	r.files = s.Files(source)
}

// withCode attaches the current source to stage, and a rendered preview when
// withPreview is set.
func (r *run) withCode(stage entity.PipelineStage, withPreview bool) entity.PipelineStage {
	stage.Code = r.source
	stage.Files = r.files
	if withPreview && r.o.renderer != nil && r.source != "" {
		stage.Preview = r.o.renderer.Render(r.source, r.stack)
	}
	return stage
}

func (r *run) emit(stage entity.PipelineStage) error {
	if r.closed {
		return errSinkClosed
	}
	stage.RunID = r.id
	if err := r.sink.Send(stage); err != nil {
		if errors.Is(err, stream.ErrClosed) {
			r.closed = true
			r.logger.Info("consumer left, stopping run", "stage", stage.Stage)
			return errSinkClosed
		}
		return fmt.Errorf("send %s stage: %w", stage.Stage, err)
	}
	metrics.IncStageEmitted(string(stage.Stage))
	r.last = stage
	return nil
}

// fail sends the error variant of the complete stage, keeping the last good
// source so the consumer still has something to show.
func (r *run) fail(err error) {
	if errors.Is(err, errSinkClosed) || r.closed {
		return
	}
	if errors.Is(err, context.DeadlineExceeded) && entity.KindOf(err) == entity.ErrorKindUnavailable {
		err = &entity.CollaboratorError{Kind: entity.ErrorKindTimeout, Op: "run", Err: err}
	}
	kind := entity.KindOf(err)
	metrics.IncError("pipeline", string(kind))
	r.logger.Error("run failed", "error", err, "kind", kind)

	stage := entity.PipelineStage{
		Stage:     entity.StageComplete,
		Progress:  ProgressComplete,
		Message:   "Generation failed",
		Error:     entity.FriendlyMessage(err),
		ErrorKind: kind,
	}
	if r.source != "" {
		stage = r.withCode(stage, true)
	}
	if sendErr := r.emit(stage); sendErr != nil && !errors.Is(sendErr, errSinkClosed) {
		r.logger.Error("failed to send error stage", "error", sendErr)
	}
}
