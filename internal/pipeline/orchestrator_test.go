package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uistudio/internal/domain/entity"
	"uistudio/internal/preview"
	"uistudio/internal/sandbox"
	"uistudio/internal/stream"
	"uistudio/internal/synth"
)

type stubCollaborator struct {
	mu      sync.Mutex
	prompts []string
	reply   func(ctx context.Context, prompt string) (string, error)
}

func reply(text string, err error) *stubCollaborator {
	return &stubCollaborator{reply: func(context.Context, string) (string, error) { return text, err }}
}

func (s *stubCollaborator) Name() string { return "stub" }

func (s *stubCollaborator) Generate(ctx context.Context, prompt string, _ *entity.Image) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	return s.reply(ctx, prompt)
}

func (s *stubCollaborator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func (s *stubCollaborator) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

type recorder struct {
	stages []entity.PipelineStage
}

func (r *recorder) Send(stage entity.PipelineStage) error {
	r.stages = append(r.stages, stage)
	return nil
}

const analysisJSON = `{"sections":["hero","features","footer"],"navigation":"topnav","pageType":"landing","pages":1}`

func document(body string) string {
	return "<!DOCTYPE html>\n<html lang=\"en\">\n<head><title>Notes</title></head>\n<body>\n" + body + "\n</body>\n</html>"
}

func scaffoldHTML() string {
	return document(strings.Repeat("<section class=\"p-8\"><h2>Section</h2><p>Plain text content.</p></section>\n", 12))
}

func textRequest(stack entity.TechStack) entity.Request {
	return entity.Request{
		Config: entity.GenerationConfig{TechStack: stack},
		Prompt: "A landing page for a note taking app",
	}
}

func newOrchestrator(t *testing.T, c Collaborators, timeouts Timeouts) *Orchestrator {
	t.Helper()
	r, err := preview.NewRenderer(16, nil)
	require.NoError(t, err)
	return NewOrchestrator(c, r, timeouts, nil)
}

func assertWellFormed(t *testing.T, stages []entity.PipelineStage) {
	t.Helper()
	require.NotEmpty(t, stages)
	for i := 1; i < len(stages); i++ {
		assert.True(t, stream.Ordered(stages[i-1], stages[i]), "stage %d goes backwards", i)
	}
	terminal := 0
	for _, s := range stages {
		if s.Terminal() {
			terminal++
		}
	}
	assert.Equal(t, 1, terminal)
	assert.True(t, stages[len(stages)-1].Terminal())
}

func TestRunSuccess(t *testing.T) {
	scaffold := scaffoldHTML()
	styled := strings.Replace(scaffold, "class=\"p-8\"", "class=\"p-8 rounded-xl shadow\"", -1)
	collabs := Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: reply(scaffold, nil),
		Styling:  reply(styled, nil),
	}
	o := newOrchestrator(t, collabs, Timeouts{})

	rec := &recorder{}
	last := o.Run(context.Background(), "run-1", textRequest(entity.StackHTML), rec)

	assertWellFormed(t, rec.stages)
	var progress []int
	for _, s := range rec.stages {
		progress = append(progress, s.Progress)
		assert.Equal(t, "run-1", s.RunID)
	}
	assert.Equal(t, []int{5, 20, 45, 75, 100}, progress)

	assert.False(t, last.Failed())
	assert.Equal(t, rec.stages[len(rec.stages)-1], last)
	assert.Contains(t, last.Code, "rounded-xl shadow")
	assert.Contains(t, last.Code, preview.StylingEngineTag)
	require.Len(t, last.Files, 1)
	assert.Equal(t, "index.html", last.Files[0].Path)
	assert.Contains(t, last.Preview, sandbox.RouterID)

	scaffoldStage := rec.stages[2]
	assert.Equal(t, entity.StageScaffold, scaffoldStage.Stage)
	assert.NotEmpty(t, scaffoldStage.Preview, "markup scaffolds are previewed eagerly")
	assert.Contains(t, collabs.Scaffold.(*stubCollaborator).lastPrompt(), "Sections, top to bottom: hero, features, footer.")
}

func TestRunComponentPreviewOnlyAtCompletion(t *testing.T) {
	source := "export default function App() {\n  return (\n    <main className=\"p-8\">\n" +
		strings.Repeat("      <p>Component body text</p>\n", 10) + "    </main>\n  );\n}"
	o := newOrchestrator(t, Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: reply(source, nil),
		Styling:  reply("", nil),
	}, Timeouts{})

	rec := &recorder{}
	last := o.Run(context.Background(), "run-2", textRequest(entity.StackReact), rec)

	assertWellFormed(t, rec.stages)
	assert.Empty(t, rec.stages[2].Preview)
	assert.Equal(t, source, last.Code)
	assert.Contains(t, last.Preview, "ReactDOM")
	assert.Equal(t, "src/App.jsx", last.Files[0].Path)
}

func TestRunShortScaffoldUsesFallback(t *testing.T) {
	o := newOrchestrator(t, Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: reply(strings.Repeat("x", 50), nil),
		Styling:  reply("", nil),
	}, Timeouts{})

	rec := &recorder{}
	last := o.Run(context.Background(), "run-3", textRequest(entity.StackHTML), rec)

	assertWellFormed(t, rec.stages)
	assert.False(t, last.Failed())
	assert.GreaterOrEqual(t, len(last.Code), synth.MarkupMinLength)
	assert.True(t, preview.HasDocumentRoot(last.Code))
	assert.Equal(t, rec.stages[2].Code, last.Code)
	assert.NotEmpty(t, last.Preview)
}

func TestRunRejectsShrunkenStyling(t *testing.T) {
	scaffold := scaffoldHTML()
	o := newOrchestrator(t, Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: reply(scaffold, nil),
		Styling:  reply(document("<p>tiny</p>"), nil),
	}, Timeouts{})

	rec := &recorder{}
	last := o.Run(context.Background(), "run-4", textRequest(entity.StackHTML), rec)

	assertWellFormed(t, rec.stages)
	assert.Equal(t, rec.stages[2].Code, last.Code, "complete carries the scaffold verbatim")
}

func TestRunRejectsStylingWithoutDocumentRoot(t *testing.T) {
	scaffold := scaffoldHTML()
	o := newOrchestrator(t, Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: reply(scaffold, nil),
		Styling:  reply(strings.Repeat("<div class=\"rounded\">styled</div>", 60), nil),
	}, Timeouts{})

	rec := &recorder{}
	last := o.Run(context.Background(), "run-5", textRequest(entity.StackHTML), rec)
	assert.Equal(t, rec.stages[2].Code, last.Code)
}

func TestRunSkipsStylingForStyledSource(t *testing.T) {
	styled := document(strings.Repeat("<div class=\"bg-gradient-to-r rounded-lg shadow-md hover:shadow-lg\">Card</div>\n", 60))
	styling := reply("", errors.New("must not be called"))
	o := newOrchestrator(t, Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: reply(styled, nil),
		Styling:  styling,
	}, Timeouts{})

	rec := &recorder{}
	last := o.Run(context.Background(), "run-6", textRequest(entity.StackHTML), rec)

	assert.False(t, last.Failed())
	assert.Zero(t, styling.calls())
	assert.Equal(t, "Styles already complete", rec.stages[3].Message)
}

func TestRunStylingFailureKeepsScaffold(t *testing.T) {
	o := newOrchestrator(t, Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: reply(scaffoldHTML(), nil),
		Styling:  reply("", &entity.CollaboratorError{Kind: entity.ErrorKindUnavailable, Err: errors.New("503")}),
	}, Timeouts{})

	rec := &recorder{}
	last := o.Run(context.Background(), "run-7", textRequest(entity.StackHTML), rec)

	assertWellFormed(t, rec.stages)
	assert.False(t, last.Failed())
	assert.Equal(t, rec.stages[2].Code, last.Code)
}

func TestRunQuotaFailure(t *testing.T) {
	o := newOrchestrator(t, Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: reply("", &entity.CollaboratorError{Kind: entity.ErrorKindQuotaExceeded, Err: errors.New("429")}),
		Styling:  reply("", nil),
	}, Timeouts{})

	rec := &recorder{}
	last := o.Run(context.Background(), "run-8", textRequest(entity.StackHTML), rec)

	assertWellFormed(t, rec.stages)
	require.Len(t, rec.stages, 3)
	assert.True(t, last.Failed())
	assert.Equal(t, entity.ErrorKindQuotaExceeded, last.ErrorKind)
	assert.Contains(t, last.Error, "busy")
	assert.Empty(t, last.Code)
}

func TestRunBudgetExceeded(t *testing.T) {
	blocking := &stubCollaborator{reply: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	o := newOrchestrator(t, Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: blocking,
		Styling:  reply("", nil),
	}, Timeouts{Run: 50 * time.Millisecond})

	rec := &recorder{}
	start := time.Now()
	last := o.Run(context.Background(), "run-9", textRequest(entity.StackHTML), rec)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, last.Failed())
	assert.Equal(t, entity.ErrorKindTimeout, last.ErrorKind)
	assert.Contains(t, last.Error, "too long")
}

func TestRunAnalysisFallsBackToDefaults(t *testing.T) {
	scaffold := reply(scaffoldHTML(), nil)
	o := newOrchestrator(t, Collaborators{
		Analysis: reply("I think this is a nice page!", nil),
		Scaffold: scaffold,
		Styling:  reply("", nil),
	}, Timeouts{})

	req := entity.Request{
		Config: entity.GenerationConfig{TechStack: entity.StackHTML},
		Image:  &entity.Image{Data: []byte("png"), MimeType: "image/png"},
	}
	last := o.Run(context.Background(), "run-10", req, &recorder{})

	assert.False(t, last.Failed())
	assert.Contains(t, scaffold.lastPrompt(), "Sections, top to bottom: hero, content, footer.")
}

func TestRunClassifiesTextPrompt(t *testing.T) {
	scaffold := reply(scaffoldHTML(), nil)
	o := newOrchestrator(t, Collaborators{
		Analysis: reply("", errors.New("unavailable")),
		Scaffold: scaffold,
		Styling:  reply("", nil),
	}, Timeouts{})

	req := textRequest(entity.StackHTML)
	req.Prompt = "An admin dashboard for a sales team"
	o.Run(context.Background(), "run-11", req, &recorder{})

	assert.Contains(t, scaffold.lastPrompt(), "Sections, top to bottom: sidebar, stats, chart, table.")
}

func TestRunConfigSectionsOverrideAnalysis(t *testing.T) {
	scaffold := reply(scaffoldHTML(), nil)
	o := newOrchestrator(t, Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: scaffold,
		Styling:  reply("", nil),
	}, Timeouts{})

	req := textRequest(entity.StackHTML)
	req.Config.Page.Sections = []string{"gallery", "contact"}
	o.Run(context.Background(), "run-12", req, &recorder{})

	assert.Contains(t, scaffold.lastPrompt(), "Sections, top to bottom: gallery, contact.")
}

func TestRunStopsWhenSinkCloses(t *testing.T) {
	scaffold := reply(scaffoldHTML(), nil)
	o := newOrchestrator(t, Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: scaffold,
		Styling:  reply("", nil),
	}, Timeouts{})

	sent := 0
	sink := stream.SinkFunc(func(entity.PipelineStage) error {
		if sent == 2 {
			return stream.ErrClosed
		}
		sent++
		return nil
	})
	last := o.Run(context.Background(), "run-13", textRequest(entity.StackHTML), sink)

	assert.Equal(t, 2, sent)
	assert.Equal(t, entity.StageAnalyzing, last.Stage)
	assert.Equal(t, ProgressAnalysisDone, last.Progress)
	assert.Equal(t, 1, scaffold.calls(), "the scaffold already in flight completes")

	run := entity.NewRun(textRequest(entity.StackHTML))
	run.Finish(last)
	assert.Equal(t, entity.RunStatusCanceled, run.Status)
}

func TestRunRecoversPanic(t *testing.T) {
	o := newOrchestrator(t, Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: &stubCollaborator{reply: func(context.Context, string) (string, error) { panic("boom") }},
		Styling:  reply("", nil),
	}, Timeouts{})

	rec := &recorder{}
	var last entity.PipelineStage
	require.NotPanics(t, func() {
		last = o.Run(context.Background(), "run-14", textRequest(entity.StackHTML), rec)
	})
	assertWellFormed(t, rec.stages)
	assert.True(t, last.Failed())
}

func TestRunInvalidRequest(t *testing.T) {
	scaffold := reply(scaffoldHTML(), nil)
	o := newOrchestrator(t, Shared(scaffold), Timeouts{})

	rec := &recorder{}
	last := o.Run(context.Background(), "run-15", entity.Request{Config: entity.GenerationConfig{TechStack: entity.StackHTML}}, rec)

	require.Len(t, rec.stages, 1)
	assert.True(t, last.Failed())
	assert.Equal(t, entity.ErrorKindValidation, last.ErrorKind)
	assert.Zero(t, scaffold.calls())
}

func TestRunOverChannel(t *testing.T) {
	o := newOrchestrator(t, Collaborators{
		Analysis: reply(analysisJSON, nil),
		Scaffold: reply(scaffoldHTML(), nil),
		Styling:  reply("", nil),
	}, Timeouts{})

	ch := stream.NewChannel(1)
	go func() {
		defer ch.Close()
		o.Run(context.Background(), "run-16", textRequest(entity.StackVue), ch)
	}()

	var got []entity.PipelineStage
	for s := range ch.Stages() {
		got = append(got, s)
	}
	assertWellFormed(t, got)
}
