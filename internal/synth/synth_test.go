package synth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uistudio/internal/domain/entity"
	"uistudio/internal/preview"
)

type stubCollaborator struct {
	reply  string
	err    error
	prompt string
}

func (s *stubCollaborator) Name() string { return "stub" }

func (s *stubCollaborator) Generate(_ context.Context, prompt string, _ *entity.Image) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func landingInput(stack entity.TechStack) Input {
	return Input{
		Config: entity.GenerationConfig{
			TechStack:        stack,
			InteractionLevel: entity.InteractionMicro,
		},
		Analysis: entity.Analysis{
			Sections:   []string{"hero", "features", "pricing", "footer"},
			Navigation: "topnav",
			PageType:   "landing",
		},
		Prompt: "A landing page for a note taking app",
	}
}

func mustFor(t *testing.T, stack entity.TechStack) Synthesizer {
	t.Helper()
	s, err := For(stack)
	require.NoError(t, err)
	require.Equal(t, stack, s.Stack())
	return s
}

func TestForUnknownStack(t *testing.T) {
	_, err := For("elm")
	assert.Error(t, err)
}

func TestMinLengths(t *testing.T) {
	assert.Equal(t, 500, mustFor(t, entity.StackHTML).MinLength())
	for _, st := range []entity.TechStack{entity.StackReact, entity.StackNextJS, entity.StackVue, entity.StackSvelte} {
		assert.Equal(t, 200, mustFor(t, st).MinLength())
	}
}

var hexLiteral = regexp.MustCompile(`#[0-9a-fA-F]{3,8}\b`)

func TestMonochromeDirectivesMentionOnlyTheFixedSet(t *testing.T) {
	allowed := map[string]bool{}
	for _, c := range entity.MonochromeColors {
		allowed[c] = true
	}
	for _, stack := range entity.Stacks {
		s := mustFor(t, stack)
		in := landingInput(stack)
		in.Config.ColorPalette = entity.ColorPalette{ID: "bw", Colors: []string{"#ff0000"}}

		for _, directive := range []string{
			s.Directive(in),
			StylingDirective(s, in.Config, s.Fallback(in)),
		} {
			for _, c := range entity.MonochromeColors {
				assert.Contains(t, directive, c)
			}
			for _, lit := range hexLiteral.FindAllString(directive, -1) {
				assert.True(t, allowed[strings.ToLower(lit)], "unexpected colour %s for %s", lit, stack)
			}
		}
	}
}

func TestDirectiveUsesPalette(t *testing.T) {
	in := landingInput(entity.StackHTML)
	in.Config.ColorPalette = entity.ColorPalette{Name: "Ocean", Colors: []string{"#0ea5e9", "#0f172a"}}
	d := mustFor(t, entity.StackHTML).Directive(in)
	assert.Contains(t, d, "#0ea5e9, #0f172a")
	assert.Contains(t, d, `"Ocean"`)
}

func TestDirectiveBlockOrder(t *testing.T) {
	in := landingInput(entity.StackReact)
	in.Config.Features = []string{"dark mode", "search"}
	in.Config.Flow = []entity.FlowPage{{Name: "Home"}, {Name: "Checkout", Description: "Payment form"}}
	d := mustFor(t, entity.StackReact).Directive(in)

	order := []string{"A landing page", "VISUAL THEME", "NAVIGATION", "INTERACTION", "FEATURES", "MULTI-PAGE ROUTING", "OUTPUT RULES"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(d, marker)
		require.Greater(t, idx, last, marker)
		last = idx
	}
	assert.Contains(t, d, "2. Checkout: Payment form")
}

func TestDirectiveIsPure(t *testing.T) {
	in := landingInput(entity.StackVue)
	s := mustFor(t, entity.StackVue)
	assert.Equal(t, s.Directive(in), s.Directive(in))
}

func TestRoutingBlockOnlyForMultiplePages(t *testing.T) {
	in := landingInput(entity.StackHTML)
	assert.NotContains(t, mustFor(t, entity.StackHTML).Directive(in), "MULTI-PAGE ROUTING")

	in.Analysis.Pages = 3
	d := mustFor(t, entity.StackHTML).Directive(in)
	assert.Contains(t, d, "MULTI-PAGE ROUTING")
	assert.Contains(t, d, "page-1 to page-3")
}

func TestImageDirectiveOmitsPrompt(t *testing.T) {
	in := landingInput(entity.StackHTML)
	in.Prompt = ""
	in.Image = &entity.Image{Data: []byte{1}, MimeType: "image/png"}
	d := mustFor(t, entity.StackHTML).Directive(in)
	assert.Contains(t, d, "attached sketch")
	assert.NotContains(t, d, `"""`)
}

func TestStylingDirectiveTruncatesSource(t *testing.T) {
	s := mustFor(t, entity.StackHTML)
	source := strings.Repeat("a", StylingSourceLimit+500)
	d := StylingDirective(s, entity.GenerationConfig{}, source)
	assert.Contains(t, d, strings.Repeat("a", StylingSourceLimit))
	assert.NotContains(t, d, strings.Repeat("a", StylingSourceLimit+1))
}

func TestEmptyScaffoldFallsBack(t *testing.T) {
	for _, stack := range entity.Stacks {
		s := mustFor(t, stack)
		in := landingInput(stack)
		res, err := Scaffold(context.Background(), s, &stubCollaborator{reply: ""}, in)
		require.NoError(t, err)
		assert.True(t, res.Fallback, stack)
		assert.GreaterOrEqual(t, len(res.Source), s.MinLength(), stack)
		assert.Equal(t, s.Fallback(in), res.Source)
	}
}

func TestShortMarkupScaffoldEqualsFallback(t *testing.T) {
	s := mustFor(t, entity.StackHTML)
	in := landingInput(entity.StackHTML)
	short := strings.Repeat("x", 50)

	res := Settle(s, short, in)
	assert.True(t, res.Fallback)
	assert.Equal(t, s.Fallback(in), res.Source)
}

func TestScaffoldPropagatesCollaboratorErrors(t *testing.T) {
	quota := &entity.CollaboratorError{Kind: entity.ErrorKindQuotaExceeded, Err: errors.New("429")}
	_, err := Scaffold(context.Background(), mustFor(t, entity.StackReact), &stubCollaborator{err: quota}, landingInput(entity.StackReact))
	assert.ErrorIs(t, err, entity.ErrQuotaExceeded)
}

func TestScaffoldSendsDirectiveAndImage(t *testing.T) {
	stub := &stubCollaborator{reply: strings.Repeat("<p>ok</p>", 100)}
	s := mustFor(t, entity.StackHTML)
	in := landingInput(entity.StackHTML)

	res, err := Scaffold(context.Background(), s, stub, in)
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Equal(t, s.Directive(in), stub.prompt)
	assert.True(t, preview.HasDocumentRoot(res.Source))
}

func TestMarkupNormalize(t *testing.T) {
	s := mustFor(t, entity.StackHTML)
	doc := s.Normalize("<main>hi</main>")
	assert.True(t, preview.HasDocumentRoot(doc))
	assert.Contains(t, doc, preview.StylingEngineTag)

	full := "<!DOCTYPE html><html><head></head><body></body></html>"
	assert.Equal(t, 1, strings.Count(s.Normalize(full), "cdn.tailwindcss.com"))
	assert.True(t, s.Accepts(full))
	assert.False(t, s.Accepts("<div>no root</div>"))
}

func TestComponentNormalize(t *testing.T) {
	s := mustFor(t, entity.StackReact)
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "directive and comment stripped",
			raw:  "// src/App.jsx\n'use client';\nexport default function Page() { return null }",
			want: "export default function Page() { return null }",
		},
		{
			name: "named component gets default export",
			raw:  "function Hero() { return <h1>Hi</h1> }",
			want: "function Hero() { return <h1>Hi</h1> }\n\nexport default Hero;",
		},
		{
			name: "bare markup wrapped",
			raw:  "<div>\n<p>x</p>\n</div>",
			want: "export default function App() {\n  return (\n    <>\n      <div>\n      <p>x</p>\n      </div>\n    </>\n  );\n}",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.Normalize(tc.raw))
		})
	}
}

func TestFallbackSections(t *testing.T) {
	in := landingInput(entity.StackHTML)
	in.Analysis.Sections = []string{"navbar", "Hero", "reviews", "Team Bios"}
	doc := mustFor(t, entity.StackHTML).Fallback(in)

	assert.Contains(t, doc, `id="hero"`)
	assert.Contains(t, doc, `id="testimonials"`)
	assert.Contains(t, doc, `id="team-bios"`)
	assert.Contains(t, doc, "Team Bios")
	assert.NotContains(t, doc, `id="page-1"`)
}

func TestFallbackDefaultsWithoutSections(t *testing.T) {
	in := landingInput(entity.StackHTML)
	in.Analysis.Sections = nil
	doc := mustFor(t, entity.StackHTML).Fallback(in)
	for _, id := range []string{`id="hero"`, `id="content"`, `id="footer"`} {
		assert.Contains(t, doc, id)
	}
}

func TestFallbackDropsBracesFromSectionNames(t *testing.T) {
	for _, stack := range entity.Stacks {
		in := landingInput(stack)
		in.Analysis.Sections = []string{"{danger zone}", "{{ secret }}"}
		doc := mustFor(t, stack).Fallback(in)

		assert.Contains(t, doc, `id="danger-zone"`, stack)
		assert.Contains(t, doc, ">danger zone<", stack)
		assert.Contains(t, doc, ">secret<", stack)
		assert.NotContains(t, doc, "{danger", stack)
		assert.NotContains(t, doc, "{{ secret", stack)
	}

	in := landingInput(entity.StackReact)
	in.Config.Flow = []entity.FlowPage{{Name: "{Shop}"}, {Name: "Cart", Description: "{items}"}}
	src := mustFor(t, entity.StackReact).Fallback(in)
	assert.Contains(t, src, `data-page="Shop"`)
	assert.NotContains(t, src, "{Shop}")
	assert.NotContains(t, src, "{items}")
}

func TestFallbackSidebarLayout(t *testing.T) {
	in := landingInput(entity.StackHTML)
	in.Analysis.Sections = []string{"sidebar", "stats", "chart", "table"}
	doc := mustFor(t, entity.StackHTML).Fallback(in)
	assert.Contains(t, doc, `id="sidebar"`)
	assert.NotContains(t, doc, "<header")
}

func TestFallbackPages(t *testing.T) {
	in := landingInput(entity.StackHTML)
	in.Config.Flow = []entity.FlowPage{{Name: "Shop"}, {Name: "Cart", Description: "Items in the cart"}, {Name: "Done"}}

	for _, stack := range entity.Stacks {
		doc := mustFor(t, stack).Fallback(in)
		for _, want := range []string{`id="page-1"`, `id="page-2"`, `id="page-3"`, `data-navigate="page-2"`, "Items in the cart"} {
			assert.Contains(t, doc, want, stack)
		}
	}
}

func TestComponentFallbackIsJSX(t *testing.T) {
	in := landingInput(entity.StackReact)
	in.Analysis.Sections = []string{"contact", "login"}
	src := mustFor(t, entity.StackReact).Fallback(in)

	assert.NotRegexp(t, `\sclass=`, src)
	assert.NotRegexp(t, `\sfor=`, src)
	assert.Contains(t, src, "className=")
	assert.Contains(t, src, "htmlFor=")
	assert.Contains(t, src, "rows={4}")
	assert.Equal(t, preview.DefaultEntryPoint, preview.EntryPoint(src))
}

func TestFallbackIsDeterministic(t *testing.T) {
	for _, stack := range entity.Stacks {
		s := mustFor(t, stack)
		in := landingInput(stack)
		assert.Equal(t, s.Fallback(in), s.Fallback(in))
		assert.True(t, s.Accepts(s.Fallback(in)), stack)
	}
}

func TestFiles(t *testing.T) {
	cases := []struct {
		stack entity.TechStack
		path  string
		lang  string
	}{
		{entity.StackHTML, "index.html", "html"},
		{entity.StackReact, "src/App.jsx", "jsx"},
		{entity.StackNextJS, "app/page.tsx", "tsx"},
		{entity.StackVue, "src/App.vue", "vue"},
		{entity.StackSvelte, "src/App.svelte", "svelte"},
	}
	for _, tc := range cases {
		files := mustFor(t, tc.stack).Files("source")
		require.Len(t, files, 1)
		assert.Equal(t, tc.path, files[0].Path)
		assert.Equal(t, tc.lang, files[0].Language)
	}

	next := mustFor(t, entity.StackNextJS).Files("export default function Page() { const [a] = useState(0); return a }")
	assert.True(t, strings.HasPrefix(next[0].Content, "'use client';"))
}

func TestSingleFileNormalize(t *testing.T) {
	vue := mustFor(t, entity.StackVue)
	wrapped := vue.Normalize("<!-- generated -->\n<h1>Hello</h1>")
	assert.True(t, strings.HasPrefix(wrapped, "<template>"))
	assert.Contains(t, wrapped, "<h1>Hello</h1>")
	assert.True(t, vue.Accepts(wrapped))

	svelte := mustFor(t, entity.StackSvelte)
	assert.Equal(t, "<h1>{name}</h1>", svelte.Normalize("  <h1>{name}</h1>\n"))
	assert.True(t, svelte.Accepts("<script>let a = 1;</script>\n<p>{a}</p>"))
	assert.False(t, svelte.Accepts("<script>let a = 1;</script>"))
}
