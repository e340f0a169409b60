package synth

import (
	"regexp"
	"strings"

	"uistudio/internal/domain/entity"
	"uistudio/internal/preview"
)

// markup synthesizes a single self-contained HTML document.
type markup struct{}

var htmlElement = regexp.MustCompile(`(?i)<html[\s>]`)

func (markup) Stack() entity.TechStack { return entity.StackHTML }

func (markup) Format() string { return "HTML document" }

func (markup) MinLength() int { return MarkupMinLength }

func (markup) Directive(in Input) string {
	return scaffoldDirective(
		"OUTPUT FORMAT\nA single self-contained HTML5 document styled with Tailwind CSS utility classes.",
		`OUTPUT RULES
- Start with <!DOCTYPE html> and include `+preview.StylingEngineTag+` in the head.
- Put any script inline at the end of the body; no external files, no frameworks.
- Use realistic copy instead of lorem ipsum and semantic elements for structure.
- Return only the document, with no explanation and no markdown fences.`,
		in,
	)
}

func (markup) Normalize(raw string) string {
	doc := strings.TrimSpace(raw)
	switch {
	case preview.HasDocumentRoot(doc):
	case htmlElement.MatchString(doc):
		doc = "<!DOCTYPE html>\n" + doc
	default:
		doc = preview.WrapDocument(doc)
	}
	return preview.EnsureStylingEngine(doc)
}

func (markup) Fallback(in Input) string {
	return preview.WrapDocument(fallbackMarkup(in))
}

func (markup) Accepts(source string) bool {
	return preview.HasDocumentRoot(source)
}

func (markup) Files(source string) []entity.GeneratedFile {
	return []entity.GeneratedFile{{Path: "index.html", Content: source, Language: "html"}}
}
