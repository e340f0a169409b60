package preview

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// StylingEngineTag is the utility-CSS runtime every generated document loads.
const StylingEngineTag = `<script src="https://cdn.tailwindcss.com"></script>`

const stylingEngineHost = "cdn.tailwindcss.com"

var (
	documentRoot = regexp.MustCompile(`(?i)^\s*<!doctype html`)
	headClose    = regexp.MustCompile(`(?i)</head\s*>`)
	headOpen     = regexp.MustCompile(`(?i)<head(?:\s[^>]*)?>`)
	htmlOpen     = regexp.MustCompile(`(?i)<html(?:\s[^>]*)?>`)
)

// HasDocumentRoot reports whether doc starts with a doctype declaration.
func HasDocumentRoot(doc string) bool {
	return documentRoot.MatchString(strings.TrimPrefix(doc, "\ufeff"))
}

// EnsureStylingEngine adds StylingEngineTag to the document head unless the
// document already loads it.
func EnsureStylingEngine(doc string) string {
	if strings.Contains(doc, stylingEngineHost) {
		return doc
	}
	if loc := headClose.FindStringIndex(doc); loc != nil {
		return doc[:loc[0]] + "  " + StylingEngineTag + "\n" + doc[loc[0]:]
	}
	if loc := headOpen.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + "\n  " + StylingEngineTag + doc[loc[1]:]
	}
	if loc := htmlOpen.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + "\n<head>\n  " + StylingEngineTag + "\n</head>" + doc[loc[1]:]
	}
	return StylingEngineTag + "\n" + doc
}

// WrapDocument places a markup fragment inside the fixed document skeleton.
func WrapDocument(body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n<head>\n")
	b.WriteString("  <meta charset=\"UTF-8\">\n")
	b.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("  <title>Preview</title>\n")
	b.WriteString("  " + StylingEngineTag + "\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// Placeholder is the document shown when there is nothing to render.
func Placeholder(message string) string {
	if strings.TrimSpace(message) == "" {
		message = "Nothing to preview yet."
	}
	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Preview</title>
  <style>
    body { margin: 0; min-height: 100vh; display: flex; align-items: center; justify-content: center; font-family: system-ui, sans-serif; background: #f8fafc; color: #64748b; }
    .preview-empty { text-align: center; padding: 2rem; }
    .preview-empty strong { display: block; color: #334155; font-size: 1.125rem; margin-bottom: .5rem; }
  </style>
</head>
<body>
  <div class="preview-empty"><strong>Nothing to preview</strong>` + html.EscapeString(message) + `</div>
</body>
</html>
`
}

// Title returns the text of the first title element of doc, or "".
func Title(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.EndTagToken:
			inTitle = false
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(z.Text()))
			}
		}
	}
}
