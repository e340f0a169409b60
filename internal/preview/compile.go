// Package preview turns generated source of any supported stack into a
// self-contained document that can be rendered in a sandboxed frame.
package preview

import (
	"fmt"
	"regexp"
	"strings"

	"uistudio/internal/domain/entity"
	"uistudio/internal/sandbox"
)

var (
	htmlElement    = regexp.MustCompile(`(?i)<html[\s>]`)
	componentShape = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+default\b|(?:export\s+)?(?:function|const|class)\s+[A-Z])`)
	markupShape    = regexp.MustCompile(`^\s*<[a-zA-Z!]`)
	templateShape  = regexp.MustCompile(`(?i)<template[\s>]`)
)

// Compile produces a renderable document for source written in stack. It never
// fails: inputs it cannot make sense of yield the placeholder document.
func Compile(source string, stack entity.TechStack) (doc string) {
	defer func() {
		if r := recover(); r != nil {
			doc = Placeholder(fmt.Sprintf("The preview could not be built: %v", r))
		}
	}()

	if strings.TrimSpace(source) == "" {
		return Placeholder("")
	}
	switch {
	case stack.IsMarkup():
		return compileMarkup(source)
	case stack == entity.StackVue:
		return compileVue(source)
	case stack == entity.StackSvelte:
		return compileSvelte(source)
	case stack.UsesJSX():
		return compileComponent(source)
	}

	switch {
	case HasDocumentRoot(source):
		return compileMarkup(source)
	case templateShape.MatchString(source):
		return compileVue(source)
	case componentShape.MatchString(source):
		return compileComponent(source)
	case markupShape.MatchString(source):
		return compileMarkup(source)
	}
	return Placeholder("The source does not look like any supported format.")
}

func compileMarkup(source string) string {
	doc := strings.TrimSpace(source)
	switch {
	case HasDocumentRoot(doc):
	case htmlElement.MatchString(doc):
		doc = "<!DOCTYPE html>\n" + doc
	default:
		doc = WrapDocument(doc)
	}
	return EnsureStylingEngine(doc)
}

// Render compiles source and isolates the result for sandboxed display.
func Render(source string, stack entity.TechStack) string {
	return sandbox.Isolate(Compile(source, stack))
}
