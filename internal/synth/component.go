package synth

import (
	"regexp"
	"strings"

	"uistudio/internal/domain/entity"
	"uistudio/internal/preview"
)

// component synthesizes one JSX module whose default export is the page.
type component struct {
	stack entity.TechStack
}

var (
	leadingComment = regexp.MustCompile(`(?s)^\s*(?://[^\n]*\n|/\*.*?\*/\s*)+`)
	leadingUse     = regexp.MustCompile(`^\s*['"]use (?:client|server)['"];?[ \t]*\r?\n?`)
	defaultExport  = regexp.MustCompile(`(?m)^[ \t]*export\s+default\b`)
	componentDecl  = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:async\s+)?(?:function|const|let|class)\s+([A-Z][\w$]*)`)
	hookUse        = regexp.MustCompile(`\buse(?:State|Effect|Reducer|Ref|Memo|Callback|Router|Pathname|SearchParams)\b`)
)

func (c component) Stack() entity.TechStack { return c.stack }

func (c component) Format() string {
	if c.stack == entity.StackNextJS {
		return "Next.js page component"
	}
	return "React component"
}

func (component) MinLength() int { return ComponentMinLength }

func (c component) Directive(in Input) string {
	format := "OUTPUT FORMAT\nOne React function component written in JSX and styled with Tailwind CSS utility classes."
	rules := `OUTPUT RULES
- Export the page component as the default export.
- Import only from "react"; no other packages, no CSS files, no images from disk.
- Keep helper components and data in the same file.
- Use realistic copy instead of lorem ipsum.
- Return only the code, with no explanation and no markdown fences.`
	if c.stack == entity.StackNextJS {
		format = "OUTPUT FORMAT\nOne Next.js App Router page (app/page.tsx) in TypeScript with JSX, styled with Tailwind CSS utility classes."
		rules = `OUTPUT RULES
- Export the page component as the default export.
- Import only from "react", "next/link" and "next/image"; no other packages.
- Mark the file with 'use client' when it uses state or effects.
- Keep helper components, types and data in the same file.
- Use realistic copy instead of lorem ipsum.
- Return only the code, with no explanation and no markdown fences.`
	}
	return scaffoldDirective(format, rules, in)
}

// Normalize strips a leading comment or directive and guarantees a default
// export, wrapping bare markup in an App component when no component exists.
func (c component) Normalize(raw string) string {
	src := strings.TrimSpace(raw)
	for {
		next := leadingUse.ReplaceAllString(leadingComment.ReplaceAllString(src, ""), "")
		if next == src {
			break
		}
		src = strings.TrimSpace(next)
	}
	if defaultExport.MatchString(src) {
		return src
	}
	if m := componentDecl.FindStringSubmatch(src); m != nil {
		return src + "\n\nexport default " + m[1] + ";"
	}
	return wrapComponent(preview.DefaultEntryPoint, src)
}

func wrapComponent(name, markup string) string {
	lines := strings.Split(strings.TrimSpace(markup), "\n")
	for i, l := range lines {
		lines[i] = "      " + l
	}
	return "export default function " + name + "() {\n  return (\n    <>\n" + strings.Join(lines, "\n") + "\n    </>\n  );\n}"
}

func (c component) Fallback(in Input) string {
	return wrapComponent(preview.DefaultEntryPoint, toJSX(fallbackMarkup(in)))
}

func (component) Accepts(source string) bool {
	return defaultExport.MatchString(source) || componentDecl.MatchString(source)
}

func (c component) Files(source string) []entity.GeneratedFile {
	if c.stack == entity.StackNextJS {
		if hookUse.MatchString(source) && !strings.Contains(source, "use client") {
			source = "'use client';\n\n" + source
		}
		return []entity.GeneratedFile{{Path: "app/page.tsx", Content: source, Language: "tsx"}}
	}
	return []entity.GeneratedFile{{Path: "src/App.jsx", Content: source, Language: "jsx"}}
}
