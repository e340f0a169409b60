package preview

import (
	"regexp"
	"strings"
)

var (
	svelteHead     = regexp.MustCompile(`(?is)<svelte:head\s*>.*?</svelte:head\s*>`)
	svelteSpecial  = regexp.MustCompile(`(?i)</?svelte:[a-z]+[^>]*>`)
	svelteComputed = regexp.MustCompile(`(?m)^[ \t]*\$:\s*(` + ident + `)\s*=\s*([^\n]+?);?[ \t]*\r?$`)
	svelteDecl     = regexp.MustCompile(`(?m)^(?:export\s+)?(?:let|var|const)\s+(` + ident + `)`)
	svelteFunc     = regexp.MustCompile(`(?m)^(?:export\s+)?(?:async\s+)?function\s*\*?\s*(` + ident + `)`)

	svelteIf       = regexp.MustCompile(`\{#if\s+([^}]+)\}`)
	svelteElseIf   = regexp.MustCompile(`\{:else\s+if\s+([^}]+)\}`)
	svelteElse     = regexp.MustCompile(`\{:else\s*\}`)
	svelteEndBlock = regexp.MustCompile(`\{/(?:if|each|key)\s*\}`)
	svelteEach     = regexp.MustCompile(`\{#each\s+(.+?)\s+as\s+([^},(]+?)(?:\s*,\s*(` + ident + `))?(?:\s*\(([^)]*)\))?\s*\}`)
	svelteKey      = regexp.MustCompile(`\{#key\s+[^}]*\}`)
	svelteRawHTML  = regexp.MustCompile(`\{@html\s+([^}]+)\}`)
	svelteEvent    = regexp.MustCompile(`\bon:([\w-]+)(?:\|[\w|]+)?=\{([^}]*)\}`)
	svelteBind     = regexp.MustCompile(`\bbind:([\w-]+)=\{([^}]*)\}`)
	svelteClass    = regexp.MustCompile(`\bclass:([\w-]+)=\{([^}]*)\}`)
	svelteAttr     = regexp.MustCompile(`(\s)([A-Za-z_][\w.-]*)=\{([^{}]*)\}`)
	svelteText     = regexp.MustCompile(`\{([^{}#/:@][^{}]*)\}`)
)

// compileSvelte runs a Svelte component on the Vue runtime: the markup is
// rewritten to Vue template syntax and the script runs against one reactive
// state object.
func compileSvelte(src string) string {
	u := templateUnit{}
	for _, m := range styleBlock.FindAllStringSubmatch(src, -1) {
		u.Styles = append(u.Styles, m[1])
	}
	rest := styleBlock.ReplaceAllString(src, "")
	if loc := scriptBlock.FindStringSubmatchIndex(rest); loc != nil {
		u.TypeScript = tsAttr.MatchString(attrs(rest, loc))
		u.Script = trimBlankLines(rest[loc[4]:loc[5]])
		rest = rest[:loc[0]] + rest[loc[1]:]
	}
	rest = scriptBlock.ReplaceAllString(rest, "")
	rest = svelteHead.ReplaceAllString(rest, "")
	rest = svelteSpecial.ReplaceAllString(rest, "")
	markup := strings.TrimSpace(rest)
	if markup == "" {
		return Placeholder("No markup was found in the component.")
	}
	script := templateScript{
		Body:  svelteSetup(stripImports(u.Script)),
		Mode:  "setup",
		Typed: u.TypeScript,
	}
	return renderTemplateHarness(svelteMarkup(markup), script, u.Styles)
}

func attrs(src string, loc []int) string {
	if loc[2] < 0 {
		return ""
	}
	return src[loc[2]:loc[3]]
}

// svelteSetup turns a component script into a setup body. Top-level variables
// become properties of a reactive object, single-line reactive assignments
// become computed values.
func svelteSetup(script string) string {
	var names []string
	seen := map[string]bool{}
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}

	type derived struct{ name, expr string }
	var computed []derived
	script = svelteComputed.ReplaceAllStringFunc(script, func(line string) string {
		m := svelteComputed.FindStringSubmatch(line)
		computed = append(computed, derived{name: m[1], expr: m[2]})
		add(m[1])
		return ""
	})
	for _, m := range svelteDecl.FindAllStringSubmatch(script, -1) {
		add(m[1])
	}
	var funcs []string
	for _, m := range svelteFunc.FindAllStringSubmatch(script, -1) {
		add(m[1])
		funcs = append(funcs, m[1])
	}
	script = svelteDecl.ReplaceAllString(script, "$1")
	script = strings.ReplaceAll(script, "export function", "function")
	script = strings.ReplaceAll(script, "export async function", "async function")

	var b strings.Builder
	b.WriteString("var __state = reactive({")
	for i, n := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n + ": undefined")
	}
	b.WriteString("});\nwith (__state) {\n")
	b.WriteString(script)
	b.WriteString("\n")
	for _, f := range funcs {
		b.WriteString("__state." + f + " = " + f + ";\n")
	}
	b.WriteString("}\n")
	for _, c := range computed {
		b.WriteString("__state." + c.name + " = computed(function () { with (__state) { return (" + c.expr + "); } });\n")
	}
	b.WriteString("return __state;")
	return b.String()
}

// svelteMarkup rewrites Svelte block, directive and expression syntax into the
// equivalent Vue template syntax.
func svelteMarkup(markup string) string {
	out := svelteElseIf.ReplaceAllStringFunc(markup, func(s string) string {
		return `</template><template v-else-if="` + attrValue(svelteElseIf.FindStringSubmatch(s)[1]) + `">`
	})
	out = svelteElse.ReplaceAllString(out, `</template><template v-else>`)
	out = svelteIf.ReplaceAllStringFunc(out, func(s string) string {
		return `<template v-if="` + attrValue(svelteIf.FindStringSubmatch(s)[1]) + `">`
	})
	out = svelteEach.ReplaceAllStringFunc(out, func(s string) string {
		m := svelteEach.FindStringSubmatch(s)
		item := strings.TrimSpace(m[2])
		if m[3] != "" {
			item = "(" + item + ", " + m[3] + ")"
		}
		tag := `<template v-for="` + attrValue(item+" in "+strings.TrimSpace(m[1])) + `"`
		if m[4] != "" {
			tag += ` :key="` + attrValue(m[4]) + `"`
		}
		return tag + ">"
	})
	out = svelteKey.ReplaceAllString(out, "<template>")
	out = svelteEndBlock.ReplaceAllString(out, "</template>")
	out = svelteRawHTML.ReplaceAllStringFunc(out, func(s string) string {
		return `<span v-html="` + attrValue(svelteRawHTML.FindStringSubmatch(s)[1]) + `"></span>`
	})
	out = svelteEvent.ReplaceAllStringFunc(out, func(s string) string {
		m := svelteEvent.FindStringSubmatch(s)
		return "@" + m[1] + `="` + attrValue(m[2]) + `"`
	})
	out = svelteBind.ReplaceAllStringFunc(out, func(s string) string {
		m := svelteBind.FindStringSubmatch(s)
		if m[1] == "this" {
			return ""
		}
		return `v-model="` + attrValue(m[2]) + `"`
	})
	out = svelteClass.ReplaceAllStringFunc(out, func(s string) string {
		m := svelteClass.FindStringSubmatch(s)
		return `:class="(` + attrValue(m[2]) + `) ? '` + m[1] + `' : ''"`
	})
	out = svelteAttr.ReplaceAllStringFunc(out, func(s string) string {
		m := svelteAttr.FindStringSubmatch(s)
		return m[1] + ":" + m[2] + `="` + attrValue(m[3]) + `"`
	})
	return svelteText.ReplaceAllString(out, "{{ $1 }}")
}

func attrValue(expr string) string {
	return strings.ReplaceAll(strings.TrimSpace(expr), `"`, "'")
}
