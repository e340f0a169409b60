package synth

import (
	"regexp"
	"strings"

	"uistudio/internal/domain/entity"
)

// singleFile synthesizes a component made of a logic block and a markup block.
type singleFile struct {
	stack entity.TechStack
}

var (
	templateOpen = regexp.MustCompile(`(?i)<template[\s>]`)
	scriptOpen   = regexp.MustCompile(`(?i)<script[\s>]`)
	markupStart  = regexp.MustCompile(`<[a-zA-Z]`)
	htmlComment  = regexp.MustCompile(`(?s)^\s*(?:<!--.*?-->\s*)+`)
)

func (s singleFile) Stack() entity.TechStack { return s.stack }

func (s singleFile) Format() string {
	if s.stack == entity.StackSvelte {
		return "Svelte component"
	}
	return "Vue single-file component"
}

func (singleFile) MinLength() int { return ComponentMinLength }

func (s singleFile) Directive(in Input) string {
	if s.stack == entity.StackSvelte {
		return scaffoldDirective(
			"OUTPUT FORMAT\nOne Svelte component: a <script> block followed by the markup, styled with Tailwind CSS utility classes.",
			`OUTPUT RULES
- Declare state with let and derived values with $: statements.
- Use {#if}, {#each} and on:click style directives; no imports from other files.
- Use realistic copy instead of lorem ipsum.
- Return only the component, with no explanation and no markdown fences.`,
			in,
		)
	}
	return scaffoldDirective(
		"OUTPUT FORMAT\nOne Vue 3 single-file component with a <template> block and a <script setup> block, styled with Tailwind CSS utility classes.",
		`OUTPUT RULES
- Use the Composition API (ref, reactive, computed) inside <script setup>.
- Import only from "vue"; no other packages and no child component files.
- Use realistic copy instead of lorem ipsum.
- Return only the component, with no explanation and no markdown fences.`,
		in,
	)
}

func (s singleFile) Normalize(raw string) string {
	src := strings.TrimSpace(htmlComment.ReplaceAllString(strings.TrimSpace(raw), ""))
	if s.stack == entity.StackVue && !templateOpen.MatchString(src) && !scriptOpen.MatchString(src) {
		return wrapTemplate(src)
	}
	return src
}

func wrapTemplate(markup string) string {
	return "<template>\n  <div>\n" + indent(markup, "    ") + "\n  </div>\n</template>\n\n<script setup>\n</script>"
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func (s singleFile) Fallback(in Input) string {
	body := fallbackMarkup(in)
	if s.stack == entity.StackSvelte {
		return "<script>\n  let title = 'Acme';\n</script>\n\n<svelte:head>\n  <title>{title}</title>\n</svelte:head>\n\n" + body + "\n"
	}
	return "<template>\n" + indent(body, "  ") + "\n</template>\n\n<script setup>\nimport { ref } from 'vue'\n\nconst title = ref('Acme')\n</script>\n"
}

func (s singleFile) Accepts(source string) bool {
	if s.stack == entity.StackVue {
		return templateOpen.MatchString(source)
	}
	return markupStart.MatchString(scriptBlockless(source))
}

var scriptSection = regexp.MustCompile(`(?is)<script[^>]*>.*?</script\s*>`)

func scriptBlockless(source string) string {
	return scriptSection.ReplaceAllString(source, "")
}

func (s singleFile) Files(source string) []entity.GeneratedFile {
	if s.stack == entity.StackSvelte {
		return []entity.GeneratedFile{{Path: "src/App.svelte", Content: source, Language: "svelte"}}
	}
	return []entity.GeneratedFile{{Path: "src/App.vue", Content: source, Language: "vue"}}
}
