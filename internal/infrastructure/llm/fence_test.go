package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "<div>hi</div>", "<div>hi</div>"},
		{"empty", "   ", ""},
		{"fenced with hint", "```html\n<!DOCTYPE html>\n<html></html>\n```", "<!DOCTYPE html>\n<html></html>"},
		{"uppercase hint", "```HTML\n<p>x</p>\n```", "<p>x</p>"},
		{"no hint", "```\nconst a = 1;\n```", "const a = 1;"},
		{"unclosed", "```jsx\nexport default function App() {}", "export default function App() {}"},
		{"trailing prose", "```vue\n<template></template>\n```\nHope this helps!", "<template></template>"},
		{"leading prose", "Here you go:\n```tsx\nconst x = 1;\n```\nEnjoy", "const x = 1;"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFences(tc.in))
		})
	}
}

func TestStripCodeFencesIsStableOnCleanText(t *testing.T) {
	clean := StripCodeFences("```html\n<p>x</p>\n```")
	assert.Equal(t, clean, StripCodeFences(clean))
}
