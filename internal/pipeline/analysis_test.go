package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"uistudio/internal/domain/entity"
)

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ok   bool
		want entity.Analysis
	}{
		{
			name: "plain",
			in:   `{"sections":["Hero"," Pricing ",""],"navigation":"Sidebar","pageType":"dashboard","pages":2}`,
			ok:   true,
			want: entity.Analysis{Sections: []string{"hero", "pricing"}, Navigation: "sidebar", PageType: "dashboard", Pages: 2},
		},
		{
			name: "prose around json",
			in:   "Sure! Here it is:\n{\"sections\":[\"hero\"]}\nHope this helps.",
			ok:   true,
			want: entity.Analysis{Sections: []string{"hero"}, Navigation: "topnav", PageType: "landing"},
		},
		{
			name: "pages clamped",
			in:   `{"sections":["hero"],"pages":99}`,
			ok:   true,
			want: entity.Analysis{Sections: []string{"hero"}, Navigation: "topnav", PageType: "landing", Pages: maxPages},
		},
		{name: "no sections", in: `{"sections":[],"navigation":"topnav"}`},
		{name: "not json", in: "a hero and a footer"},
		{name: "broken json", in: `{"sections":["hero"`},
		{name: "empty", in: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseAnalysis(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestClassifyPrompt(t *testing.T) {
	tests := []struct {
		prompt   string
		pageType string
		sections []string
	}{
		{"An analytics dashboard for marketing", "dashboard", []string{"sidebar", "stats", "chart", "table"}},
		{"Online shop selling sneakers", "ecommerce", []string{"hero", "products", "testimonials", "footer"}},
		{"My personal blog about travel", "blog", []string{"hero", "posts", "newsletter", "footer"}},
		{"A simple sign in screen", "auth", []string{"login"}},
		{"Pricing page with three plans", "pricing", []string{"hero", "pricing", "faq", "footer"}},
	}
	for _, tt := range tests {
		got, ok := classifyPrompt(tt.prompt)
		assert.True(t, ok, tt.prompt)
		assert.Equal(t, tt.pageType, got.PageType, tt.prompt)
		assert.Equal(t, tt.sections, got.Sections, tt.prompt)
	}

	_, ok := classifyPrompt("A page about my cat")
	assert.False(t, ok)
}

func TestAlreadyStyled(t *testing.T) {
	markers := "bg-gradient-to-r rounded-lg shadow-md hover:bg-black "
	long := markers
	for len(long) <= styledMinLength {
		long += "<p>padding text</p>"
	}
	assert.True(t, alreadyStyled(long))
	assert.False(t, alreadyStyled(markers), "short sources are always restyled")

	for _, missing := range styledMarkers {
		src := strings.ReplaceAll(long, missing, "")
		assert.False(t, alreadyStyled(src), missing)
	}
}

func TestAnalysisDirective(t *testing.T) {
	text := analysisDirective(entity.Request{Prompt: "A blog"})
	assert.Contains(t, text, "DESCRIPTION:\nA blog")
	assert.Contains(t, text, `"sections"`)

	img := analysisDirective(entity.Request{Image: &entity.Image{Data: []byte("x"), MimeType: "image/png"}})
	assert.Contains(t, img, "attached UI sketch")
	assert.NotContains(t, img, "DESCRIPTION")
}
