package pipeline

import (
	"encoding/json"
	"strings"

	"uistudio/internal/domain/entity"
)

const (
	maxSections = 12
	maxPages    = 10
)

func analysisDirective(req entity.Request) string {
	var b strings.Builder
	if req.Image != nil {
		b.WriteString("Analyze the attached UI sketch or screenshot and describe its layout.\n")
	} else {
		b.WriteString("Analyze the following UI description and describe the layout it asks for.\n\n")
		b.WriteString("DESCRIPTION:\n")
		b.WriteString(strings.TrimSpace(req.Prompt))
		b.WriteString("\n\n")
	}
	b.WriteString(`Respond with JSON only, without prose or markdown, in exactly this shape:
{"sections": ["hero", "features", "footer"], "navigation": "topnav", "pageType": "landing", "pages": 1}

- sections: short lowercase names of the visible sections, top to bottom
- navigation: one of topnav, sidebar, none
- pageType: one of landing, dashboard, ecommerce, blog, auth, pricing, portfolio, other
- pages: number of distinct pages or screens shown, 1 if unsure`)
	return b.String()
}

// parseAnalysis extracts the first JSON object from text. It reports false when
// no usable section list can be found.
func parseAnalysis(text string) (entity.Analysis, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return entity.Analysis{}, false
	}

	var a entity.Analysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &a); err != nil {
		return entity.Analysis{}, false
	}

	sections := make([]string, 0, len(a.Sections))
	for _, s := range a.Sections {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		sections = append(sections, s)
		if len(sections) == maxSections {
			break
		}
	}
	if len(sections) == 0 {
		return entity.Analysis{}, false
	}

	def := entity.DefaultAnalysis()
	a.Sections = sections
	a.Navigation = strings.ToLower(strings.TrimSpace(a.Navigation))
	if a.Navigation == "" {
		a.Navigation = def.Navigation
	}
	a.PageType = strings.ToLower(strings.TrimSpace(a.PageType))
	if a.PageType == "" {
		a.PageType = def.PageType
	}
	if a.Pages < 0 {
		a.Pages = 0
	}
	if a.Pages > maxPages {
		a.Pages = maxPages
	}
	return a, true
}

type promptClass struct {
	pageType   string
	navigation string
	sections   []string
	keywords   []string
}

// promptClasses are checked in order; the first class with a matching keyword wins.
var promptClasses = []promptClass{
	{
		pageType:   "dashboard",
		navigation: "sidebar",
		sections:   []string{"sidebar", "stats", "chart", "table"},
		keywords:   []string{"dashboard", "admin", "analytics", "metrics", "kpi", "crm"},
	},
	{
		pageType:   "ecommerce",
		navigation: "topnav",
		sections:   []string{"hero", "products", "testimonials", "footer"},
		keywords:   []string{"e-commerce", "ecommerce", "shop", "store", "product", "cart", "checkout"},
	},
	{
		pageType:   "blog",
		navigation: "topnav",
		sections:   []string{"hero", "posts", "newsletter", "footer"},
		keywords:   []string{"blog", "article", "magazine", "journal", "posts"},
	},
	{
		pageType:   "auth",
		navigation: "none",
		sections:   []string{"login"},
		keywords:   []string{"login", "log in", "sign in", "signin", "sign up", "signup", "register"},
	},
	{
		pageType:   "pricing",
		navigation: "topnav",
		sections:   []string{"hero", "pricing", "faq", "footer"},
		keywords:   []string{"pricing", "plans", "subscription", "tiers"},
	},
}

// classifyPrompt picks a default layout from keywords of a text prompt.
func classifyPrompt(prompt string) (entity.Analysis, bool) {
	lower := strings.ToLower(prompt)
	for _, c := range promptClasses {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return entity.Analysis{
					Sections:   append([]string(nil), c.sections...),
					Navigation: c.navigation,
					PageType:   c.pageType,
				}, true
			}
		}
	}
	return entity.Analysis{}, false
}
