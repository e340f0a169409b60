package synth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"uistudio/internal/domain/entity"
)

// StylingSourceLimit bounds how much source the styling directive embeds.
const StylingSourceLimit = 12000

// Input is everything a synthesizer needs for one scaffold.
type Input struct {
	Config   entity.GenerationConfig
	Analysis entity.Analysis
	Prompt   string
	Image    *entity.Image
}

// PageCount is the number of logical pages the output must contain.
func (in Input) PageCount() int {
	n := len(in.Config.Flow)
	if in.Analysis.Pages > n {
		n = in.Analysis.Pages
	}
	if n < 1 {
		n = 1
	}
	return n
}

// PageNames returns one display name per logical page.
func (in Input) PageNames() []string {
	n := in.PageCount()
	names := make([]string, n)
	for i := range names {
		if i < len(in.Config.Flow) && strings.TrimSpace(in.Config.Flow[i].Name) != "" {
			names[i] = strings.TrimSpace(in.Config.Flow[i].Name)
			continue
		}
		if i == 0 {
			names[i] = "Home"
			continue
		}
		names[i] = fmt.Sprintf("Page %d", i+1)
	}
	return names
}

// compose joins non-empty blocks in order, separated by blank lines.
func compose(blocks ...string) string {
	var parts []string
	for _, b := range blocks {
		if b = strings.TrimSpace(b); b != "" {
			parts = append(parts, b)
		}
	}
	return strings.Join(parts, "\n\n")
}

// scaffoldDirective assembles a scaffold directive from the concern blocks in
// their fixed order: input and format, theme, navigation, interaction,
// features, routing, output rules.
func scaffoldDirective(format, output string, in Input) string {
	return compose(
		inputBlock(in)+"\n"+format,
		themeBlock(in.Config),
		navigationBlock(in),
		interactionBlock(in.Config.InteractionLevel),
		featuresBlock(in.Config.Features),
		routingBlock(in),
		output,
	)
}

func inputBlock(in Input) string {
	var b strings.Builder
	if in.Image != nil {
		b.WriteString("You are a senior UI engineer. Convert the attached sketch or screenshot into a working user interface. ")
		b.WriteString("Reproduce its layout, hierarchy and content as faithfully as possible.\n")
	} else {
		b.WriteString("You are a senior UI engineer. Build a working user interface for this description:\n")
		b.WriteString(`"""` + "\n" + strings.TrimSpace(in.Prompt) + "\n" + `"""` + "\n")
	}
	page := in.Analysis.PageType
	if in.Config.Page.Type != "" {
		page = in.Config.Page.Type
	}
	if page != "" {
		fmt.Fprintf(&b, "Page type: %s.\n", page)
	}
	if len(in.Analysis.Sections) > 0 {
		fmt.Fprintf(&b, "Sections, top to bottom: %s.\n", strings.Join(in.Analysis.Sections, ", "))
	}
	return b.String()
}

// themeBlock describes the palette and design system. For the monochrome
// palette it names exactly the fixed colour set and forbids any other colour.
func themeBlock(cfg entity.GenerationConfig) string {
	var b strings.Builder
	b.WriteString("VISUAL THEME\n")
	switch {
	case cfg.ColorPalette.IsMonochrome():
		b.WriteString("Use a strictly monochrome palette. The only allowed colours are: ")
		b.WriteString(strings.Join(entity.MonochromeColors, ", "))
		b.WriteString(".\nDo not use any other colour value, hue or tinted utility class; express emphasis through contrast, weight and spacing.\n")
	case len(cfg.ColorPalette.Colors) > 0:
		name := cfg.ColorPalette.Name
		if name == "" {
			name = cfg.ColorPalette.ID
		}
		if name != "" {
			fmt.Fprintf(&b, "Palette %q. ", name)
		}
		b.WriteString("Use these colours, the first as primary: ")
		b.WriteString(strings.Join(cfg.ColorPalette.Colors, ", "))
		b.WriteString(". Apply them with arbitrary-value utility classes and keep neutrals for text and surfaces.\n")
	default:
		b.WriteString("Choose a cohesive modern palette with one primary accent and neutral surfaces.\n")
	}
	if ds := strings.TrimSpace(cfg.DesignSystem); ds != "" {
		fmt.Fprintf(&b, "Follow the %s design language for spacing, radii and typography.\n", ds)
	}
	b.WriteString("Use a clear type scale, generous whitespace and consistent spacing.")
	return b.String()
}

func navigationBlock(in Input) string {
	nav := in.Config.Page.Navigation
	if nav == "" {
		nav = in.Analysis.Navigation
	}
	switch strings.ToLower(nav) {
	case "", "topnav", "top", "header":
		return "NAVIGATION\nPlace the primary navigation in a horizontal bar at the top with the brand on the left and links on the right; collapse it into a menu button on small screens."
	case "sidebar", "side":
		return "NAVIGATION\nPlace the primary navigation in a fixed vertical sidebar on the left with grouped links and an active state; content scrolls on the right."
	case "bottom", "tabbar":
		return "NAVIGATION\nPlace the primary navigation in a bottom tab bar with icons and short labels."
	case "none":
		return "NAVIGATION\nDo not add a navigation bar."
	}
	return "NAVIGATION\nNavigation style: " + nav + "."
}

func interactionBlock(level entity.InteractionLevel) string {
	switch level {
	case entity.InteractionStatic:
		return "INTERACTION\nKeep the page static: no animations and no client-side state beyond what the layout needs."
	case entity.InteractionFull:
		return "INTERACTION\nMake the interface fully interactive: working tabs, toggles, modals, form validation feedback, hover and focus states, and smooth transitions."
	}
	return "INTERACTION\nAdd micro-interactions: hover and focus states, subtle transitions on buttons and cards, and visible active states."
}

func featuresBlock(features []string) string {
	var clean []string
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			clean = append(clean, f)
		}
	}
	if len(clean) == 0 {
		return ""
	}
	return "FEATURES\nInclude: " + strings.Join(clean, ", ") + "."
}

// routingBlock is only emitted for multi-page output.
func routingBlock(in Input) string {
	n := in.PageCount()
	if n <= 1 {
		return ""
	}
	var b strings.Builder
	b.WriteString("MULTI-PAGE ROUTING\n")
	fmt.Fprintf(&b, "Render all %d pages in one document. Wrap each page in a container with id=\"page-N\" (page-1 to page-%d) and a data-page attribute holding its name; only page-1 is visible initially.\n", n, n)
	b.WriteString("Every link or button that moves between pages must carry data-navigate=\"page-N\". Do not use real URLs, window navigation or a router library.\n")
	b.WriteString("Pages:\n")
	for i, name := range in.PageNames() {
		desc := ""
		if i < len(in.Config.Flow) {
			desc = strings.TrimSpace(in.Config.Flow[i].Description)
		}
		if desc != "" {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, name, desc)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", i+1, name)
		}
	}
	return b.String()
}

// StylingDirective asks for an enhanced version of source. The embedded source
// is cut at StylingSourceLimit characters.
func StylingDirective(s Synthesizer, cfg entity.GenerationConfig, source string) string {
	return compose(
		"You are a visual design expert. Improve the styling of the following "+s.Format()+" without changing its structure, content or behaviour.",
		themeBlock(cfg),
		`CHECKLIST
- Every colour comes from the theme above.
- Cards and panels use soft shadows and rounded corners for depth.
- Buttons and links have hover and focus states with smooth transitions.
- Headings use a clear hierarchy; sections have generous vertical rhythm.
- Keep every element, id, data attribute and text of the original.`,
		"SOURCE\n"+truncate(source, StylingSourceLimit),
		"Return the complete improved "+s.Format()+" only, with no explanation and no markdown fences.",
	)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
