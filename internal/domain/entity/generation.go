package entity

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// InteractionLevel controls how much behaviour the generated UI carries.
type InteractionLevel string

const (
	InteractionStatic InteractionLevel = "static"
	InteractionMicro  InteractionLevel = "micro"
	InteractionFull   InteractionLevel = "full"
)

func (l InteractionLevel) Valid() bool {
	switch l {
	case InteractionStatic, InteractionMicro, InteractionFull:
		return true
	}
	return false
}

// MonochromePaletteID is the reserved palette id for the fixed black/white/grey set.
const MonochromePaletteID = "bw"

// MonochromeColors is the fixed nine-colour set used for MonochromePaletteID.
var MonochromeColors = []string{
	"#000000", "#171717", "#262626", "#404040", "#737373",
	"#a3a3a3", "#d4d4d4", "#f5f5f5", "#ffffff",
}

const maxPaletteColors = 5

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type ColorPalette struct {
	ID     string   `json:"id,omitempty" bson:"id,omitempty"`
	Name   string   `json:"name,omitempty" bson:"name,omitempty"`
	Colors []string `json:"colors,omitempty" bson:"colors,omitempty"`
}

func (p ColorPalette) IsMonochrome() bool {
	return strings.EqualFold(strings.TrimSpace(p.ID), MonochromePaletteID)
}

// PageMeta describes the page being generated.
type PageMeta struct {
	Type       string   `json:"type,omitempty" bson:"type,omitempty"`
	Navigation string   `json:"navigation,omitempty" bson:"navigation,omitempty"`
	Sections   []string `json:"sections,omitempty" bson:"sections,omitempty"`
}

// FlowPage is one page of a multi-page flow.
type FlowPage struct {
	Name        string `json:"name" bson:"name"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// GenerationConfig describes the desired output of a run. It is created once per
// request and never mutated while the run executes.
type GenerationConfig struct {
	TechStack        TechStack        `json:"tech_stack" bson:"tech_stack"`
	ColorPalette     ColorPalette     `json:"color_palette" bson:"color_palette"`
	DesignSystem     string           `json:"design_system,omitempty" bson:"design_system,omitempty"`
	InteractionLevel InteractionLevel `json:"interaction_level,omitempty" bson:"interaction_level,omitempty"`
	Features         []string         `json:"features,omitempty" bson:"features,omitempty"`
	Page             PageMeta         `json:"page" bson:"page"`
	Flow             []FlowPage       `json:"flow,omitempty" bson:"flow,omitempty"`
}

// Image is an input sketch or screenshot.
type Image struct {
	Data     []byte `json:"data" bson:"data"`
	MimeType string `json:"mime_type" bson:"mime_type"`
}

// MinPromptChars is the minimum number of non-whitespace characters of a text prompt.
const MinPromptChars = 10

// Request is one generation trigger: exactly one of Image or Prompt plus a config.
type Request struct {
	Config GenerationConfig `json:"config" bson:"config"`
	Image  *Image           `json:"image,omitempty" bson:"image,omitempty"`
	Prompt string           `json:"prompt,omitempty" bson:"prompt,omitempty"`
}

// Mode reports which entry point the request uses.
func (r Request) Mode() string {
	if r.Image != nil {
		return "image"
	}
	return "text"
}

func (r Request) Validate() error {
	cfg := r.Config
	if cfg.TechStack == "" {
		return &ValidationError{Field: "config.tech_stack", Message: "is required"}
	}
	if !cfg.TechStack.Valid() {
		return &ValidationError{Field: "config.tech_stack", Message: fmt.Sprintf("unknown stack %q", cfg.TechStack)}
	}

	hasImage := r.Image != nil && len(r.Image.Data) > 0
	hasPrompt := strings.TrimSpace(r.Prompt) != ""
	switch {
	case !hasImage && !hasPrompt:
		return &ValidationError{Field: "image|prompt", Message: "one of image or prompt is required"}
	case hasImage && hasPrompt:
		return &ValidationError{Field: "image|prompt", Message: "image and prompt are mutually exclusive"}
	}
	if r.Image != nil && !hasImage {
		return &ValidationError{Field: "image.data", Message: "is empty"}
	}
	if hasImage && !strings.HasPrefix(strings.TrimSpace(r.Image.MimeType), "image/") {
		return &ValidationError{Field: "image.mime_type", Message: "must be an image/* type"}
	}
	if hasPrompt && countVisible(r.Prompt) < MinPromptChars {
		return &ValidationError{Field: "prompt", Message: fmt.Sprintf("must contain at least %d non-whitespace characters", MinPromptChars)}
	}

	if !cfg.ColorPalette.IsMonochrome() {
		if len(cfg.ColorPalette.Colors) > maxPaletteColors {
			return &ValidationError{Field: "config.color_palette.colors", Message: fmt.Sprintf("at most %d colors", maxPaletteColors)}
		}
		for _, c := range cfg.ColorPalette.Colors {
			if !hexColor.MatchString(strings.TrimSpace(c)) {
				return &ValidationError{Field: "config.color_palette.colors", Message: fmt.Sprintf("%q is not a hex color", c)}
			}
		}
	}
	if cfg.InteractionLevel != "" && !cfg.InteractionLevel.Valid() {
		return &ValidationError{Field: "config.interaction_level", Message: "must be static, micro or full"}
	}
	return nil
}

func countVisible(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// Analysis is the advisory layout description produced by the analyzing stage.
type Analysis struct {
	Sections   []string `json:"sections"`
	Navigation string   `json:"navigation"`
	PageType   string   `json:"pageType"`
	Pages      int      `json:"pages,omitempty"`
}

// DefaultAnalysis is substituted whenever layout analysis cannot be parsed.
func DefaultAnalysis() Analysis {
	return Analysis{
		Sections:   []string{"hero", "content", "footer"},
		Navigation: "topnav",
		PageType:   "landing",
	}
}
