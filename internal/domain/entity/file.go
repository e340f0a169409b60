package entity

import "time"

// GeneratedFile is one logical artifact produced by a run.
type GeneratedFile struct {
	RunID    string `json:"run_id,omitempty" bson:"run_id"`
	Path     string `json:"path" bson:"path"`
	Content  string `json:"content" bson:"content"`
	Language string `json:"language" bson:"language"` // html, jsx, tsx, vue, svelte
}

// Artifact bundles the persisted output of a completed run.
type Artifact struct {
	RunID     string          `json:"run_id"`
	TechStack TechStack       `json:"tech_stack"`
	Files     []GeneratedFile `json:"files"`
	Preview   string          `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
}
