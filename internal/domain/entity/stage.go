package entity

// StageTag names a pipeline stage. Stages only move forward.
type StageTag string

const (
	StageAnalyzing StageTag = "analyzing"
	StageScaffold  StageTag = "scaffold"
	StageStyling   StageTag = "styling"
	StageComplete  StageTag = "complete"
)

// Rank orders stage tags; unknown tags rank below analyzing.
func (s StageTag) Rank() int {
	switch s {
	case StageAnalyzing:
		return 1
	case StageScaffold:
		return 2
	case StageStyling:
		return 3
	case StageComplete:
		return 4
	}
	return 0
}

// PipelineStage is an immutable progress record. A later record supersedes an
// earlier one completely; consumers never merge them.
type PipelineStage struct {
	RunID     string          `json:"run_id,omitempty"`
	Stage     StageTag        `json:"stage"`
	Progress  int             `json:"progress"`
	Message   string          `json:"message,omitempty"`
	Code      string          `json:"code,omitempty"`
	Files     []GeneratedFile `json:"files,omitempty"`
	Preview   string          `json:"preview,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorKind ErrorKind       `json:"error_kind,omitempty"`
}

// Terminal reports whether the record ends the run.
func (s PipelineStage) Terminal() bool { return s.Stage == StageComplete }

// Failed reports whether the record is the error variant of the terminal stage.
func (s PipelineStage) Failed() bool { return s.Stage == StageComplete && s.Error != "" }
