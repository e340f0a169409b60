package entity

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCanceled  RunStatus = "canceled"
)

const runPromptExcerpt = 160

// Run is the stored record of one generation request.
type Run struct {
	ID        string    `json:"id" bson:"id"`
	Mode      string    `json:"mode" bson:"mode"` // image, text
	TechStack TechStack `json:"tech_stack" bson:"tech_stack"`
	Title     string    `json:"title,omitempty" bson:"title,omitempty"`
	Status    RunStatus `json:"status" bson:"status"`
	Progress  int       `json:"progress" bson:"progress"`
	Error     string    `json:"error,omitempty" bson:"error,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty" bson:"error_kind,omitempty"`
	Request   Request   `json:"-" bson:"request"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func NewRun(req Request) *Run {
	now := time.Now().UTC()
	return &Run{
		ID:        uuid.New().String(),
		Mode:      req.Mode(),
		TechStack: req.Config.TechStack,
		Title:     excerpt(req.Prompt, runPromptExcerpt),
		Status:    RunStatusPending,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Run) UpdateStatus(status RunStatus) {
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
}

// Finish records the outcome carried by the last stage the run emitted.
func (r *Run) Finish(last PipelineStage) {
	r.Progress = last.Progress
	switch {
	case last.Failed():
		r.Error = last.Error
		r.ErrorKind = last.ErrorKind
		r.UpdateStatus(RunStatusFailed)
	case last.Terminal():
		r.UpdateStatus(RunStatusCompleted)
	default:
		r.UpdateStatus(RunStatusCanceled)
	}
}

func (r *Run) IsFinished() bool {
	switch r.Status {
	case RunStatusCompleted, RunStatusFailed, RunStatusCanceled:
		return true
	}
	return false
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
