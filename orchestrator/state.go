package orchestrator

import (
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/project"
)

// Status is the lifecycle of one analysis pipeline.
type Status int

const (
	Idle Status = iota
	Running
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "idle"
}

// State is a read-only copy of one pipeline.
type State struct {
	Kind   models.Kind
	Status Status
	Result models.Result
	Err    error
	// Identity is the snapshot the last dispatch or restore was made against.
	Identity project.Identity
}

// Workspace is the part of the orchestrator state that survives a process restart.
type Workspace struct {
	Snapshot project.Snapshot     `json:"snapshot"`
	Results  []models.Result      `json:"results,omitempty"`
	Fixed    *models.FixedContent `json:"fixed,omitempty"`
	View     models.Kind          `json:"view,omitempty"`
}

type pipeline struct {
	status   Status
	result   models.Result
	err      error
	seq      uint64
	identity project.Identity
}

func (p *pipeline) clear() {
	p.status = Idle
	p.result = models.Result{}
	p.err = nil
}

type fixPipeline struct {
	running  bool
	seq      uint64
	identity project.Identity
	content  *models.FixedContent
}
