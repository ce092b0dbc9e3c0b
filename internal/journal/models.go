package journal

import (
	"time"

	"shoebox/internal/category"
	"shoebox/internal/organizer"
	"shoebox/internal/photo"
	"shoebox/internal/planner"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Layout values describe how category folders nest.
const (
	LayoutFlat   = "flat"
	LayoutNested = "year-parent"
)

// LayoutFor names the folder layout produced for the given options.
func LayoutFor(g category.Granularity, yearAsParent bool) string {
	if yearAsParent && g != category.Yearly {
		return LayoutNested
	}
	return LayoutFlat
}

// RunSpec describes a run about to start. An empty ID is replaced with a
// new UUID.
type RunSpec struct {
	ID           string
	Source       string
	Target       string
	Granularity  category.Granularity
	YearAsParent bool
	Mode         string
	OnCollision  string
	DryRun       bool
	Stats        planner.Stats
}

// Run is one journaled organize invocation.
type Run struct {
	ID          string     `json:"id" yaml:"id"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Status      Status     `json:"status" yaml:"status"`
	Source      string     `json:"source" yaml:"source"`
	Target      string     `json:"target" yaml:"target"`
	Granularity string     `json:"granularity" yaml:"granularity"`
	Layout      string     `json:"layout" yaml:"layout"`
	Mode        string     `json:"mode" yaml:"mode"`
	OnCollision string     `json:"on_collision" yaml:"on_collision"`
	DryRun      bool       `json:"dry_run" yaml:"dry_run"`

	Seen        int `json:"seen" yaml:"seen"`
	Categorized int `json:"categorized" yaml:"categorized"`
	Skipped     int `json:"skipped" yaml:"skipped"`
	Errors      int `json:"errors" yaml:"errors"`

	Copied            int `json:"copied" yaml:"copied"`
	Moved             int `json:"moved" yaml:"moved"`
	CollisionsSkipped int `json:"collisions_skipped" yaml:"collisions_skipped"`
	InPlace           int `json:"in_place" yaml:"in_place"`
	Failed            int `json:"failed" yaml:"failed"`
	FoldersCreated    int `json:"folders_created" yaml:"folders_created"`

	ErrorMessage string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Duration returns the elapsed run time, or zero while the run is open.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Placement is one journaled mover outcome.
type Placement struct {
	ID          int64            `json:"-" yaml:"-"`
	RunID       string           `json:"run_id" yaml:"run_id"`
	Source      string           `json:"source" yaml:"source"`
	Destination string           `json:"destination" yaml:"destination"`
	Category    string           `json:"category" yaml:"category"`
	DateSource  photo.DateSource `json:"date_source" yaml:"date_source"`
	DateDetail  string           `json:"date_detail,omitempty" yaml:"date_detail,omitempty"`
	TakenAt     time.Time        `json:"taken_at" yaml:"taken_at"`
	Action      organizer.Action `json:"action" yaml:"action"`
	Renamed     bool             `json:"renamed,omitempty" yaml:"renamed,omitempty"`
	Error       string           `json:"error,omitempty" yaml:"error,omitempty"`
}

func placementFrom(runID string, p organizer.Placement) Placement {
	out := Placement{
		RunID:       runID,
		Source:      p.Photo.File.Path,
		Destination: p.Destination,
		Category:    p.Category.String(),
		DateSource:  p.Photo.Source,
		DateDetail:  p.Photo.Detail,
		TakenAt:     p.Photo.Date,
		Action:      p.Action,
		Renamed:     p.Renamed,
	}
	if p.Err != nil {
		out.Error = p.Err.Error()
	}
	return out
}
