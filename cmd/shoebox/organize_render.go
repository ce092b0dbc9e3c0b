package main

import (
	"fmt"
	"strings"

	"shoebox/internal/organizer"
	"shoebox/internal/planner"
	"shoebox/internal/preflight"
)

type placementView struct {
	Source      string           `json:"source" yaml:"source"`
	Destination string           `json:"destination" yaml:"destination"`
	Category    string           `json:"category" yaml:"category"`
	Action      organizer.Action `json:"action" yaml:"action"`
	Renamed     bool             `json:"renamed,omitempty" yaml:"renamed,omitempty"`
	Error       string           `json:"error,omitempty" yaml:"error,omitempty"`
}

type organizeView struct {
	RunID          string             `json:"run_id" yaml:"run_id"`
	DryRun         bool               `json:"dry_run" yaml:"dry_run"`
	Source         string             `json:"source" yaml:"source"`
	Target         string             `json:"target" yaml:"target"`
	Journaled      bool               `json:"journaled" yaml:"journaled"`
	Stats          planner.Stats      `json:"stats" yaml:"stats"`
	Preflight      []preflight.Result `json:"preflight" yaml:"preflight"`
	Copied         int                `json:"copied" yaml:"copied"`
	Moved          int                `json:"moved" yaml:"moved"`
	Skipped        int                `json:"skipped" yaml:"skipped"`
	InPlace        int                `json:"in_place" yaml:"in_place"`
	Failed         int                `json:"failed" yaml:"failed"`
	FoldersCreated int                `json:"folders_created" yaml:"folders_created"`
	Placements     []placementView    `json:"placements" yaml:"placements"`
}

func newOrganizeView(o *organizeOutcome) organizeView {
	r := o.Result
	view := organizeView{
		RunID:          o.RunID,
		DryRun:         o.DryRun,
		Source:         o.Plan.Root,
		Target:         o.Target,
		Journaled:      o.Journaled,
		Stats:          o.Plan.Stats,
		Preflight:      o.Preflight,
		Copied:         r.Copied,
		Moved:          r.Moved,
		Skipped:        r.Skipped,
		InPlace:        r.InPlace,
		Failed:         r.Failed,
		FoldersCreated: r.FoldersCreated,
		Placements:     make([]placementView, 0, len(r.Placements)),
	}
	for _, p := range r.Placements {
		pv := placementView{
			Source:      p.Photo.File.Path,
			Destination: p.Destination,
			Category:    p.Category.String(),
			Action:      p.Action,
			Renamed:     p.Renamed,
		}
		if p.Err != nil {
			pv.Error = p.Err.Error()
		}
		view.Placements = append(view.Placements, pv)
	}
	return view
}

func renderOrganize(o *organizeOutcome, colorize bool) string {
	var b strings.Builder

	title := "Organize"
	if o.DryRun {
		title = "Organize (dry run)"
	}
	for _, line := range renderSectionHeader(title, colorize) {
		b.WriteString(line + "\n")
	}
	b.WriteString(renderStatusLine("Run", statusInfo, o.RunID, colorize) + "\n")
	b.WriteString(renderStatusLine("Source", statusInfo, o.Plan.Root, colorize) + "\n")
	b.WriteString(renderStatusLine("Target", statusInfo, o.Target, colorize) + "\n")
	b.WriteString("\n")

	if failed := preflight.Failed(o.Preflight); len(failed) > 0 {
		for _, line := range renderSectionHeader("Preflight", colorize) {
			b.WriteString(line + "\n")
		}
		for _, r := range o.Preflight {
			kind := statusOK
			if !r.Passed {
				kind = statusError
			}
			b.WriteString(renderStatusLine(r.Name, kind, r.Detail, colorize) + "\n")
		}
		b.WriteString("\n")
		if !o.DryRun {
			return b.String()
		}
	}

	r := o.Result
	rows := make([][]string, 0, len(organizer.Actions))
	for _, action := range organizer.Actions {
		rows = append(rows, []string{titleCase(string(action)), formatCount(r.Count(action))})
	}
	b.WriteString(renderTable(tableSpec{
		headers: []string{"Action", "Photos"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignRight},
		footer:  []string{"Folders created", formatCount(r.FoldersCreated)},
	}))
	b.WriteString("\n\n")

	b.WriteString(renderPlanSummary(o.Plan, colorize))

	if failures := r.Failures(); len(failures) > 0 {
		b.WriteString("\nFailed placements:\n")
		for _, p := range failures {
			fmt.Fprintf(&b, "  %s: %v\n", p.Photo.File.RelPath, p.Err)
		}
	}
	if !o.Journaled {
		b.WriteString("\nRun not journaled.\n")
	}
	return b.String()
}
