package main

import (
	"fmt"
	"strings"
	"time"

	"shoebox/internal/journal"
	"shoebox/internal/photo"
	"shoebox/internal/planner"
)

const dateDisplayLayout = "2006-01-02 15:04:05"

var dateSourceLabels = []struct {
	source photo.DateSource
	label  string
}{
	{photo.SourceMetadata, "metadata"},
	{photo.SourceFilename, "filename"},
	{photo.SourceModTime, "mtime"},
}

type photoView struct {
	Path   string           `json:"path" yaml:"path"`
	Date   time.Time        `json:"date" yaml:"date"`
	Source photo.DateSource `json:"source" yaml:"source"`
	Detail string           `json:"detail,omitempty" yaml:"detail,omitempty"`
}

type folderView struct {
	Category string      `json:"category" yaml:"category"`
	Count    int         `json:"count" yaml:"count"`
	Photos   []photoView `json:"photos" yaml:"photos"`
}

type failureView struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

type planView struct {
	Root         string        `json:"root" yaml:"root"`
	Granularity  string        `json:"granularity" yaml:"granularity"`
	Layout       string        `json:"layout" yaml:"layout"`
	Folders      []folderView  `json:"folders" yaml:"folders"`
	Stats        planner.Stats `json:"stats" yaml:"stats"`
	Failures     []failureView `json:"failures,omitempty" yaml:"failures,omitempty"`
	DurationSecs float64       `json:"duration_seconds" yaml:"duration_seconds"`
}

func newPlanView(plan *planner.Plan) planView {
	view := planView{
		Root:         plan.Root,
		Granularity:  plan.Granularity.String(),
		Layout:       journal.LayoutFor(plan.Granularity, plan.YearAsParent),
		Folders:      make([]folderView, 0, len(plan.Categories)),
		Stats:        plan.Stats,
		DurationSecs: plan.Duration.Seconds(),
	}
	for _, cat := range plan.Categories {
		photos := plan.Groups[cat]
		folder := folderView{Category: cat.String(), Count: len(photos), Photos: make([]photoView, 0, len(photos))}
		for _, p := range photos {
			folder.Photos = append(folder.Photos, photoView{
				Path:   p.File.RelPath,
				Date:   p.Date,
				Source: p.Source,
				Detail: p.Detail,
			})
		}
		view.Folders = append(view.Folders, folder)
	}
	for _, f := range plan.Failures {
		view.Failures = append(view.Failures, failureView{Path: f.RelPath, Error: f.Err.Error()})
	}
	return view
}

// renderPlan prints the folder table, a per-folder preview of at most limit
// photos (0 lists all), and the scan summary.
func renderPlan(plan *planner.Plan, target string, limit int, colorize bool) string {
	var b strings.Builder

	for _, line := range renderSectionHeader("Plan", colorize) {
		b.WriteString(line + "\n")
	}
	b.WriteString(renderStatusLine("Source", statusInfo, plan.Root, colorize) + "\n")
	b.WriteString(renderStatusLine("Target", statusInfo, target, colorize) + "\n")
	b.WriteString(renderStatusLine("Granularity", statusInfo,
		fmt.Sprintf("%s (%s)", plan.Granularity, journal.LayoutFor(plan.Granularity, plan.YearAsParent)), colorize) + "\n")
	b.WriteString("\n")

	if len(plan.Categories) == 0 {
		b.WriteString("No supported photos found.\n\n")
	} else {
		rows := make([][]string, 0, len(plan.Categories))
		for _, cat := range plan.Categories {
			rows = append(rows, []string{cat.String(), formatCount(len(plan.Groups[cat]))})
		}
		b.WriteString(renderTable(tableSpec{
			headers: []string{"Folder", "Photos"},
			rows:    rows,
			aligns:  []columnAlignment{alignLeft, alignRight},
			footer:  []string{"Total", formatCount(plan.Stats.Categorized)},
		}))
		b.WriteString("\n\n")

		for _, cat := range plan.Categories {
			b.WriteString(renderFolderPreview(cat, plan.Groups[cat], limit))
			b.WriteString("\n")
		}
	}

	b.WriteString(renderPlanSummary(plan, colorize))
	return b.String()
}

func renderFolderPreview(cat photo.Category, photos []photo.ResolvedPhoto, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", cat, pluralize(len(photos), "photo"))
	shown := photos
	if limit > 0 && len(photos) > limit {
		shown = photos[:limit]
	}
	for _, p := range shown {
		fmt.Fprintf(&b, "  %s  %s  %s\n", p.Date.Format(dateDisplayLayout), p.Source, p.File.RelPath)
	}
	if hidden := len(photos) - len(shown); hidden > 0 {
		fmt.Fprintf(&b, "  ... and %s more %s\n", formatCount(hidden), plural(hidden, "photo"))
	}
	return b.String()
}

func renderPlanSummary(plan *planner.Plan, colorize bool) string {
	var b strings.Builder
	for _, line := range renderSectionHeader("Summary", colorize) {
		b.WriteString(line + "\n")
	}
	stats := plan.Stats
	lines := []string{
		renderStatusLine("Files seen", statusInfo, formatCount(stats.Seen), colorize),
		renderStatusLine("Categorized", statusOK, formatCount(stats.Categorized), colorize),
		renderStatusLine("Skipped", countStatus(stats.Skipped, statusInfo), formatCount(stats.Skipped), colorize),
		renderStatusLine("Errors", countStatus(stats.Errors, statusWarn), formatCount(stats.Errors), colorize),
	}
	for _, s := range dateSourceLabels {
		if n := stats.BySource[s.source]; n > 0 {
			lines = append(lines, renderStatusLine("Dated by "+s.label, statusInfo, formatCount(n), colorize))
		}
	}
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	if len(plan.Failures) > 0 {
		b.WriteString("\nUnreadable files:\n")
		for _, f := range plan.Failures {
			fmt.Fprintf(&b, "  %s: %v\n", f.RelPath, f.Err)
		}
	}
	return b.String()
}
