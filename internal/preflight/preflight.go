package preflight

import (
	"os"

	"shoebox/internal/config"
	"shoebox/internal/planner"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
	Detail string `json:"detail" yaml:"detail"`
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// RunAll executes the checks that apply to cfg. When plan is non-nil the
// free-space check sizes the transfer from its photos; a move within one
// file system needs no extra space and is not checked.
func RunAll(cfg *config.Config, plan *planner.Plan) []Result {
	if cfg == nil {
		return nil
	}

	source := cfg.Paths.SourceDir
	target := cfg.TargetRoot()
	if plan != nil && plan.Root != "" {
		source = plan.Root
	}

	results := []Result{
		CheckDirectoryAccess("Source directory", source, AccessRead),
		CheckDirectoryAccess("Target directory", target, AccessWrite),
	}
	if cfg.Journal.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir, AccessWrite))
	}

	if plan != nil {
		move := cfg.MoveFiles()
		if !move || !SameFileSystem(source, target) {
			results = append(results, CheckFreeSpace(target, PlannedBytes(plan)))
		}
	}
	return results
}

// PlannedBytes sums the sizes of every photo in plan. Files that can no
// longer be stat'ed are ignored; the mover reports them.
func PlannedBytes(plan *planner.Plan) uint64 {
	var total uint64
	for _, p := range plan.Photos() {
		info, err := os.Stat(p.File.Path)
		if err != nil || info.Size() < 0 {
			continue
		}
		total += uint64(info.Size())
	}
	return total
}
