package planner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"shoebox/internal/category"
	"shoebox/internal/faults"
	"shoebox/internal/logging"
	"shoebox/internal/photo"
)

// DateResolver resolves one file's capture date.
type DateResolver interface {
	Resolve(ctx context.Context, file photo.SourceFile) (photo.ResolvedPhoto, error)
}

// Options describes one scan.
type Options struct {
	Root         string
	Granularity  category.Granularity
	YearAsParent bool
	// ExcludeDirs are skipped entirely; relative entries are resolved
	// against Root. An entry equal to Root is ignored.
	ExcludeDirs []string
}

// Stats summarizes a scan. Seen always equals Categorized + Skipped + Errors.
type Stats struct {
	Seen        int                      `json:"seen" yaml:"seen"`
	Categorized int                      `json:"categorized" yaml:"categorized"`
	Skipped     int                      `json:"skipped" yaml:"skipped"`
	Errors      int                      `json:"errors" yaml:"errors"`
	BySource    map[photo.DateSource]int `json:"by_source" yaml:"by_source"`
}

// FileError records a file or directory that could not be planned.
type FileError struct {
	Path    string
	RelPath string
	Err     error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.RelPath, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// Plan is the outcome of a scan: categorized photos in enumeration order.
type Plan struct {
	Root         string
	Granularity  category.Granularity
	YearAsParent bool
	// Categories lists each category once, in order of first appearance.
	Categories []photo.Category
	Groups     map[photo.Category][]photo.ResolvedPhoto
	Stats      Stats
	Failures   []FileError
	Duration   time.Duration
}

// Photos returns every planned photo, grouped by category in Categories order.
func (p *Plan) Photos() []photo.ResolvedPhoto {
	if p == nil {
		return nil
	}
	out := make([]photo.ResolvedPhoto, 0, p.Stats.Categorized)
	for _, cat := range p.Categories {
		out = append(out, p.Groups[cat]...)
	}
	return out
}

func (p *Plan) add(cat photo.Category, resolved photo.ResolvedPhoto) {
	if _, ok := p.Groups[cat]; !ok {
		p.Categories = append(p.Categories, cat)
	}
	p.Groups[cat] = append(p.Groups[cat], resolved)
	p.Stats.Categorized++
	p.Stats.BySource[resolved.Source]++
}

// Planner scans a source tree and groups its photos by category.
type Planner struct {
	fs       afero.Fs
	resolver DateResolver
	logger   *slog.Logger
}

// New constructs a Planner. A nil fs means the host file system.
func New(fsys afero.Fs, resolver DateResolver, logger *slog.Logger) *Planner {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Planner{
		fs:       fsys,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "planner"),
	}
}

// Plan walks opts.Root in lexical order. Per-file problems are recorded in
// the plan; a missing or unreadable root returns faults.ErrSourceRoot.
func (p *Planner) Plan(ctx context.Context, opts Options) (*Plan, error) {
	if p.resolver == nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "plan", "init", "date resolver not configured", nil)
	}
	root := filepath.Clean(strings.TrimSpace(opts.Root))
	if strings.TrimSpace(opts.Root) == "" {
		return nil, faults.Wrap(faults.ErrSourceRoot, "plan", "stat root", "source directory not set", nil)
	}
	info, err := p.fs.Stat(root)
	if err != nil {
		return nil, faults.Wrap(faults.ErrSourceRoot, "plan", "stat root", root, err)
	}
	if !info.IsDir() {
		return nil, faults.Wrap(faults.ErrSourceRoot, "plan", "stat root", root+" is not a directory", nil)
	}
	// The walk uses lstat, so a symlinked root would never be descended.
	if _, onDisk := p.fs.(*afero.OsFs); onDisk {
		if target, err := filepath.EvalSymlinks(root); err == nil {
			root = target
		}
	}

	granularity := opts.Granularity
	if granularity == "" {
		granularity = category.Yearly
	}
	plan := &Plan{
		Root:         root,
		Granularity:  granularity,
		YearAsParent: opts.YearAsParent,
		Groups:       make(map[photo.Category][]photo.ResolvedPhoto),
		Stats:        Stats{BySource: make(map[photo.DateSource]int)},
	}
	excluded := buildExcluded(root, opts.ExcludeDirs)
	started := time.Now()

	walkErr := afero.Walk(p.fs, root, func(path string, info fs.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel := relPath(root, path)
		if err != nil {
			if path == root {
				return faults.Wrap(faults.ErrSourceRoot, "plan", "read root", root, err)
			}
			plan.Stats.Seen++
			p.recordFailure(plan, path, rel, faults.Wrap(faults.ErrUnreadable, "plan", "read", rel, err))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if path != root && isExcluded(path, excluded) {
				p.logger.Debug("excluded directory", logging.String("path", path))
				return filepath.SkipDir
			}
			return nil
		}

		plan.Stats.Seen++
		name := info.Name()
		if photo.IsResourceFork(name) {
			p.skip(plan, rel, "resource fork")
			return nil
		}
		file, ok := photo.NewSourceFile(path, rel)
		if !ok {
			p.skip(plan, rel, "unsupported extension")
			return nil
		}

		resolved, err := p.resolver.Resolve(ctx, file)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			p.recordFailure(plan, path, rel, err)
			return nil
		}
		plan.add(category.For(resolved.Date, granularity, opts.YearAsParent), resolved)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	plan.Duration = time.Since(started)
	p.logger.Info("scan complete",
		logging.String("root", root),
		logging.String("granularity", string(granularity)),
		logging.Int("seen", plan.Stats.Seen),
		logging.Int("categorized", plan.Stats.Categorized),
		logging.Int("skipped", plan.Stats.Skipped),
		logging.Int("errors", plan.Stats.Errors),
		logging.Int("categories", len(plan.Categories)),
		logging.Duration("elapsed", plan.Duration),
	)
	return plan, nil
}

func (p *Planner) skip(plan *Plan, rel, reason string) {
	plan.Stats.Skipped++
	p.logger.Debug("skipped file", logging.String("path", rel), logging.String("reason", reason))
}

func (p *Planner) recordFailure(plan *Plan, path, rel string, err error) {
	plan.Stats.Errors++
	plan.Failures = append(plan.Failures, FileError{Path: path, RelPath: rel, Err: err})
	logging.WarnWithContext(p.logger, "file excluded from plan", "plan_file_failed",
		logging.String("path", rel),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check file permissions and integrity"),
	)
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func buildExcluded(root string, dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		dir = filepath.Clean(dir)
		if dir == root {
			continue
		}
		out = append(out, dir)
	}
	return out
}

func isExcluded(path string, excluded []string) bool {
	for _, dir := range excluded {
		if path == dir || isUnder(dir, path) {
			return true
		}
	}
	return false
}

// isUnder reports whether path lies strictly inside dir.
func isUnder(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
