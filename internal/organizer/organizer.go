package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"shoebox/internal/faults"
	"shoebox/internal/fileutil"
	"shoebox/internal/logging"
	"shoebox/internal/photo"
	"shoebox/internal/planner"
)

// LockFileName is created in the target root while a run writes to it.
const LockFileName = ".shoebox.lock"

// Action describes what happened to one planned photo.
type Action string

const (
	ActionCopied  Action = "copied"
	ActionMoved   Action = "moved"
	ActionSkipped Action = "skipped"
	ActionInPlace Action = "in-place"
	ActionFailed  Action = "failed"
)

// Actions lists every action in display order.
var Actions = []Action{ActionCopied, ActionMoved, ActionSkipped, ActionInPlace, ActionFailed}

// Options controls how a plan is applied.
type Options struct {
	Target      string
	Move        bool
	DryRun      bool
	OnCollision CollisionPolicy
}

// Placement records the outcome for one photo.
type Placement struct {
	Photo       photo.ResolvedPhoto
	Category    photo.Category
	Destination string
	Action      Action
	// Renamed is set when the collision policy picked a suffixed name.
	Renamed bool
	Err     error
}

// Result summarizes an Apply call.
type Result struct {
	Placements     []Placement
	Copied         int
	Moved          int
	Skipped        int
	InPlace        int
	Failed         int
	FoldersCreated int
	DryRun         bool
	Duration       time.Duration
}

// Count returns the number of placements with the given action.
func (r Result) Count(action Action) int {
	switch action {
	case ActionCopied:
		return r.Copied
	case ActionMoved:
		return r.Moved
	case ActionSkipped:
		return r.Skipped
	case ActionInPlace:
		return r.InPlace
	case ActionFailed:
		return r.Failed
	}
	return 0
}

// Failures returns the placements that failed.
func (r Result) Failures() []Placement {
	var out []Placement
	for _, p := range r.Placements {
		if p.Action == ActionFailed {
			out = append(out, p)
		}
	}
	return out
}

func (r *Result) record(p Placement) {
	r.Placements = append(r.Placements, p)
	switch p.Action {
	case ActionCopied:
		r.Copied++
	case ActionMoved:
		r.Moved++
	case ActionSkipped:
		r.Skipped++
	case ActionInPlace:
		r.InPlace++
	case ActionFailed:
		r.Failed++
	}
}

// Organizer places planned photos into category folders.
type Organizer struct {
	logger *slog.Logger
}

// New constructs an Organizer.
func New(logger *slog.Logger) *Organizer {
	return &Organizer{logger: logging.NewComponentLogger(logger, "organizer")}
}

// Apply walks the plan in category order and places each photo under
// opts.Target. The returned error is non-nil only for failures that stop the
// whole run (lock contention, an unusable target, cancellation); per-photo
// failures are recorded on the result.
func (o *Organizer) Apply(ctx context.Context, plan *planner.Plan, opts Options) (Result, error) {
	result := Result{DryRun: opts.DryRun}
	if plan == nil {
		return result, faults.Wrap(faults.ErrValidation, "organize", "apply", "no plan supplied", nil)
	}
	target := strings.TrimSpace(opts.Target)
	if target == "" {
		target = plan.Root
	}
	target = filepath.Clean(target)
	if opts.OnCollision == "" {
		opts.OnCollision = CollisionRename
	}
	logger := logging.WithContext(ctx, o.logger)
	started := time.Now()

	if !opts.DryRun {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return result, faults.Wrap(faults.ErrConfiguration, "organize", "ensure target", target, err)
		}
		lock := flock.New(filepath.Join(target, LockFileName))
		ok, err := lock.TryLock()
		if err != nil {
			return result, faults.Wrap(faults.ErrLocked, "organize", "acquire lock", target, err)
		}
		if !ok {
			return result, faults.Wrap(faults.ErrLocked, "organize", "acquire lock", "another shoebox run is writing to "+target, nil)
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Warn("release target lock failed", logging.Error(err))
			}
		}()
	}

	claimed := make(map[string]struct{})
	for _, cat := range plan.Categories {
		dir := cat.Path(target)
		created, dirErr := o.ensureDir(dir, opts.DryRun)
		if created {
			result.FoldersCreated++
		}
		for _, resolved := range plan.Groups[cat] {
			if err := ctx.Err(); err != nil {
				result.Duration = time.Since(started)
				return result, err
			}
			placement := Placement{Photo: resolved, Category: cat}
			if dirErr != nil {
				placement.Destination = filepath.Join(dir, resolved.File.Name())
				placement.Action = ActionFailed
				placement.Err = faults.Wrap(faults.ErrTransfer, "organize", "create folder", dir, dirErr)
			} else {
				placement = o.place(placement, dir, opts, claimed)
			}
			o.logPlacement(logger, placement)
			result.record(placement)
		}
	}

	result.Duration = time.Since(started)
	logger.Info("organize complete",
		logging.String("target", target),
		logging.Bool("dry_run", opts.DryRun),
		logging.Int("copied", result.Copied),
		logging.Int("moved", result.Moved),
		logging.Int("skipped", result.Skipped),
		logging.Int("in_place", result.InPlace),
		logging.Int("failed", result.Failed),
		logging.Int("folders_created", result.FoldersCreated),
		logging.Duration("elapsed", result.Duration),
	)
	return result, nil
}

func (o *Organizer) ensureDir(dir string, dryRun bool) (bool, error) {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", dir)
		}
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if dryRun {
		return true, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

func (o *Organizer) place(p Placement, dir string, opts Options, claimed map[string]struct{}) Placement {
	src := p.Photo.File.Path
	dest := filepath.Join(dir, p.Photo.File.Name())
	p.Destination = dest

	if fileutil.SameFile(src, dest) {
		p.Action = ActionInPlace
		claimed[dest] = struct{}{}
		return p
	}

	taken, err := isTaken(dest, claimed)
	if err != nil {
		return failed(p, "inspect destination", err)
	}
	if taken {
		switch opts.OnCollision {
		case CollisionSkip:
			p.Action = ActionSkipped
			return p
		case CollisionOverwrite:
		default:
			dest, err = nextAvailablePath(dir, p.Photo.File.Name(), claimed)
			if err != nil {
				return failed(p, "allocate filename", err)
			}
			p.Destination = dest
			p.Renamed = true
		}
	}
	claimed[dest] = struct{}{}

	action := ActionCopied
	if opts.Move {
		action = ActionMoved
	}
	if opts.DryRun {
		p.Action = action
		return p
	}

	if opts.Move {
		err = fileutil.MoveFile(src, dest)
	} else {
		err = fileutil.CopyFile(src, dest)
	}
	if err != nil {
		return failed(p, string(action), err)
	}
	p.Action = action
	return p
}

func failed(p Placement, operation string, err error) Placement {
	p.Action = ActionFailed
	p.Err = faults.Wrap(faults.ErrTransfer, "organize", operation, p.Photo.File.RelPath, err)
	return p
}

func (o *Organizer) logPlacement(logger *slog.Logger, p Placement) {
	switch p.Action {
	case ActionFailed:
		logging.WarnWithContext(logger, "photo not placed", "placement_failed",
			logging.String("source", p.Photo.File.Path),
			logging.String("destination", p.Destination),
			logging.Error(p.Err),
			logging.String(logging.FieldErrorHint, "check target permissions and free space"),
		)
	case ActionSkipped:
		logger.Debug("destination exists; skipped",
			logging.String("source", p.Photo.File.Path),
			logging.String("destination", p.Destination),
		)
	default:
		logger.Debug("photo placed",
			logging.String("source", p.Photo.File.Path),
			logging.String("destination", p.Destination),
			logging.String("action", string(p.Action)),
			logging.Bool("renamed", p.Renamed),
		)
	}
}
