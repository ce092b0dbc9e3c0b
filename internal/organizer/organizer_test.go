package organizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"shoebox/internal/category"
	"shoebox/internal/faults"
	"shoebox/internal/logging"
	"shoebox/internal/photo"
	"shoebox/internal/planner"
)

type planEntry struct {
	rel      string
	content  string
	category photo.Category
}

func buildPlan(t *testing.T, root string, entries []planEntry) *planner.Plan {
	t.Helper()
	plan := &planner.Plan{
		Root:        root,
		Granularity: category.Yearly,
		Groups:      make(map[photo.Category][]photo.ResolvedPhoto),
		Stats:       planner.Stats{BySource: make(map[photo.DateSource]int)},
	}
	for _, e := range entries {
		path := filepath.Join(root, filepath.FromSlash(e.rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(e.content), 0o644); err != nil {
			t.Fatal(err)
		}
		file, ok := photo.NewSourceFile(path, e.rel)
		if !ok {
			t.Fatalf("unsupported test file %s", e.rel)
		}
		if _, seen := plan.Groups[e.category]; !seen {
			plan.Categories = append(plan.Categories, e.category)
		}
		plan.Groups[e.category] = append(plan.Groups[e.category], photo.ResolvedPhoto{
			File:   file,
			Date:   time.Date(2023, 7, 4, 10, 0, 0, 0, time.Local),
			Source: photo.SourceFilename,
		})
		plan.Stats.Seen++
		plan.Stats.Categorized++
	}
	return plan
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestApplyCopiesIntoCategoryFolders(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	plan := buildPlan(t, source, []planEntry{
		{rel: "a.jpg", content: "A", category: "2023"},
		{rel: "nested/b.heic", content: "B", category: "2023"},
		{rel: "c.jpg", content: "C", category: "2021"},
	})

	result, err := New(logging.NewNop()).Apply(context.Background(), plan, Options{Target: target})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Copied != 3 || result.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.FoldersCreated != 2 {
		t.Fatalf("FoldersCreated = %d, want 2", result.FoldersCreated)
	}
	if got := readFile(t, filepath.Join(target, "2023", "a.jpg")); got != "A" {
		t.Fatalf("a.jpg = %q", got)
	}
	if got := readFile(t, filepath.Join(target, "2023", "b.heic")); got != "B" {
		t.Fatalf("b.heic = %q", got)
	}
	if got := readFile(t, filepath.Join(target, "2021", "c.jpg")); got != "C" {
		t.Fatalf("c.jpg = %q", got)
	}
	if _, err := os.Stat(filepath.Join(source, "a.jpg")); err != nil {
		t.Fatalf("copy must keep source: %v", err)
	}
	if len(result.Placements) != 3 || result.Placements[0].Category != "2023" || result.Placements[2].Category != "2021" {
		t.Fatalf("placements not in plan order: %+v", result.Placements)
	}
}

func TestApplyMoveRemovesSource(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	plan := buildPlan(t, source, []planEntry{{rel: "a.jpg", content: "A", category: "2023/2023_Summer"}})

	result, err := New(nil).Apply(context.Background(), plan, Options{Target: target, Move: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Moved != 1 {
		t.Fatalf("Moved = %d", result.Moved)
	}
	if _, err := os.Stat(filepath.Join(source, "a.jpg")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected source removed, got %v", err)
	}
	if got := readFile(t, filepath.Join(target, "2023", "2023_Summer", "a.jpg")); got != "A" {
		t.Fatalf("moved content = %q", got)
	}
}

func TestApplyCollisionPolicies(t *testing.T) {
	tests := []struct {
		policy       CollisionPolicy
		wantAction   Action
		wantDest     string
		wantExisting string
	}{
		{policy: CollisionRename, wantAction: ActionCopied, wantDest: "a_2.jpg", wantExisting: "old"},
		{policy: CollisionSkip, wantAction: ActionSkipped, wantDest: "a.jpg", wantExisting: "old"},
		{policy: CollisionOverwrite, wantAction: ActionCopied, wantDest: "a.jpg", wantExisting: "new"},
	}
	for _, tc := range tests {
		t.Run(string(tc.policy), func(t *testing.T) {
			source := t.TempDir()
			target := t.TempDir()
			plan := buildPlan(t, source, []planEntry{{rel: "a.jpg", content: "new", category: "2023"}})
			if err := os.MkdirAll(filepath.Join(target, "2023"), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(target, "2023", "a.jpg"), []byte("old"), 0o644); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(target, "2023", "a_1.jpg"), []byte("older"), 0o644); err != nil {
				t.Fatal(err)
			}

			result, err := New(nil).Apply(context.Background(), plan, Options{Target: target, OnCollision: tc.policy})
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			p := result.Placements[0]
			if p.Action != tc.wantAction {
				t.Fatalf("action = %s, want %s", p.Action, tc.wantAction)
			}
			if filepath.Base(p.Destination) != tc.wantDest {
				t.Fatalf("destination = %s, want %s", p.Destination, tc.wantDest)
			}
			if got := readFile(t, filepath.Join(target, "2023", "a.jpg")); got != tc.wantExisting {
				t.Fatalf("a.jpg = %q, want %q", got, tc.wantExisting)
			}
			if result.FoldersCreated != 0 {
				t.Fatalf("existing folder counted as created")
			}
		})
	}
}

func TestApplyRenamesSameNameWithinRun(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	plan := buildPlan(t, source, []planEntry{
		{rel: "one/IMG_0001.jpg", content: "first", category: "2023"},
		{rel: "two/IMG_0001.jpg", content: "second", category: "2023"},
	})

	result, err := New(nil).Apply(context.Background(), plan, Options{Target: target})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Copied != 2 {
		t.Fatalf("Copied = %d", result.Copied)
	}
	if !result.Placements[1].Renamed {
		t.Fatal("second placement should be renamed")
	}
	if got := readFile(t, filepath.Join(target, "2023", "IMG_0001.jpg")); got != "first" {
		t.Fatalf("first = %q", got)
	}
	if got := readFile(t, filepath.Join(target, "2023", "IMG_0001_1.jpg")); got != "second" {
		t.Fatalf("second = %q", got)
	}
}

func TestApplyInPlace(t *testing.T) {
	root := t.TempDir()
	plan := buildPlan(t, root, []planEntry{{rel: "2023/a.jpg", content: "A", category: "2023"}})

	result, err := New(nil).Apply(context.Background(), plan, Options{Target: root})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.InPlace != 1 || result.Copied != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	entries, err := os.ReadDir(filepath.Join(root, "2023"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("in-place file must not be duplicated, found %d entries", len(entries))
	}
}

func TestApplyDryRunLeavesDiskUntouched(t *testing.T) {
	source := t.TempDir()
	target := filepath.Join(t.TempDir(), "out")
	plan := buildPlan(t, source, []planEntry{
		{rel: "a.jpg", content: "A", category: "2023"},
		{rel: "b.jpg", content: "B", category: "2022"},
	})

	result, err := New(nil).Apply(context.Background(), plan, Options{Target: target, DryRun: true, Move: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !result.DryRun || result.Moved != 2 || result.FoldersCreated != 2 {
		t.Fatalf("unexpected dry-run result: %+v", result)
	}
	if _, err := os.Stat(target); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run created target: %v", err)
	}
	if _, err := os.Stat(filepath.Join(source, "a.jpg")); err != nil {
		t.Fatalf("dry run removed source: %v", err)
	}
}

func TestApplyRecordsPerPhotoFailures(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	plan := buildPlan(t, source, []planEntry{
		{rel: "gone.jpg", content: "X", category: "2023"},
		{rel: "ok.jpg", content: "OK", category: "2023"},
	})
	if err := os.Remove(filepath.Join(source, "gone.jpg")); err != nil {
		t.Fatal(err)
	}

	result, err := New(nil).Apply(context.Background(), plan, Options{Target: target})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Failed != 1 || result.Copied != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	failures := result.Failures()
	if len(failures) != 1 || !errors.Is(failures[0].Err, faults.ErrTransfer) {
		t.Fatalf("expected transfer failure, got %+v", failures)
	}
	if got := readFile(t, filepath.Join(target, "2023", "ok.jpg")); got != "OK" {
		t.Fatalf("ok.jpg = %q", got)
	}
}

func TestApplyFailsWhenCategoryPathIsFile(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	plan := buildPlan(t, source, []planEntry{{rel: "a.jpg", content: "A", category: "2023"}})
	if err := os.WriteFile(filepath.Join(target, "2023"), []byte("not a dir"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := New(nil).Apply(context.Background(), plan, Options{Target: target})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Failed != 1 || result.Count(ActionFailed) != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
}

func TestApplyRejectsLockedTarget(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	plan := buildPlan(t, source, []planEntry{{rel: "a.jpg", content: "A", category: "2023"}})

	held := flock.New(filepath.Join(target, LockFileName))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: %v %v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	_, err = New(nil).Apply(context.Background(), plan, Options{Target: target})
	if !errors.Is(err, faults.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(target, "2023")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("locked run must not write: %v", statErr)
	}
}

func TestApplyHonorsCancellation(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	plan := buildPlan(t, source, []planEntry{{rel: "a.jpg", content: "A", category: "2023"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(nil).Apply(ctx, plan, Options{Target: target})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Placements) != 0 {
		t.Fatalf("expected no placements, got %d", len(result.Placements))
	}
}

func TestParseCollisionPolicy(t *testing.T) {
	for input, want := range map[string]CollisionPolicy{
		"":          CollisionRename,
		"Rename":    CollisionRename,
		" skip ":    CollisionSkip,
		"OVERWRITE": CollisionOverwrite,
	} {
		got, err := ParseCollisionPolicy(input)
		if err != nil || got != want {
			t.Fatalf("ParseCollisionPolicy(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseCollisionPolicy("dedupe"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}
