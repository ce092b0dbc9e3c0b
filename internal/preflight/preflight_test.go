package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shoebox/internal/category"
	"shoebox/internal/photo"
	"shoebox/internal/planner"
	"shoebox/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []Access{AccessRead, AccessWrite} {
		result := CheckDirectoryAccess("test", dir, mode)
		if !result.Passed {
			t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
		}
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	result := CheckDirectoryAccess("test", missing, AccessRead)
	if result.Passed {
		t.Fatal("expected failure for missing source dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}

	result = CheckDirectoryAccess("test", filepath.Join(missing, "deeper"), AccessWrite)
	if !result.Passed {
		t.Fatalf("missing target under writable parent should pass: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f, AccessRead); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryAccess_Empty(t *testing.T) {
	if result := CheckDirectoryAccess("test", "", AccessRead); result.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace(dir, 1); !result.Passed {
		t.Fatalf("expected 1 byte to fit: %s", result.Detail)
	}
	if result := CheckFreeSpace(filepath.Join(dir, "not", "yet"), 1); !result.Passed {
		t.Fatalf("missing target should probe its ancestor: %s", result.Detail)
	}
	if result := CheckFreeSpace(dir, 1<<62); result.Passed {
		t.Fatal("expected failure for an impossible requirement")
	}
}

func TestSameFileSystem(t *testing.T) {
	dir := t.TempDir()
	if !SameFileSystem(dir, filepath.Join(dir, "child", "missing")) {
		t.Fatal("a directory and its descendants share a file system")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WritePhoto(t, filepath.Join(cfg.Paths.SourceDir, "a.jpg"), []byte("12345"), time.Now())
	file, _ := photo.NewSourceFile(filepath.Join(cfg.Paths.SourceDir, "a.jpg"), "a.jpg")
	plan := &planner.Plan{
		Root:        cfg.Paths.SourceDir,
		Granularity: category.Yearly,
		Categories:  []photo.Category{"2023"},
		Groups: map[photo.Category][]photo.ResolvedPhoto{
			"2023": {{File: file, Source: photo.SourceModTime}},
		},
		Stats: planner.Stats{Seen: 1, Categorized: 1},
	}

	if got := PlannedBytes(plan); got != 5 {
		t.Fatalf("PlannedBytes = %d, want 5", got)
	}

	results := RunAll(cfg, plan)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}

	cfg.Paths.SourceDir = filepath.Join(testsupport.BaseDir(cfg), "missing")
	plan.Root = cfg.Paths.SourceDir
	if failed := Failed(RunAll(cfg, plan)); len(failed) != 1 || failed[0].Name != "Source directory" {
		t.Fatalf("expected source failure, got %+v", failed)
	}
}

func TestRunAllSkipsJournalWhenDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithJournalDisabled())
	if err := os.MkdirAll(cfg.Paths.SourceDir, 0o755); err != nil {
		t.Fatal(err)
	}
	results := RunAll(cfg, nil)
	if len(results) != 2 {
		t.Fatalf("expected source and target checks only, got %+v", results)
	}
}
