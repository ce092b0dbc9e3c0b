package main

import (
	"strings"
	"testing"
	"time"

	"shoebox/internal/photo"
	"shoebox/internal/planner"
)

func previewPhotos(t *testing.T, names ...string) []photo.ResolvedPhoto {
	t.Helper()
	out := make([]photo.ResolvedPhoto, 0, len(names))
	for i, name := range names {
		file, ok := photo.NewSourceFile("/src/"+name, name)
		if !ok {
			t.Fatalf("unsupported fixture %s", name)
		}
		out = append(out, photo.ResolvedPhoto{
			File:   file,
			Date:   time.Date(2023, 7, i+1, 12, 0, 0, 0, time.UTC),
			Source: photo.SourceModTime,
		})
	}
	return out
}

func TestRenderFolderPreviewTruncates(t *testing.T) {
	tests := []struct {
		name   string
		photos int
		limit  int
		want   string
	}{
		{"two hidden", 3, 1, "  ... and 2 more photos\n"},
		{"one hidden", 2, 1, "  ... and 1 more photo\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := []string{"a.jpg", "b.jpg", "c.jpg"}[:tt.photos]
			out := renderFolderPreview("2023_Photos", previewPhotos(t, names...), tt.limit)
			if !strings.HasSuffix(out, tt.want) {
				t.Fatalf("preview should end with %q:\n%s", tt.want, out)
			}
		})
	}

	out := renderFolderPreview("2023_Photos", previewPhotos(t, "a.jpg", "b.jpg"), 0)
	if strings.Contains(out, "more") {
		t.Fatalf("limit 0 lists every photo:\n%s", out)
	}
}

func TestRenderPlanSummaryAlignsLabels(t *testing.T) {
	plan := &planner.Plan{
		Stats: planner.Stats{
			Seen:        3,
			Categorized: 3,
			BySource: map[photo.DateSource]int{
				photo.SourceMetadata: 1,
				photo.SourceFilename: 1,
				photo.SourceModTime:  1,
			},
		},
	}
	out := renderPlanSummary(plan, false)

	column := -1
	for _, line := range strings.Split(out, "\n") {
		idx := strings.Index(line, "[")
		if idx < 0 {
			continue
		}
		if column < 0 {
			column = idx
		}
		if idx != column {
			t.Fatalf("status tag at column %d, want %d: %q\n%s", idx, column, line, out)
		}
	}
	for _, label := range []string{"Dated by metadata:", "Dated by filename:", "Dated by mtime:"} {
		if !strings.Contains(out, label) {
			t.Fatalf("summary missing %q:\n%s", label, out)
		}
	}
}
