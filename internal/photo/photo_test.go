package photo

import (
	"path/filepath"
	"testing"
)

func TestFormatForExt(t *testing.T) {
	tests := []struct {
		ext  string
		want Format
		ok   bool
	}{
		{".jpg", FormatJPEG, true},
		{".JPEG", FormatJPEG, true},
		{".Png", FormatPNG, true},
		{".HEIC", FormatHEIC, true},
		{".gif", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatForExt(tt.ext)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("FormatForExt(%q) = %q,%v want %q,%v", tt.ext, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewSourceFile(t *testing.T) {
	path := filepath.Join("/photos", "trip", "IMG_20240115.JPG")
	f, ok := NewSourceFile(path, "")
	if !ok {
		t.Fatal("expected supported file")
	}
	if f.Ext != ".jpg" || f.Format != FormatJPEG {
		t.Fatalf("unexpected ext/format: %q %q", f.Ext, f.Format)
	}
	if f.Name() != "IMG_20240115.JPG" {
		t.Fatalf("unexpected name %q", f.Name())
	}
	if f.Stem() != "IMG_20240115" {
		t.Fatalf("unexpected stem %q", f.Stem())
	}
	if f.RelPath != "IMG_20240115.JPG" {
		t.Fatalf("expected rel path to default to base name, got %q", f.RelPath)
	}

	if _, ok := NewSourceFile("/photos/anim.gif", ""); ok {
		t.Fatal("gif should not be supported")
	}
}

func TestIsResourceFork(t *testing.T) {
	if !IsResourceFork("._thumbnail.jpg") {
		t.Fatal("expected ._ prefix to be a resource fork")
	}
	if IsResourceFork("_thumbnail.jpg") || IsResourceFork(".thumbnail.jpg") {
		t.Fatal("only the ._ prefix marks resource forks")
	}
}

func TestCategoryPath(t *testing.T) {
	got := Category("2024/2024-03_Photos").Path("/library")
	want := filepath.Join("/library", "2024", "2024-03_Photos")
	if got != want {
		t.Fatalf("Path = %q want %q", got, want)
	}
}
