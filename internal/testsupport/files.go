package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WritePhoto writes data to path and stamps its modification time.
func WritePhoto(t testing.TB, path string, data []byte, mtime time.Time) {
	t.Helper()

	WriteFile(t, path, data)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

// WriteJPEG writes a JPEG carrying the given EXIF timestamps.
func WriteJPEG(t testing.TB, path string, dates ExifDates, mtime time.Time) {
	t.Helper()
	WritePhoto(t, path, JPEGWithEXIF(TIFFBlock(dates)), mtime)
}

// ListFiles returns every regular file below root as slash-separated paths
// relative to root, in lexical order.
func ListFiles(t testing.TB, root string) []string {
	t.Helper()

	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return out
}
