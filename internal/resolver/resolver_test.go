package resolver_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"

	"shoebox/internal/faults"
	"shoebox/internal/photo"
	"shoebox/internal/resolver"
	"shoebox/internal/testsupport"
)

func writeFile(t *testing.T, fs afero.Fs, path string, data []byte, mtime time.Time) photo.SourceFile {
	t.Helper()
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if !mtime.IsZero() {
		if err := fs.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}
	file, ok := photo.NewSourceFile(path, "")
	if !ok {
		t.Fatalf("unsupported test file %s", path)
	}
	return file
}

func TestResolveMetadataBeatsFilename(t *testing.T) {
	fs := afero.NewMemMapFs()
	tiff := testsupport.TIFFBlock(testsupport.ExifDates{DateTimeOriginal: "2024:03:15 10:00:00"})
	file := writeFile(t, fs, "/src/IMG_20200101.jpg", testsupport.JPEGWithEXIF(tiff), time.Time{})

	got, err := resolver.New(fs, resolver.WithLocation(time.UTC)).Resolve(context.Background(), file)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Source != photo.SourceMetadata {
		t.Fatalf("source = %s want metadata", got.Source)
	}
	if want := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC); !got.Date.Equal(want) {
		t.Fatalf("date = %v want %v", got.Date, want)
	}
	if got.Detail != "DateTimeOriginal" {
		t.Fatalf("detail = %q", got.Detail)
	}
}

func TestResolveFilenameBeatsModTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	mtime := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	file := writeFile(t, fs, "/src/IMG_20240115_foo.jpg", testsupport.PlainJPEG(), mtime)

	got, err := resolver.New(fs, resolver.WithLocation(time.UTC)).Resolve(context.Background(), file)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Source != photo.SourceFilename || got.Date.Format("2006-01-02") != "2024-01-15" {
		t.Fatalf("got %s %v", got.Source, got.Date)
	}
}

func TestResolveFallsBackToModTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	mtime := time.Date(2022, 1, 1, 9, 30, 0, 0, time.UTC)
	file := writeFile(t, fs, "/src/note.png", []byte("png"), mtime)

	got, err := resolver.New(fs, resolver.WithLocation(time.UTC)).Resolve(context.Background(), file)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Source != photo.SourceModTime || !got.Date.Equal(mtime) {
		t.Fatalf("got %s %v", got.Source, got.Date)
	}
}

func TestResolveCounterNameFallsBackToModTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	mtime := time.Date(2021, 6, 2, 7, 0, 0, 0, time.UTC)
	file := writeFile(t, fs, "/src/00000105.jpg", testsupport.PlainJPEG(), mtime)

	got, err := resolver.New(fs, resolver.WithLocation(time.UTC)).Resolve(context.Background(), file)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Source != photo.SourceModTime || !got.Date.Equal(mtime) {
		t.Fatalf("got %s %v, want mtime %v", got.Source, got.Date, mtime)
	}
}

func TestFilenameStrategyIgnoresExtension(t *testing.T) {
	find := resolver.FilenameStrategy(time.UTC).Find
	file := photo.SourceFile{Path: "/src/holiday.20240115", RelPath: "holiday.20240115"}
	if f, ok, err := find(context.Background(), file); ok || err != nil {
		t.Fatalf("date in the extension must not match, got %v ok=%v err=%v", f.Date, ok, err)
	}

	file = photo.SourceFile{Path: "/src/IMG_20240115.jpg", RelPath: "IMG_20240115.jpg"}
	f, ok, err := find(context.Background(), file)
	if err != nil || !ok || f.Date.Format("2006-01-02") != "2024-01-15" {
		t.Fatalf("got %v ok=%v err=%v", f.Date, ok, err)
	}
}

func TestResolvePNGSkipsMetadata(t *testing.T) {
	fs := afero.NewMemMapFs()
	// A PNG holding JPEG bytes must still not be read for metadata.
	tiff := testsupport.TIFFBlock(testsupport.ExifDates{DateTimeOriginal: "2010:01:01 00:00:00"})
	file := writeFile(t, fs, "/src/IMG_20240115.png", testsupport.JPEGWithEXIF(tiff), time.Time{})

	got, err := resolver.New(fs, resolver.WithLocation(time.UTC)).Resolve(context.Background(), file)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Source != photo.SourceFilename {
		t.Fatalf("source = %s want filename", got.Source)
	}
}

func TestResolveIsTotalForReadableFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := resolver.New(fs, resolver.WithLocation(time.UTC))
	for _, path := range []string{"/src/a.jpg", "/src/b.jpeg", "/src/c.png", "/src/d.heic", "/src/E.JPG"} {
		file := writeFile(t, fs, path, []byte("junk"), time.Date(2021, 5, 5, 0, 0, 0, 0, time.UTC))
		got, err := r.Resolve(context.Background(), file)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if got.Date.IsZero() {
			t.Fatalf("%s: zero date", path)
		}
	}
}

func TestResolveFaultAbandonsFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	file, _ := photo.NewSourceFile("/src/missing.jpg", "")

	_, err := resolver.New(fs).Resolve(context.Background(), file)
	if err == nil {
		t.Fatal("expected error for unreadable file")
	}
	if !errors.Is(err, faults.ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
}

func TestResolveFaultStopsChain(t *testing.T) {
	var laterCalled bool
	boom := errors.New("boom")
	r := resolver.New(afero.NewMemMapFs(), resolver.WithStrategies(
		resolver.Strategy{
			Source: photo.SourceMetadata,
			Find: func(context.Context, photo.SourceFile) (resolver.Finding, bool, error) {
				return resolver.Finding{}, false, boom
			},
		},
		resolver.Strategy{
			Source: photo.SourceModTime,
			Find: func(context.Context, photo.SourceFile) (resolver.Finding, bool, error) {
				laterCalled = true
				return resolver.Finding{Date: time.Now()}, true, nil
			},
		},
	))
	file, _ := photo.NewSourceFile("/src/x.jpg", "")
	_, err := r.Resolve(context.Background(), file)
	if !errors.Is(err, boom) || !errors.Is(err, faults.ErrUnreadable) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if laterCalled {
		t.Fatal("fault must not fall through to later strategies")
	}
}

func TestResolveHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	file, _ := photo.NewSourceFile("/src/x.jpg", "")
	if _, err := resolver.New(afero.NewMemMapFs()).Resolve(ctx, file); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDefaultChainOrder(t *testing.T) {
	got := resolver.New(afero.NewMemMapFs()).Strategies()
	want := []photo.DateSource{photo.SourceMetadata, photo.SourceFilename, photo.SourceModTime}
	if len(got) != len(want) {
		t.Fatalf("expected %d strategies, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Source != want[i] {
			t.Fatalf("strategy %d = %s want %s", i, got[i].Source, want[i])
		}
	}
}
