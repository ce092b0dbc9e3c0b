package photo

import (
	"path/filepath"
	"strings"
	"time"
)

// Format identifies the raster container a file declares through its extension.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatHEIC Format = "heic"
)

var formatsByExt = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".heic": FormatHEIC,
}

// FormatForExt maps a file extension (any case, leading dot) to its format.
func FormatForExt(ext string) (Format, bool) {
	f, ok := formatsByExt[strings.ToLower(ext)]
	return f, ok
}

// IsSupportedExt reports whether ext names a photo the planner organizes.
func IsSupportedExt(ext string) bool {
	_, ok := FormatForExt(ext)
	return ok
}

// SupportedExtensions lists the organized extensions in stable order.
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".heic"}
}

// HiddenPrefix marks resource-fork artifacts some file systems leave behind
// when copying from macOS volumes.
const HiddenPrefix = "._"

// IsResourceFork reports whether name is an AppleDouble artifact.
func IsResourceFork(name string) bool {
	return strings.HasPrefix(name, HiddenPrefix)
}

// SourceFile identifies one candidate photo found during a scan.
type SourceFile struct {
	Path    string
	RelPath string
	Ext     string
	Format  Format
}

// NewSourceFile builds a SourceFile for path, deriving extension and format.
// The second return value is false when the extension is not supported.
func NewSourceFile(path, relPath string) (SourceFile, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := FormatForExt(ext)
	if !ok {
		return SourceFile{}, false
	}
	if relPath == "" {
		relPath = filepath.Base(path)
	}
	return SourceFile{Path: path, RelPath: relPath, Ext: ext, Format: format}, true
}

// Name returns the file's base name including extension.
func (f SourceFile) Name() string {
	return filepath.Base(f.Path)
}

// Stem returns the base name without its extension.
func (f SourceFile) Stem() string {
	name := f.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// DateSource records which strategy produced a resolved date.
type DateSource string

const (
	SourceMetadata DateSource = "metadata"
	SourceFilename DateSource = "filename"
	SourceModTime  DateSource = "mtime-fallback"
)

// ResolvedPhoto pairs a source file with its authoritative capture date.
type ResolvedPhoto struct {
	File   SourceFile
	Date   time.Time
	Source DateSource
	// Detail names the tag, pattern, or fallback that produced Date.
	Detail string
}

// Category identifies a destination folder relative to the target root.
// It always uses '/' as separator.
type Category string

func (c Category) String() string { return string(c) }

// Path converts the category to a host path below root.
func (c Category) Path(root string) string {
	return filepath.Join(root, filepath.FromSlash(string(c)))
}
