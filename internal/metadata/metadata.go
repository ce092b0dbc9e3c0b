package metadata

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/afero"

	"shoebox/internal/logging"
	"shoebox/internal/photo"
)

// ExifLayout is the fixed EXIF timestamp layout (YYYY:MM:DD HH:MM:SS).
const ExifLayout = "2006:01:02 15:04:05"

// CandidateTags lists the timestamp tags consulted, in priority order.
var CandidateTags = []string{"DateTimeOriginal", "DateTime", "DateTimeDigitized"}

// maxScanBytes bounds how much of a file is read while looking for the
// metadata container.
const maxScanBytes = 32 << 20

// Finding is an embedded date together with the tag it came from.
type Finding struct {
	Date time.Time
	Tag  string
}

// tagSource exposes raw string values of decoded tags by name.
type tagSource interface {
	lookup(name string) (string, bool)
}

type decodeFunc func(data []byte) (tagSource, error)

var decoders = map[photo.Format]decodeFunc{
	photo.FormatJPEG: decodeJPEG,
	photo.FormatHEIC: decodeHEIC,
}

// HasContainer reports whether format carries a metadata container this
// package can read.
func HasContainer(format photo.Format) bool {
	_, ok := decoders[format]
	return ok
}

// CorruptContainerError reports a container that crashed its decoder. It is
// the only decode outcome treated as a fault rather than an absent date.
type CorruptContainerError struct {
	Path   string
	Format photo.Format
	Cause  any
}

func (e *CorruptContainerError) Error() string {
	return fmt.Sprintf("corrupt %s metadata container in %s: %v", e.Format, e.Path, e.Cause)
}

// Reader reads embedded capture dates through an afero file system.
type Reader struct {
	fs     afero.Fs
	loc    *time.Location
	logger *slog.Logger
}

// Option customizes a Reader.
type Option func(*Reader)

// WithLocation sets the zone used to interpret EXIF wall-clock timestamps.
func WithLocation(loc *time.Location) Option {
	return func(r *Reader) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithLogger attaches a logger for debug diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logging.NewComponentLogger(logger, "metadata")
	}
}

// NewReader constructs a Reader. A nil fs means the host file system.
func NewReader(fs afero.Fs, opts ...Option) *Reader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	r := &Reader{fs: fs, loc: time.Local, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadEmbeddedDate returns the first candidate tag that exists and parses.
//
// The boolean is false with a nil error when the format has no container, the
// container is missing or undecodable, or no tag parses. A non-nil error means
// the file itself could not be read.
func (r *Reader) ReadEmbeddedDate(path string, format photo.Format) (Finding, bool, error) {
	decode, ok := decoders[format]
	if !ok {
		return Finding{}, false, nil
	}

	f, err := r.fs.Open(path)
	if err != nil {
		return Finding{}, false, fmt.Errorf("open %s: %w", path, err)
	}
	data, err := io.ReadAll(io.LimitReader(f, maxScanBytes))
	closeErr := f.Close()
	if err != nil {
		return Finding{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	if closeErr != nil {
		return Finding{}, false, fmt.Errorf("close %s: %w", path, closeErr)
	}

	tags, err := safeDecode(decode, data)
	if err != nil {
		var corrupt *CorruptContainerError
		if errors.As(err, &corrupt) {
			corrupt.Path = path
			corrupt.Format = format
			return Finding{}, false, corrupt
		}
		r.logger.Debug("no readable metadata container",
			logging.String("path", path),
			logging.String("format", string(format)),
			logging.Error(err),
		)
		return Finding{}, false, nil
	}

	finding, ok := pickDate(tags, r.loc)
	if !ok {
		r.logger.Debug("no parseable capture tag", logging.String("path", path))
	}
	return finding, ok, nil
}

func safeDecode(decode decodeFunc, data []byte) (tags tagSource, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			tags = nil
			err = &CorruptContainerError{Cause: rec}
		}
	}()
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	return decode(data)
}

func pickDate(tags tagSource, loc *time.Location) (Finding, bool) {
	for _, name := range CandidateTags {
		raw, ok := tags.lookup(name)
		if !ok {
			continue
		}
		t, err := ParseTimestamp(raw, loc)
		if err != nil {
			continue
		}
		return Finding{Date: t, Tag: name}, true
	}
	return Finding{}, false
}

// ParseTimestamp parses an EXIF timestamp string in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value := strings.TrimSpace(strings.TrimRight(raw, "\x00 \t\r\n"))
	return time.ParseInLocation(ExifLayout, value, loc)
}
