// Package resolver decides one authoritative capture date per photo by running
// an ordered list of date strategies and stopping at the first that succeeds.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"shoebox/internal/faults"
	"shoebox/internal/logging"
	"shoebox/internal/metadata"
	"shoebox/internal/namedate"
	"shoebox/internal/photo"
)

// Finding is a strategy's answer: a date and a short note on where it came from.
type Finding struct {
	Date   time.Time
	Detail string
}

// FindFunc reports (finding, true, nil) on success and (_, false, nil) when
// the strategy has nothing to say about the file. A non-nil error abandons
// the file.
type FindFunc func(ctx context.Context, file photo.SourceFile) (Finding, bool, error)

// Strategy is one step of the fallback chain.
type Strategy struct {
	Source photo.DateSource
	// Applies gates the strategy; nil means it applies to every file.
	Applies func(photo.SourceFile) bool
	Find    FindFunc
}

// Resolver runs its strategies in order.
type Resolver struct {
	fs         afero.Fs
	loc        *time.Location
	logger     *slog.Logger
	strategies []Strategy
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithLocation sets the zone used for metadata, filename, and mtime dates.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.NewComponentLogger(logger, "resolver")
	}
}

// WithStrategies replaces the default chain.
func WithStrategies(strategies ...Strategy) Option {
	return func(r *Resolver) {
		r.strategies = append([]Strategy(nil), strategies...)
	}
}

// New builds a Resolver over fs. Without WithStrategies the chain is
// metadata, then filename, then modification time.
func New(fs afero.Fs, opts ...Option) *Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	r := &Resolver{fs: fs, loc: time.Local, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.strategies == nil {
		reader := metadata.NewReader(fs, metadata.WithLocation(r.loc), metadata.WithLogger(r.logger))
		r.strategies = DefaultStrategies(reader, fs, r.loc)
	}
	return r
}

// Strategies returns a copy of the configured chain.
func (r *Resolver) Strategies() []Strategy {
	return append([]Strategy(nil), r.strategies...)
}

// Resolve returns the file's date from the first strategy that finds one.
// Errors carry faults.ErrUnreadable.
func (r *Resolver) Resolve(ctx context.Context, file photo.SourceFile) (photo.ResolvedPhoto, error) {
	for _, strategy := range r.strategies {
		if err := ctx.Err(); err != nil {
			return photo.ResolvedPhoto{}, err
		}
		if strategy.Applies != nil && !strategy.Applies(file) {
			continue
		}
		finding, ok, err := strategy.Find(ctx, file)
		if err != nil {
			return photo.ResolvedPhoto{}, faults.Wrap(faults.ErrUnreadable, "resolve", string(strategy.Source), file.Path, err)
		}
		if !ok {
			r.logger.Debug("date strategy found nothing",
				logging.String("path", file.Path),
				logging.String("strategy", string(strategy.Source)),
			)
			continue
		}
		return photo.ResolvedPhoto{
			File:   file,
			Date:   finding.Date,
			Source: strategy.Source,
			Detail: finding.Detail,
		}, nil
	}
	return photo.ResolvedPhoto{}, faults.Wrap(faults.ErrUnreadable, "resolve", "", fmt.Sprintf("no strategy dated %s", file.Path), nil)
}

// DefaultStrategies returns the metadata, filename, and mtime chain.
func DefaultStrategies(reader *metadata.Reader, fs afero.Fs, loc *time.Location) []Strategy {
	return []Strategy{
		MetadataStrategy(reader),
		FilenameStrategy(loc),
		ModTimeStrategy(fs, loc),
	}
}

// MetadataStrategy reads embedded tags from metadata-bearing formats.
func MetadataStrategy(reader *metadata.Reader) Strategy {
	return Strategy{
		Source: photo.SourceMetadata,
		Applies: func(f photo.SourceFile) bool {
			return metadata.HasContainer(f.Format)
		},
		Find: func(_ context.Context, f photo.SourceFile) (Finding, bool, error) {
			found, ok, err := reader.ReadEmbeddedDate(f.Path, f.Format)
			if err != nil || !ok {
				return Finding{}, false, err
			}
			return Finding{Date: found.Date, Detail: found.Tag}, true, nil
		},
	}
}

// FilenameStrategy recognizes dates in the base name.
func FilenameStrategy(loc *time.Location) Strategy {
	return Strategy{
		Source: photo.SourceFilename,
		Find: func(_ context.Context, f photo.SourceFile) (Finding, bool, error) {
			m, ok := namedate.ParseInLocation(f.Stem(), loc)
			if !ok {
				return Finding{}, false, nil
			}
			return Finding{Date: m.Date, Detail: m.Pattern}, true, nil
		},
	}
}

// ModTimeStrategy uses the file's modification time. It never reports "not
// found"; a failed stat is an error.
func ModTimeStrategy(fs afero.Fs, loc *time.Location) Strategy {
	if loc == nil {
		loc = time.Local
	}
	return Strategy{
		Source: photo.SourceModTime,
		Find: func(_ context.Context, f photo.SourceFile) (Finding, bool, error) {
			info, err := fs.Stat(f.Path)
			if err != nil {
				return Finding{}, false, fmt.Errorf("stat: %w", err)
			}
			return Finding{Date: info.ModTime().In(loc), Detail: "mtime"}, true, nil
		},
	}
}
