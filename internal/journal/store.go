package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"shoebox/internal/config"
	"shoebox/internal/organizer"
)

// ErrRunNotFound is returned when no run matches an id or prefix.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRunID is returned when a prefix matches more than one run.
var ErrAmbiguousRunID = errors.New("ambiguous run id")

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open connects to the journal in the configured state directory,
// creating it and applying migrations as needed.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.JournalPath())
}

// OpenPath opens the journal database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas below are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, now: time.Now}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun inserts a running record for spec and returns it.
func (s *Store) StartRun(ctx context.Context, spec RunSpec) (*Run, error) {
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		id = uuid.NewString()
	}
	run := &Run{
		ID:          id,
		StartedAt:   s.now().UTC(),
		Status:      StatusRunning,
		Source:      spec.Source,
		Target:      spec.Target,
		Granularity: spec.Granularity.String(),
		Layout:      LayoutFor(spec.Granularity, spec.YearAsParent),
		Mode:        spec.Mode,
		OnCollision: spec.OnCollision,
		DryRun:      spec.DryRun,
		Seen:        spec.Stats.Seen,
		Categorized: spec.Stats.Categorized,
		Skipped:     spec.Stats.Skipped,
		Errors:      spec.Stats.Errors,
	}
	err := s.execWithoutResultRetry(ctx,
		`INSERT INTO runs (
            id, started_at, status, source_dir, target_dir, granularity, layout,
            mode, on_collision, dry_run, files_seen, files_categorized, files_skipped, files_errored
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.Format(timeLayout),
		run.Status,
		run.Source,
		run.Target,
		run.Granularity,
		run.Layout,
		run.Mode,
		run.OnCollision,
		boolToInt(run.DryRun),
		run.Seen,
		run.Categorized,
		run.Skipped,
		run.Errors,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordPlacements stores the mover outcomes for a run in one transaction.
func (s *Store) RecordPlacements(ctx context.Context, runID string, placements []organizer.Placement) error {
	if len(placements) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin placements tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO placements (
                run_id, source_path, destination_path, category, date_source,
                date_detail, taken_at, action, renamed, error_message
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare placement insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range placements {
			rec := placementFrom(runID, p)
			if _, err := stmt.ExecContext(ctx,
				rec.RunID,
				rec.Source,
				rec.Destination,
				rec.Category,
				string(rec.DateSource),
				nullableString(rec.DateDetail),
				rec.TakenAt.Format(timeLayout),
				string(rec.Action),
				boolToInt(rec.Renamed),
				nullableString(rec.Error),
			); err != nil {
				return fmt.Errorf("insert placement %s: %w", rec.Source, err)
			}
		}
		return tx.Commit()
	})
}

// FinishRun closes a run with the mover's counts. A non-nil runErr marks the
// run failed and stores its message.
func (s *Store) FinishRun(ctx context.Context, runID string, result organizer.Result, runErr error) error {
	status := StatusCompleted
	var message string
	if runErr != nil {
		status = StatusFailed
		message = runErr.Error()
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs
         SET finished_at = ?, status = ?, copied = ?, moved = ?, collisions_skipped = ?,
             in_place = ?, failed = ?, folders_created = ?, error_message = ?
         WHERE id = ?`,
		s.now().UTC().Format(timeLayout),
		status,
		result.Copied,
		result.Moved,
		result.Skipped,
		result.InPlace,
		result.Failed,
		result.FoldersCreated,
		nullableString(message),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by full id or unique prefix.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("get run by prefix: %w", err)
	}
	defer rows.Close()
	var matches []*Run
	for rows.Next() {
		match, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%s: %w", id, ErrAmbiguousRunID)
	}
}

// Placements returns the stored placements of a run in insertion order.
func (s *Store) Placements(ctx context.Context, runID string) ([]Placement, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+placementColumns+` FROM placements WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
