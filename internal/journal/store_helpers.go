package journal

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"shoebox/internal/organizer"
	"shoebox/internal/photo"
)

const runColumns = "id, started_at, finished_at, status, source_dir, target_dir, granularity, layout, mode, on_collision, dry_run, files_seen, files_categorized, files_skipped, files_errored, copied, moved, collisions_skipped, in_place, failed, folders_created, error_message"

const placementColumns = "id, run_id, source_path, destination_path, category, date_source, date_detail, taken_at, action, renamed, error_message"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (*Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
		status      string
		dryRun      int
		errMessage  sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&startedRaw,
		&finishedRaw,
		&status,
		&run.Source,
		&run.Target,
		&run.Granularity,
		&run.Layout,
		&run.Mode,
		&run.OnCollision,
		&dryRun,
		&run.Seen,
		&run.Categorized,
		&run.Skipped,
		&run.Errors,
		&run.Copied,
		&run.Moved,
		&run.CollisionsSkipped,
		&run.InPlace,
		&run.Failed,
		&run.FoldersCreated,
		&errMessage,
	); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.DryRun = dryRun != 0
	run.ErrorMessage = errMessage.String
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid && finishedRaw.String != "" {
		finished := parseTime(finishedRaw.String)
		run.FinishedAt = &finished
	}
	return &run, nil
}

func scanPlacement(scanner rowScanner) (Placement, error) {
	var (
		p          Placement
		dateSource string
		detail     sql.NullString
		takenRaw   string
		action     string
		renamed    int
		errMessage sql.NullString
	)
	if err := scanner.Scan(
		&p.ID,
		&p.RunID,
		&p.Source,
		&p.Destination,
		&p.Category,
		&dateSource,
		&detail,
		&takenRaw,
		&action,
		&renamed,
		&errMessage,
	); err != nil {
		return Placement{}, err
	}
	p.DateSource = photo.DateSource(dateSource)
	p.DateDetail = detail.String
	p.TakenAt = parseTime(takenRaw)
	p.Action = organizer.Action(action)
	p.Renamed = renamed != 0
	p.Error = errMessage.String
	return p, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func escapeLike(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(value)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) execWithoutResultRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}
