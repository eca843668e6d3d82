package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"titlemark/internal/check"
	"titlemark/internal/markers"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var (
	// ErrRunNotFound indicates no run matches the requested id.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousID indicates an id prefix matches more than one run.
	ErrAmbiguousID = errors.New("run id prefix is ambiguous")
)

// Run is a persisted check run.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Roots      []string  `json:"roots"`
	Files      int       `json:"files"`
	Violations int       `json:"violations"`
	Failed     int       `json:"failed"`
}

// StoredViolation is a violation row belonging to a run.
type StoredViolation struct {
	Path      string            `json:"path"`
	Violation markers.Violation `json:"violation"`
}

// Record stores report as a new run.
func (s *Store) Record(ctx context.Context, report *check.Report, roots []string) (*Run, error) {
	ctx = ensureContext(ctx)
	if report == nil {
		return nil, errors.New("record run: nil report")
	}

	id := report.ID
	if id == "" {
		id = uuid.NewString()
	}
	run := &Run{
		ID:         id,
		StartedAt:  report.StartedAt.UTC(),
		FinishedAt: report.FinishedAt.UTC(),
		Roots:      append([]string{}, roots...),
		Files:      len(report.Files),
		Violations: report.ViolationCount(),
		Failed:     report.FailedCount(),
	}
	rootsJSON, err := json.Marshal(run.Roots)
	if err != nil {
		return nil, fmt.Errorf("encode roots: %w", err)
	}

	err = s.withLock(ctx, func() error {
		return retryOnBusy(ctx, func() error {
			return s.insertRun(ctx, run, string(rootsJSON), report)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

func (s *Store) insertRun(ctx context.Context, run *Run, roots string, report *check.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, roots, file_count, violation_count, failed_count)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.Format(timeLayout),
		run.FinishedAt.Format(timeLayout),
		roots,
		run.Files,
		run.Violations,
		run.Failed,
	); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO violations (run_id, path, kind, field, actual, expected) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range report.Files {
		for _, v := range f.Violations {
			if _, err := stmt.ExecContext(ctx, run.ID, f.Path, v.Kind.String(), string(v.Field), v.Actual, v.Expected); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// List returns up to limit runs, newest first. A limit of zero or less returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, roots, file_count, violation_count, failed_count
         FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Get returns the run whose id equals or starts with id, and its violations.
// An exact id match wins over longer ids sharing it as a prefix.
func (s *Store) Get(ctx context.Context, id string) (*Run, []StoredViolation, error) {
	ctx = ensureContext(ctx)
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" || strings.Trim(id, "0123456789abcdef-") != "" {
		return nil, nil, fmt.Errorf("%w: %q", ErrRunNotFound, id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, roots, file_count, violation_count, failed_count
         FROM runs WHERE id LIKE ? ORDER BY id = ? DESC, started_at DESC LIMIT 2`, id+"%", id)
	if err != nil {
		return nil, nil, fmt.Errorf("get run: %w", err)
	}
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, nil, err
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("get run: %w", err)
	}

	switch {
	case len(matches) == 0:
		return nil, nil, fmt.Errorf("%w: %q", ErrRunNotFound, id)
	case len(matches) > 1 && matches[0].ID != id:
		return nil, nil, fmt.Errorf("%w: %q", ErrAmbiguousID, id)
	}
	run := matches[0]

	violations, err := s.violations(ctx, run.ID)
	if err != nil {
		return nil, nil, err
	}
	return run, violations, nil
}

func (s *Store) violations(ctx context.Context, runID string) ([]StoredViolation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, kind, field, actual, expected FROM violations WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	defer rows.Close()

	var out []StoredViolation
	for rows.Next() {
		var (
			sv    StoredViolation
			kind  string
			field string
		)
		if err := rows.Scan(&sv.Path, &kind, &field, &sv.Violation.Actual, &sv.Violation.Expected); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		parsed, err := markers.ParseKind(kind)
		if err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		sv.Violation.Kind = parsed
		sv.Violation.Field = markers.Field(field)
		out = append(out, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	return out, nil
}

// Prune deletes all but the newest keep runs and returns how many were removed.
// A keep of zero or less leaves history untouched.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	ctx = ensureContext(ctx)
	if keep <= 0 {
		return 0, nil
	}
	var removed int64
	err := s.withLock(ctx, func() error {
		return retryOnBusy(ctx, func() error {
			res, err := s.db.ExecContext(ctx,
				`DELETE FROM runs WHERE id NOT IN (
                    SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
                )`, keep)
			if err != nil {
				return err
			}
			removed, err = res.RowsAffected()
			return err
		})
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return int(removed), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run      Run
		started  string
		finished string
		roots    string
	)
	if err := row.Scan(&run.ID, &started, &finished, &roots, &run.Files, &run.Violations, &run.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	if err := json.Unmarshal([]byte(roots), &run.Roots); err != nil {
		return nil, fmt.Errorf("decode roots: %w", err)
	}
	return &run, nil
}
