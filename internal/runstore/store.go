package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"axon/internal/config"
)

// ErrNotFound indicates the requested invocation does not exist.
var ErrNotFound = errors.New("invocation not found")

// Store persists launch invocations in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "runs.db"))
}

// OpenPath opens the run database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

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

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewInvocation records a pending invocation and returns it with its ID set.
func (s *Store) NewInvocation(ctx context.Context, runID string, kind Kind, slot int, foreground bool, command, logPath string) (*Invocation, error) {
	if runID == "" {
		return nil, errors.New("run id required")
	}
	if command == "" {
		return nil, errors.New("command required")
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO invocations (
            run_id, kind, slot, foreground, command, status, log_path, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		string(kind),
		slot,
		boolToInt(foreground),
		command,
		string(StatusPending),
		nullableString(logPath),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert invocation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// MarkStarted transitions an invocation to running and records its PID.
func (s *Store) MarkStarted(ctx context.Context, id int64, pid int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE invocations SET status = ?, pid = ?, started_at = ? WHERE id = ?`,
		string(StatusRunning), pid, now, id)
	if err != nil {
		return fmt.Errorf("mark started: %w", err)
	}
	return requireRow(res)
}

// MarkFinished transitions an invocation to its terminal state.
func (s *Store) MarkFinished(ctx context.Context, id int64, exitCode int) error {
	status := StatusCompleted
	if exitCode != 0 {
		status = StatusFailed
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE invocations SET status = ?, exit_code = ?, finished_at = ? WHERE id = ?`,
		string(status), exitCode, now, id)
	if err != nil {
		return fmt.Errorf("mark finished: %w", err)
	}
	return requireRow(res)
}

// GetByID fetches a single invocation.
func (s *Store) GetByID(ctx context.Context, id int64) (*Invocation, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	inv, err := scanInvocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inv, err
}

// ListRecent returns the newest invocations, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*Invocation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list invocations: %w", err)
	}
	defer rows.Close()
	return collectInvocations(rows)
}

// ListByRun returns every invocation of one launch run in slot order.
func (s *Store) ListByRun(ctx context.Context, runID string) ([]*Invocation, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE run_id = ? ORDER BY slot ASC, id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run invocations: %w", err)
	}
	defer rows.Close()
	return collectInvocations(rows)
}

// Clear removes finished invocations; with all set, everything goes.
func (s *Store) Clear(ctx context.Context, all bool) (int64, error) {
	query := `DELETE FROM invocations WHERE status IN (?, ?)`
	args := []any{string(StatusCompleted), string(StatusFailed)}
	if all {
		query = `DELETE FROM invocations`
		args = nil
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear invocations: %w", err)
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT id, run_id, kind, slot, foreground, command, pid, status, exit_code, log_path, created_at, started_at, finished_at FROM invocations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvocation(row rowScanner) (*Invocation, error) {
	var inv Invocation
	var kind, status, createdAt string
	var foreground int
	var pid, exitCode sql.NullInt64
	var logPath, startedAt, finishedAt sql.NullString

	err := row.Scan(&inv.ID, &inv.RunID, &kind, &inv.Slot, &foreground, &inv.Command,
		&pid, &status, &exitCode, &logPath, &createdAt, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	inv.Kind = Kind(kind)
	inv.Status = Status(status)
	inv.Foreground = foreground != 0
	if pid.Valid {
		inv.PID = int(pid.Int64)
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		inv.ExitCode = &code
	}
	inv.LogPath = logPath.String

	if inv.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if startedAt.Valid {
		ts, err := time.Parse(time.RFC3339Nano, startedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		inv.StartedAt = &ts
	}
	if finishedAt.Valid {
		ts, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		inv.FinishedAt = &ts
	}
	return &inv, nil
}

func collectInvocations(rows *sql.Rows) ([]*Invocation, error) {
	var items []*Invocation
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inv)
	}
	return items, rows.Err()
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
