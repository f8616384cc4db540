package drafts

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tscribe/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes. Drafts are disposable, so
// a mismatched database is reported rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLite stores drafts in a SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the drafts database at path.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create drafts directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLite{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// OpenFromConfig opens the configured backend: SQLite when drafts are
// enabled, Memory otherwise.
func OpenFromConfig(cfg *config.Config) (Backend, error) {
	if cfg == nil || !cfg.Drafts.Enabled || strings.TrimSpace(cfg.Drafts.Path) == "" {
		return NewMemory(), nil
	}
	return Open(cfg.Drafts.Path)
}

// Repair recreates the database at path when its schema version does not
// match. It reports whether the old file was discarded.
func Repair(path string) (bool, error) {
	store, err := Open(path)
	if err == nil {
		return false, store.Close()
	}
	if !errors.Is(err, ErrSchemaMismatch) {
		return false, err
	}
	for _, name := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("remove %s: %w", name, err)
		}
	}
	store, err = Open(path)
	if err != nil {
		return true, err
	}
	return true, store.Close()
}

// Path returns the database file location.
func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'tscribe drafts clear' to recreate it, or delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLite) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Get returns the draft for form, or an empty draft when none is stored.
func (s *SQLite) Get(ctx context.Context, form Form) (Draft, error) {
	if form == "" {
		return Draft{}, ErrInvalidForm
	}
	row := s.db.QueryRowContext(ctx, "SELECT form, fields, updated_at FROM drafts WHERE form = ?", string(form))
	draft, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{Form: form, Fields: map[string]string{}}, nil
	}
	if err != nil {
		return Draft{}, fmt.Errorf("get draft %s: %w", form, err)
	}
	return draft, nil
}

// Save replaces the stored draft for draft.Form.
func (s *SQLite) Save(ctx context.Context, draft Draft) error {
	if draft.Form == "" {
		return ErrInvalidForm
	}
	fields := draft.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode draft fields: %w", err)
	}
	updated := s.now().UTC().Format(time.RFC3339Nano)
	return s.execWithRetry(ctx,
		`INSERT INTO drafts (form, fields, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(form) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`,
		string(draft.Form), string(encoded), updated,
	)
}

func (s *SQLite) Delete(ctx context.Context, form Form) error {
	return s.execWithRetry(ctx, "DELETE FROM drafts WHERE form = ?", string(form))
}

// List returns every stored draft ordered by form.
func (s *SQLite) List(ctx context.Context) ([]Draft, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT form, fields, updated_at FROM drafts ORDER BY form")
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var out []Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		out = append(out, draft)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(row scanner) (Draft, error) {
	var (
		form    string
		fields  string
		updated string
	)
	if err := row.Scan(&form, &fields, &updated); err != nil {
		return Draft{}, err
	}
	draft := Draft{Form: Form(form), Fields: map[string]string{}}
	if err := json.Unmarshal([]byte(fields), &draft.Fields); err != nil {
		return Draft{}, fmt.Errorf("decode draft fields: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		draft.UpdatedAt = ts
	}
	return draft, nil
}

func (s *SQLite) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
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
