// Package store keeps a history of comparison runs in SQLite.
package store

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"

	"modcompat/internal/errors"
)

// ErrNotFound is wrapped by GetRun and DeleteRun for unknown ids.
var ErrNotFound = stderrors.New("run not found")

const schemaVersion = 1

// timeFormat is fixed width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists runs in a single SQLite database file.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// Open opens or creates the history database at dbPath.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.New(errors.StoreFailure, "creating history directory", err)
		}
	}
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.New(errors.StoreFailure, "opening history database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, errors.New(errors.StoreFailure, "setting pragma", err)
		}
	}

	s := &Store{conn: conn, logger: logger, dbPath: dbPath}
	if !dbExists {
		logger.Info("Creating history database", "path", dbPath)
	}
	if err := s.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, errors.New(errors.StoreFailure, "initializing history schema", err)
	}
	return s, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			module TEXT NOT NULL,
			old_version TEXT,
			new_version TEXT,
			old_digest TEXT,
			new_digest TEXT,
			required_bump TEXT NOT NULL,
			sufficient INTEGER,
			entry_count INTEGER NOT NULL,
			entries BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_module ON runs(module);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return err
	}
	_, err := s.conn.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion)
	return err
}

// Path returns the database file.
func (s *Store) Path() string { return s.dbPath }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// SaveRun inserts run, assigning an id and timestamp when missing.
func (s *Store) SaveRun(run *Run) error {
	if run.ID == "" {
		run.ID = newRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.EntryCount = len(run.Entries)

	payload, err := msgpack.Marshal(run.Entries)
	if err != nil {
		return errors.New(errors.StoreFailure, "encoding run entries", err)
	}
	bump, _ := run.Required.MarshalText()

	_, err = s.conn.Exec(`
		INSERT INTO runs (id, created_at, module, old_version, new_version, old_digest, new_digest,
			required_bump, sufficient, entry_count, entries)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.UTC().Format(timeFormat),
		run.Module,
		nullString(run.OldVersion),
		nullString(run.NewVersion),
		nullString(run.OldDigest),
		nullString(run.NewDigest),
		string(bump),
		nullBool(run.Sufficient),
		run.EntryCount,
		payload,
	)
	if err != nil {
		return errors.New(errors.StoreFailure, "saving run "+run.ID, err)
	}
	s.logger.Debug("Saved run", "id", run.ID, "module", run.Module, "entries", run.EntryCount)
	return nil
}

const runColumns = `id, created_at, module, old_version, new_version, old_digest, new_digest,
	required_bump, sufficient, entry_count, entries`

// GetRun loads a run with its entries.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.conn.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row, true)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.StoreFailure, "run "+id, ErrNotFound)
	}
	if err != nil {
		return nil, errors.New(errors.StoreFailure, "reading run "+id, err)
	}
	return run, nil
}

// ListRuns returns the newest runs first, without entries. An empty module
// lists every module; a limit of zero or less means 20.
func (s *Store) ListRuns(module string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := "SELECT " + runColumns + " FROM runs"
	var args []any
	if module != "" {
		query += " WHERE module = ?"
		args = append(args, module)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, errors.New(errors.StoreFailure, "listing runs", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, errors.New(errors.StoreFailure, "reading run", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.StoreFailure, "iterating runs", err)
	}
	return runs, nil
}

// DeleteRun removes a run.
func (s *Store) DeleteRun(id string) error {
	result, err := s.conn.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return errors.New(errors.StoreFailure, "deleting run "+id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.New(errors.StoreFailure, "run "+id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner, withEntries bool) (*Run, error) {
	var run Run
	var createdAt, bump string
	var oldVersion, newVersion, oldDigest, newDigest sql.NullString
	var sufficient sql.NullBool
	var payload []byte

	err := row.Scan(
		&run.ID,
		&createdAt,
		&run.Module,
		&oldVersion,
		&newVersion,
		&oldDigest,
		&newDigest,
		&bump,
		&sufficient,
		&run.EntryCount,
		&payload,
	)
	if err != nil {
		return nil, err
	}

	if run.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("created_at %q: %w", createdAt, err)
	}
	if err := run.Required.UnmarshalText([]byte(bump)); err != nil {
		return nil, err
	}
	run.OldVersion = oldVersion.String
	run.NewVersion = newVersion.String
	run.OldDigest = oldDigest.String
	run.NewDigest = newDigest.String
	if sufficient.Valid {
		v := sufficient.Bool
		run.Sufficient = &v
	}
	if withEntries {
		if err := msgpack.Unmarshal(payload, &run.Entries); err != nil {
			return nil, fmt.Errorf("decoding entries: %w", err)
		}
	}
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
