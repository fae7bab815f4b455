package resume

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	schemaVersion = 1
	sqliteName    = "resume.sqlite"
	busyTimeout   = 5 * time.Second
)

// SqliteStore implements Store using SQLite.
type SqliteStore struct {
	DB *sql.DB
}

// openSqlite opens path with the PRAGMAs applied to every pooled connection.
func openSqlite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		path, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}

	return db, nil
}

// NewSqliteStore opens (and migrates) resume.sqlite inside dir. SQLite always
// works on the real OS filesystem.
func NewSqliteStore(dir string) (*SqliteStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create resume store dir: %w", err)
	}

	db, err := openSqlite(filepath.Join(dir, sqliteName))
	if err != nil {
		return nil, err
	}

	s := &SqliteStore{DB: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("resume store: migration failed: %w", err)
	}

	return s, nil
}

func (s *SqliteStore) migrate() error {
	var current int
	if err := s.DB.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return err
	}

	if current >= schemaVersion {
		return nil
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS resume_states (
		url TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		pos_seconds REAL NOT NULL,
		duration_seconds REAL NOT NULL DEFAULT 0,
		finished BOOLEAN NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_resume_updated ON resume_states(updated_at);
	`

	if _, err := tx.Exec(schema); err != nil {
		return err
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SqliteStore) Put(ctx context.Context, url string, state *State) error {
	query := `
	INSERT INTO resume_states (url, title, pos_seconds, duration_seconds, finished, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		title = excluded.title,
		pos_seconds = excluded.pos_seconds,
		duration_seconds = excluded.duration_seconds,
		finished = excluded.finished,
		updated_at = excluded.updated_at
	`
	_, err := s.DB.ExecContext(ctx, query,
		url, state.Title, state.PosSeconds, state.DurationSeconds, state.Finished, state.UpdatedAt.UnixNano(),
	)
	return err
}

func scanState(row interface{ Scan(...any) error }) (*State, error) {
	var (
		state   State
		updated int64
	)
	if err := row.Scan(&state.URL, &state.Title, &state.PosSeconds, &state.DurationSeconds, &state.Finished, &updated); err != nil {
		return nil, err
	}
	state.UpdatedAt = time.Unix(0, updated)
	return &state, nil
}

const selectColumns = `SELECT url, title, pos_seconds, duration_seconds, finished, updated_at FROM resume_states`

func (s *SqliteStore) Get(ctx context.Context, url string) (*State, error) {
	state, err := scanState(s.DB.QueryRowContext(ctx, selectColumns+` WHERE url = ?`, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return state, err
}

func (s *SqliteStore) Delete(ctx context.Context, url string) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM resume_states WHERE url = ?", url)
	return err
}

func (s *SqliteStore) List(ctx context.Context) ([]*State, error) {
	rows, err := s.DB.QueryContext(ctx, selectColumns+` ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []*State
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}
