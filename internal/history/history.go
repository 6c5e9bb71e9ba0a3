// Package history records completed generations in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS generations (
	id           TEXT PRIMARY KEY,
	technology   TEXT NOT NULL,
	project_name TEXT NOT NULL,
	source_name  TEXT NOT NULL,
	archive_name TEXT NOT NULL UNIQUE,
	archive_path TEXT NOT NULL,
	archive_size INTEGER NOT NULL,
	file_count   INTEGER NOT NULL,
	features     TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generations_created ON generations(created_at DESC);
`

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("generation not found")

// Record is one completed generation.
type Record struct {
	ID          string    `json:"id"`
	Technology  string    `json:"technology"`
	ProjectName string    `json:"project_name"`
	SourceName  string    `json:"source_name"`
	ArchiveName string    `json:"archive_name"`
	ArchivePath string    `json:"archive_path"`
	ArchiveSize int64     `json:"archive_size"`
	FileCount   int       `json:"file_count"`
	Features    []string  `json:"features"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is a SQLite-backed generation log.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// SQLite allows one writer; serialize through a single connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts r. A zero CreatedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, r Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generations (id, technology, project_name, source_name, archive_name,
			archive_path, archive_size, file_count, features, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Technology, r.ProjectName, r.SourceName, r.ArchiveName,
		r.ArchivePath, r.ArchiveSize, r.FileCount, strings.Join(r.Features, "\n"), r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

const selectCols = `SELECT id, technology, project_name, source_name, archive_name,
	archive_path, archive_size, file_count, features, created_at FROM generations`

// List returns up to limit records, newest first. A non-positive limit
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	q := selectCols + ` ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return out, nil
}

// GetByArchive looks up the generation that produced archive name.
func (s *Store) GetByArchive(ctx context.Context, name string) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectCols+` WHERE archive_name = ?`, name)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		r        Record
		features string
	)
	err := sc.Scan(&r.ID, &r.Technology, &r.ProjectName, &r.SourceName, &r.ArchiveName,
		&r.ArchivePath, &r.ArchiveSize, &r.FileCount, &features, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan generation: %w", err)
	}
	if features != "" {
		r.Features = strings.Split(features, "\n")
	}
	return r, nil
}
