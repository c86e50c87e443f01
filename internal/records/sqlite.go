package records

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	timestamp  TEXT NOT NULL,
	text       TEXT NOT NULL,
	emotion    TEXT NOT NULL,
	confidence REAL NOT NULL,
	is_crisis  INTEGER NOT NULL
);`

// SQLiteRepository stores records in a SQLite table ordered by insertion.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps :memory: databases shared and serialises writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteRepository{db: db, path: path}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Append(rec Record) error {
	_, err := r.db.Exec(
		"INSERT INTO records (id, timestamp, text, emotion, confidence, is_crisis) VALUES (?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Timestamp, rec.Text, string(rec.Emotion), rec.Confidence, rec.IsCrisis,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("append %s: %w", rec.ID, ErrDuplicateID)
		}
		return &StorageError{Op: "insert", Path: r.path, Err: err}
	}
	return nil
}

func (r *SQLiteRepository) LoadAll() ([]Record, error) {
	rows, err := r.db.Query("SELECT id, timestamp, text, emotion, confidence, is_crisis FROM records ORDER BY seq")
	if err != nil {
		return nil, &StorageError{Op: "query", Path: r.path, Err: err}
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan", Path: r.path, Err: err}
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query", Path: r.path, Err: err}
	}
	return recs, nil
}

func (r *SQLiteRepository) Get(id string) (Record, error) {
	row := r.db.QueryRow("SELECT id, timestamp, text, emotion, confidence, is_crisis FROM records WHERE id = ?", id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, &StorageError{Op: "get", Path: r.path, Err: err}
	}
	return rec, nil
}

// Delete is a no-op for unknown ids. The table exists as soon as the
// repository is opened, so ErrStoreNotFound is never returned.
func (r *SQLiteRepository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM records WHERE id = ?", id); err != nil {
		return &StorageError{Op: "delete", Path: r.path, Err: err}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (Record, error) {
	var rec Record
	var emotion string
	if err := s.Scan(&rec.ID, &rec.Timestamp, &rec.Text, &emotion, &rec.Confidence, &rec.IsCrisis); err != nil {
		return Record{}, err
	}
	rec.Emotion = Emotion(emotion)
	return rec, nil
}
