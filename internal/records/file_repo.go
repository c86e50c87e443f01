package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository keeps the whole collection as one JSON array and rewrites
// it on every change. The mutex serialises read-modify-write inside a process;
// separate processes sharing the file are still last-writer-wins.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository ensures the parent directory exists. The file itself is
// created lazily on the first write.
func NewFileRepository(path string) (*FileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	return &FileRepository{path: path}, nil
}

func (r *FileRepository) Append(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs, _, err := r.loadUnlocked()
	if err != nil {
		return err
	}
	for _, existing := range recs {
		if existing.ID == rec.ID {
			return fmt.Errorf("append %s: %w", rec.ID, ErrDuplicateID)
		}
	}
	recs = append(recs, rec)
	return r.saveUnlocked(recs)
}

func (r *FileRepository) LoadAll() ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs, _, err := r.loadUnlocked()
	return recs, err
}

func (r *FileRepository) Get(id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs, _, err := r.loadUnlocked()
	if err != nil {
		return Record{}, err
	}
	for _, rec := range recs {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, ErrRecordNotFound
}

// Delete removes the record with the given id. An unknown id is not an error,
// but a store file that was never written yields ErrStoreNotFound.
func (r *FileRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs, exists, err := r.loadUnlocked()
	if err != nil {
		return err
	}
	if !exists {
		return ErrStoreNotFound
	}
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if rec.ID != id {
			out = append(out, rec)
		}
	}
	return r.saveUnlocked(out)
}

// loadUnlocked reads the collection. A missing or blank file is an empty
// collection; anything that does not decode as a JSON array is a StorageError.
func (r *FileRepository) loadUnlocked() ([]Record, bool, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Record{}, false, nil
		}
		return nil, false, &StorageError{Op: "read", Path: r.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Record{}, true, nil
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, true, &StorageError{Op: "decode", Path: r.path, Err: err}
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, true, nil
}

// saveUnlocked writes through a temp file and renames it over the target so a
// crash mid-write never leaves a truncated collection behind.
func (r *FileRepository) saveUnlocked(recs []Record) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Path: r.path, Err: err}
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".tmp_records_*")
	if err != nil {
		return &StorageError{Op: "write", Path: r.path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &StorageError{Op: "write", Path: r.path, Err: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return &StorageError{Op: "chmod", Path: r.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &StorageError{Op: "sync", Path: r.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StorageError{Op: "write", Path: r.path, Err: err}
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return &StorageError{Op: "rename", Path: r.path, Err: err}
	}
	return nil
}
