package records

import (
	"fmt"
	"strings"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns the repository for the named backend.
func Open(backend, path string) (Repository, error) {
	switch strings.ToLower(backend) {
	case "", BackendJSON:
		return NewFileRepository(path)
	case BackendSQLite:
		return NewSQLiteRepository(path)
	default:
		return nil, fmt.Errorf("unknown records backend: %s", backend)
	}
}
