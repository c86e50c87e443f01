package records

import (
	"errors"
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for Record.Timestamp.
const TimestampLayout = time.RFC3339Nano

type Emotion string

const (
	EmotionHappy   Emotion = "happy"
	EmotionSad     Emotion = "sad"
	EmotionNeutral Emotion = "neutral"
)

// Record is the persisted outcome of one text analysis.
// ID, Timestamp and Text never change after the record is appended.
type Record struct {
	ID         string  `json:"id"`
	Timestamp  string  `json:"timestamp"`
	Text       string  `json:"text"`
	Emotion    Emotion `json:"emotion"`
	Confidence float64 `json:"confidence"`
	IsCrisis   bool    `json:"is_crisis"`
}

// Time parses the record timestamp.
func (r Record) Time() (time.Time, error) {
	return time.Parse(TimestampLayout, r.Timestamp)
}

// Repository abstracts persistence of analysis records.
// LoadAll returns records in append order.
// Implementations must be safe for concurrent use.
type Repository interface {
	Append(rec Record) error
	LoadAll() ([]Record, error)
	Get(id string) (Record, error)
	Delete(id string) error
}

var (
	// ErrStoreNotFound is returned by Delete when the backing store was never created.
	ErrStoreNotFound  = errors.New("records store not found")
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateID    = errors.New("record id already exists")
)

// StorageError reports an unreadable, unwritable or malformed backing store.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("records %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
