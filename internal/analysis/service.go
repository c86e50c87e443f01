// Package analysis orchestrates one text analysis: classification, crisis
// detection, persistence and alerting.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"echoguard/internal/alert"
	"echoguard/internal/audit"
	"echoguard/internal/crisis"
	"echoguard/internal/records"
	"echoguard/internal/sentiment"
)

// ValidationError reports unusable input. Its message is safe to show to callers.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var ErrNoText = &ValidationError{Message: "no text provided"}

// Outcome is the result of a successful analysis. Record is exactly what was persisted.
type Outcome struct {
	Record    records.Record
	AlertSent bool
}

type Service struct {
	classifier sentiment.Classifier
	repo       records.Repository
	notifier   alert.Notifier
	audit      audit.Recorder
	now        func() time.Time
	newID      func() string
}

type Option func(*Service)

func WithAudit(r audit.Recorder) Option {
	return func(s *Service) { s.audit = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService wires the collaborators. notifier may be nil, in which case crisis
// records are stored without alerting.
func NewService(classifier sentiment.Classifier, repo records.Repository, notifier alert.Notifier, opts ...Option) *Service {
	s := &Service{
		classifier: classifier,
		repo:       repo,
		notifier:   notifier,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze classifies text, stores the resulting record and raises a crisis
// alert when needed. A storage failure fails the whole call; an alert failure
// is logged and reported only through Outcome.AlertSent.
func (s *Service) Analyze(ctx context.Context, text string) (*Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoText
	}

	res, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify text: %w", err)
	}

	rec := records.Record{
		ID:         s.newID(),
		Timestamp:  s.now().UTC().Format(records.TimestampLayout),
		Text:       text,
		Emotion:    sentiment.EmotionFromLabel(res.Label),
		Confidence: res.Score,
		IsCrisis:   crisis.Detect(text),
	}

	if err := s.repo.Append(rec); err != nil {
		return nil, fmt.Errorf("store record: %w", err)
	}

	out := &Outcome{Record: rec}
	if rec.IsCrisis {
		log.Printf("🚨 Distress detected in record %s (phrases: %s)", rec.ID, strings.Join(crisis.Matches(text), ", "))
		out.AlertSent = s.notify(ctx, rec)
	}

	s.record(audit.Event{
		Action:    audit.ActionAnalyze,
		RecordID:  rec.ID,
		Emotion:   string(rec.Emotion),
		IsCrisis:  rec.IsCrisis,
		AlertSent: out.AlertSent,
	})
	return out, nil
}

func (s *Service) List() ([]records.Record, error) {
	return s.repo.LoadAll()
}

func (s *Service) Get(id string) (records.Record, error) {
	return s.repo.Get(id)
}

// Delete removes a record. Deleting an unknown id succeeds.
func (s *Service) Delete(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.record(audit.Event{Action: audit.ActionDelete, RecordID: id})
	return nil
}

func (s *Service) notify(ctx context.Context, rec records.Record) (sent bool) {
	if s.notifier == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ crisis alert for %s panicked: %v", rec.ID, r)
			sent = false
		}
	}()
	if err := s.notifier.Notify(ctx, rec); err != nil {
		log.Printf("❌ crisis alert for %s failed: %v", rec.ID, err)
		return false
	}
	return true
}

func (s *Service) record(ev audit.Event) {
	if s.audit == nil {
		return
	}
	ev.Timestamp = s.now().UTC()
	if err := s.audit.Append(ev); err != nil {
		log.Printf("⚠️ failed to write audit event: %v", err)
	}
}

// IsValidation reports whether err is caused by bad input.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
