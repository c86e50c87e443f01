// Package alert delivers crisis notifications and operator reports.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"echoguard/internal/records"
)

// Notifier is invoked for every record flagged as crisis-level.
type Notifier interface {
	Notify(ctx context.Context, rec records.Record) error
}

// Channel is a single delivery medium (log, Telegram, e-mail).
type Channel interface {
	Name() string
	Send(ctx context.Context, subject, body string) error
}

// CrisisLevel returns HIGH for crisis records and MODERATE otherwise.
func CrisisLevel(rec records.Record) string {
	if rec.IsCrisis {
		return "HIGH"
	}
	return "MODERATE"
}

// Subject is the one-line headline used for e-mail subjects and chat titles.
func Subject(rec records.Record) string {
	return fmt.Sprintf("🚨 CRISIS ALERT (%s): %s", CrisisLevel(rec), rec.Emotion)
}

// FormatAlert renders the human-readable alert body.
func FormatAlert(rec records.Record) string {
	var sb strings.Builder
	sb.WriteString("🚨 CRISIS ALERT TRIGGERED 🚨\n")
	fmt.Fprintf(&sb, "Record: %s\n", rec.ID)
	fmt.Fprintf(&sb, "Timestamp: %s\n", rec.Timestamp)
	fmt.Fprintf(&sb, "Emotion: %s (Confidence: %.2f)\n", rec.Emotion, rec.Confidence)
	fmt.Fprintf(&sb, "Text: %s\n", rec.Text)
	fmt.Fprintf(&sb, "Crisis Level: %s\n", CrisisLevel(rec))
	sb.WriteString("Emergency contact has been notified.")
	return sb.String()
}

// Dispatcher fans an alert out to every configured channel. A failing channel
// does not stop delivery to the others.
type Dispatcher struct {
	channels []Channel
}

func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

func (d *Dispatcher) Notify(ctx context.Context, rec records.Record) error {
	return d.Broadcast(ctx, Subject(rec), FormatAlert(rec))
}

// Broadcast sends an arbitrary message through every channel.
func (d *Dispatcher) Broadcast(ctx context.Context, subject, body string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("alert dispatch panicked: %v", r)
		}
	}()
	var errs []error
	for _, ch := range d.channels {
		if sendErr := ch.Send(ctx, subject, body); sendErr != nil {
			log.Printf("⚠️ alert channel %s failed: %v", ch.Name(), sendErr)
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), sendErr))
		}
	}
	return errors.Join(errs...)
}

// LogChannel writes alerts to the process log.
type LogChannel struct {
	logger *log.Logger
}

func NewLogChannel(logger *log.Logger) *LogChannel {
	if logger == nil {
		logger = log.Default()
	}
	return &LogChannel{logger: logger}
}

func (c *LogChannel) Name() string { return "log" }

func (c *LogChannel) Send(_ context.Context, subject, body string) error {
	c.logger.Printf("%s\n%s\n%s", subject, body, strings.Repeat("-", 50))
	return nil
}
