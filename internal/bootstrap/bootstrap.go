// Package bootstrap assembles the analysis service from configuration so every
// binary stores, alerts and audits the same way.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"

	"echoguard/internal/alert"
	"echoguard/internal/analysis"
	"echoguard/internal/audit"
	"echoguard/internal/config"
	"echoguard/internal/records"
	"echoguard/internal/sentiment"
)

// App holds the wired service together with the pieces the binaries use directly.
type App struct {
	Service    *analysis.Service
	Dispatcher *alert.Dispatcher
	Repo       records.Repository
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	repo, err := OpenRecords(cfg)
	if err != nil {
		return nil, fmt.Errorf("init records store: %w", err)
	}

	classifier, err := sentiment.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	dispatcher := NewDispatcher(ctx, cfg)
	svc := analysis.NewService(classifier, repo, dispatcher, AuditOptions(cfg)...)

	return &App{Service: svc, Dispatcher: dispatcher, Repo: repo}, nil
}

// OpenRecords opens the configured records backend.
func OpenRecords(cfg *config.Config) (records.Repository, error) {
	path := cfg.RecordsFilePath
	if cfg.RecordsBackend == config.BackendSQLite {
		path = cfg.RecordsSQLitePath
	}
	return records.Open(string(cfg.RecordsBackend), path)
}

// NewDispatcher always logs alerts and adds Telegram and Gmail when configured.
// A channel that fails to initialise is skipped.
func NewDispatcher(ctx context.Context, cfg *config.Config) *alert.Dispatcher {
	channels := []alert.Channel{alert.NewLogChannel(nil)}

	if cfg.TelegramAlertsEnabled() {
		tg, err := alert.NewTelegramChannel(cfg.TelegramBotToken, cfg.TelegramAlertChatID)
		if err != nil {
			log.Printf("⚠️ telegram alerts disabled: %v", err)
		} else {
			channels = append(channels, tg)
		}
	}

	if cfg.GmailAlertsEnabled() {
		gm, err := alert.NewGmailChannel(ctx, alert.GmailCredentials{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			RefreshToken: cfg.GmailRefreshToken,
		}, cfg.AlertEmailFrom, SplitRecipients(cfg.AlertEmailTo))
		if err != nil {
			log.Printf("⚠️ gmail alerts disabled: %v", err)
		} else {
			channels = append(channels, gm)
		}
	}

	return alert.NewDispatcher(channels...)
}

// AuditOptions returns the service option for the configured audit log, or
// nothing when auditing is off or the log cannot be opened.
func AuditOptions(cfg *config.Config) []analysis.Option {
	if cfg.AuditLogPath == "" {
		return nil
	}
	rec, err := audit.NewFileRecorder(cfg.AuditLogPath)
	if err != nil {
		log.Printf("⚠️ failed to init audit log: %v", err)
		return nil
	}
	return []analysis.Option{analysis.WithAudit(rec)}
}

// SplitRecipients parses a comma-separated address list, dropping blanks.
func SplitRecipients(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
