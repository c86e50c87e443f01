package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echoguard/internal/audit"
	"echoguard/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ClassifierProvider: config.ProviderLexicon,
		RecordsBackend:     config.BackendJSON,
		RecordsFilePath:    filepath.Join(dir, "data", "emotions.json"),
		RecordsSQLitePath:  filepath.Join(dir, "data", "emotions.db"),
		AuditLogPath:       filepath.Join(dir, "logs", "audit.jsonl"),
	}
}

func TestNewApp_CrisisIsAlertedAndAudited(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"log"}, app.Dispatcher.Channels())

	out, err := app.Service.Analyze(context.Background(), "I want to die")
	require.NoError(t, err)
	assert.True(t, out.Record.IsCrisis)
	assert.True(t, out.AlertSent)

	rec, err := audit.NewFileRecorder(cfg.AuditLogPath)
	require.NoError(t, err)
	events, err := rec.Load()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionAnalyze, events[0].Action)
	assert.Equal(t, out.Record.ID, events[0].RecordID)
	assert.True(t, events[0].AlertSent)
}

func TestNewApp_AuditDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuditLogPath = ""
	assert.Empty(t, AuditOptions(cfg))

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	_, err = app.Service.Analyze(context.Background(), "a calm day")
	require.NoError(t, err)
}

func TestOpenRecords_SQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.RecordsBackend = config.BackendSQLite
	repo, err := OpenRecords(cfg)
	require.NoError(t, err)
	assert.FileExists(t, cfg.RecordsSQLitePath)

	recs, err := repo.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSplitRecipients(t *testing.T) {
	assert.Equal(t, []string{"a@x", "b@y"}, SplitRecipients("a@x, b@y"))
	assert.Equal(t, []string{"a@x"}, SplitRecipients(" a@x ,, "))
	assert.Empty(t, SplitRecipients(""))
}
