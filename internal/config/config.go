package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type ClassifierProvider string

const (
	ProviderOpenAI  ClassifierProvider = "openai"
	ProviderYandex  ClassifierProvider = "yandex"
	ProviderLexicon ClassifierProvider = "lexicon"
)

type RecordsBackend string

const (
	BackendJSON   RecordsBackend = "json"
	BackendSQLite RecordsBackend = "sqlite"
)

type Config struct {
	// HTTP
	HTTPAddr          string `env:"HTTP_ADDR" envDefault:":5000"`
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`

	// Classifier settings
	ClassifierProvider ClassifierProvider `env:"CLASSIFIER_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey       string             `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string             `env:"OPENAI_BASE_URL"`
	OpenAIModel        string             `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken   string             `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID     string             `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Storage
	RecordsBackend    RecordsBackend `env:"RECORDS_BACKEND" envDefault:"json"`
	RecordsFilePath   string         `env:"RECORDS_FILE_PATH" envDefault:"data/emotions.json"`
	RecordsSQLitePath string         `env:"RECORDS_SQLITE_PATH" envDefault:"data/emotions.db"`
	AuditLogPath      string         `env:"AUDIT_LOG_PATH" envDefault:"logs/audit.jsonl"`

	// Crisis alerts
	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAlertChatID int64  `env:"TELEGRAM_ALERT_CHAT_ID"`
	GmailClientID       string `env:"GMAIL_CLIENT_ID"`
	GmailClientSecret   string `env:"GMAIL_CLIENT_SECRET"`
	GmailRefreshToken   string `env:"GMAIL_REFRESH_TOKEN"`
	AlertEmailFrom      string `env:"ALERT_EMAIL_FROM"`
	AlertEmailTo        string `env:"ALERT_EMAIL_TO"`

	// Daily report
	DailyReportEnabled  bool   `env:"DAILY_REPORT_ENABLED" envDefault:"true"`
	DailyReportSchedule string `env:"DAILY_REPORT_SCHEDULE" envDefault:"0 21 * * *"`
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// TelegramAlertsEnabled reports whether crisis alerts should go to Telegram.
func (c *Config) TelegramAlertsEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramAlertChatID != 0
}

// GmailAlertsEnabled reports whether crisis alerts should be e-mailed.
func (c *Config) GmailAlertsEnabled() bool {
	return c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != "" && c.AlertEmailTo != ""
}
