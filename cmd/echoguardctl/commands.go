package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"echoguard/internal/alert"
	"echoguard/internal/analysis"
	"echoguard/internal/analytics"
	"echoguard/internal/audit"
	"echoguard/internal/config"
	"echoguard/internal/records"
	"echoguard/internal/sentiment"
)

type options struct {
	backend    string
	path       string
	classifier string
	auditPath  string
	jsonOut    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	defaults := &config.Config{}
	if cfg, err := config.Load(); err == nil {
		defaults = cfg
	}
	defaultPath := defaults.RecordsFilePath
	if defaults.RecordsBackend == config.BackendSQLite {
		defaultPath = defaults.RecordsSQLitePath
	}

	rootCmd := &cobra.Command{
		Use:          "echoguardctl",
		Short:        "Inspect and manage EchoGuard analysis records",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", string(defaults.RecordsBackend), "records backend (json or sqlite)")
	rootCmd.PersistentFlags().StringVar(&opts.path, "records", defaultPath, "records file or database path")
	rootCmd.PersistentFlags().StringVar(&opts.classifier, "classifier", string(config.ProviderLexicon), "classifier provider (lexicon, openai, yandex)")
	rootCmd.PersistentFlags().StringVar(&opts.auditPath, "audit", defaults.AuditLogPath, "audit log path (empty disables auditing)")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(analyzeCmd(opts, defaults))
	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(showCmd(opts))
	rootCmd.AddCommand(deleteCmd(opts))
	rootCmd.AddCommand(statsCmd(opts))
	rootCmd.AddCommand(trendCmd(opts))
	rootCmd.AddCommand(auditCmd(opts))

	return rootCmd
}

func (o *options) service(cfg *config.Config, out io.Writer) (*analysis.Service, error) {
	repo, err := records.Open(o.backend, o.path)
	if err != nil {
		return nil, err
	}

	var classifier sentiment.Classifier = sentiment.NewLexiconClassifier()
	if cfg != nil {
		c := *cfg
		c.ClassifierProvider = config.ClassifierProvider(o.classifier)
		classifier, err = sentiment.New(&c)
		if err != nil {
			return nil, err
		}
	}

	var svcOpts []analysis.Option
	if o.auditPath != "" {
		rec, err := audit.NewFileRecorder(o.auditPath)
		if err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, analysis.WithAudit(rec))
	}

	notifier := alert.NewDispatcher(&writerChannel{w: out})
	return analysis.NewService(classifier, repo, notifier, svcOpts...), nil
}

func (o *options) loadRecords() ([]records.Record, error) {
	repo, err := records.Open(o.backend, o.path)
	if err != nil {
		return nil, err
	}
	return repo.LoadAll()
}

func analyzeCmd(opts *options, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [text]",
		Short: "Analyze text and store the record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			out, err := svc.Analyze(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), out.Record)
			}
			rec := out.Record
			fmt.Fprintf(cmd.OutOrStdout(), "Stored record: %s\n", rec.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Emotion: %s (confidence %.2f)\n", rec.Emotion, rec.Confidence)
			fmt.Fprintf(cmd.OutOrStdout(), "Crisis: %t\n", rec.IsCrisis)
			return nil
		},
	}
}

func listCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored records, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := opts.loadRecords()
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), recs)
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No records.")
				return nil
			}
			for _, rec := range recs {
				flag := ""
				if rec.IsCrisis {
					flag = " [CRISIS]"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-7s %.2f%s  %s\n",
					rec.ID[:min(8, len(rec.ID))], rec.Timestamp, rec.Emotion, rec.Confidence, flag, truncate(rec.Text, 60))
			}
			return nil
		},
	}
}

func showCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a single record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(nil, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			rec, err := svc.Get(args[0])
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ID: %s\nTimestamp: %s\nEmotion: %s (confidence %.2f)\nCrisis: %t\nText: %s\n",
				rec.ID, rec.Timestamp, rec.Emotion, rec.Confidence, rec.IsCrisis, rec.Text)
			return nil
		},
	}
}

func deleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(nil, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := svc.Delete(args[0]); err != nil {
				if errors.Is(err, records.ErrStoreNotFound) {
					return fmt.Errorf("no records found at %s", opts.path)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func statsCmd(opts *options) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show daily statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now().UTC()
			if date != "" {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				day = parsed
			}
			recs, err := opts.loadRecords()
			if err != nil {
				return err
			}
			stats := analytics.AnalyzeDaily(recs, day)
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), stats)
			}
			fmt.Fprint(cmd.OutOrStdout(), stats.GenerateReportSummary())
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to report (YYYY-MM-DD, default today UTC)")
	return cmd
}

func trendCmd(opts *options) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show the wellbeing trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := opts.loadRecords()
			if err != nil {
				return err
			}
			trend := analytics.WellbeingTrend(recs, time.Now().UTC(), days)
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), trend)
			}
			for _, p := range trend {
				score := "-"
				if p.Score != nil {
					score = fmt.Sprintf("%.2f", *p.Score)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %5s  (%d records)\n", p.Date, score, p.Records)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "number of days")
	return cmd
}

func auditCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Print the audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.auditPath == "" {
				return errors.New("audit log path is not set")
			}
			rec, err := audit.NewFileRecorder(opts.auditPath)
			if err != nil {
				return err
			}
			events, err := rec.Load()
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), events)
			}
			for _, ev := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-7s %s\n", ev.Timestamp.Format(time.RFC3339), ev.Action, ev.RecordID)
			}
			return nil
		},
	}
}

// writerChannel prints crisis alerts to the command output.
type writerChannel struct {
	w io.Writer
}

func (c *writerChannel) Name() string { return "stdout" }

func (c *writerChannel) Send(_ context.Context, subject, body string) error {
	_, err := fmt.Fprintf(c.w, "%s\n%s\n", subject, body)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "…"
}
