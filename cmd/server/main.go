package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"echoguard/internal/analytics"
	"echoguard/internal/api"
	"echoguard/internal/bootstrap"
	"echoguard/internal/config"
	"echoguard/internal/scheduler"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	app, err := bootstrap.NewApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to init EchoGuard: %v", err)
	}
	svc, dispatcher := app.Service, app.Dispatcher

	sched := scheduler.New()
	if cfg.DailyReportEnabled {
		sched.SetReportFunction(func(ctx context.Context) error {
			recs, err := svc.List()
			if err != nil {
				return fmt.Errorf("load records: %w", err)
			}
			stats := analytics.AnalyzeDaily(recs, time.Now().UTC())
			return dispatcher.Broadcast(ctx, "📊 EchoGuard daily report "+stats.Date, stats.GenerateReportSummary())
		})
		if err := sched.Start(cfg.DailyReportSchedule); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
	}

	srv := api.New(svc, cfg.HTTPAddr, cfg.CORSAllowedOrigin)

	log.Println("🚀 Starting EchoGuard backend")
	log.Printf("📊 Sentiment classifier: %s", cfg.ClassifierProvider)
	log.Printf("🚨 Crisis alerts via: %s", strings.Join(dispatcher.Channels(), ", "))
	log.Printf("💾 Records backend: %s", cfg.RecordsBackend)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ server failed: %v", err)
		}
	case sig := <-stop:
		log.Printf("🛑 Received %s, shutting down", sig)
		if err := srv.Stop(); err != nil {
			log.Printf("⚠️ graceful shutdown failed: %v", err)
		}
	}
	sched.Stop()
}
