package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vetclinic/m/internal/api"
	"vetclinic/m/internal/backup"
	"vetclinic/m/internal/backup/s3"
	"vetclinic/m/internal/clinic"
	"vetclinic/m/internal/config"
	"vetclinic/m/internal/dashboard"
	"vetclinic/m/internal/database"
	"vetclinic/m/internal/i18n"
	"vetclinic/m/internal/logger"
	"vetclinic/m/internal/migrations"
	"vetclinic/m/internal/notify"
	"vetclinic/m/internal/seed"
	"vetclinic/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	settings, err := config.OpenSettings(cfg.SettingsFile)
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	appLog := logger.New(logger.Options{
		Level:  logger.ParseLevel(settings.Get().LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()
	if err := migrations.Run(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	catalog, err := i18n.Load(cfg.TranslationsFile)
	if err != nil {
		log.Fatalf("failed to load translations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw := store.New(db, appLog)
	hub := notify.NewHub(appLog.With(map[string]any{"component": "notify"}))
	tr := i18n.New(catalog, settings, appLog)
	board := dashboard.New(gw, appLog.With(map[string]any{"component": "dashboard"}))

	var mirror backup.Uploader
	if cfg.BackupS3.Enabled() {
		m, err := s3.New(ctx, cfg.BackupS3)
		if err != nil {
			log.Fatalf("failed to configure backup mirror: %v", err)
		}
		mirror = m
	}
	backups := backup.New(cfg.DatabaseDSN, mirror, appLog.With(map[string]any{"component": "backup"}))

	svc := api.Services{
		Patients:     clinic.NewPatients(gw, hub),
		Inventory:    clinic.NewInventory(gw, hub),
		Billing:      clinic.NewBilling(gw, hub),
		Analytics:    clinic.NewAnalytics(gw),
		Reminders:    clinic.NewReminders(gw, settings),
		Appointments: clinic.NewAppointments(gw, hub),
		Expenses:     clinic.NewExpenses(gw, hub),
		Operators:    clinic.NewOperators(gw),
	}

	hub.Subscribe(board, notify.TopicPatients, notify.TopicAppointments, notify.TopicInventory, notify.TopicLedger)
	hub.Subscribe(tr, notify.TopicSettings)
	hub.Subscribe(backups, notify.TopicSettings)
	hub.Subscribe(notify.RefresherFunc(func(ctx context.Context, topic notify.Topic) error {
		appLog.SetLevel(logger.ParseLevel(settings.Get().LogLevel))
		return nil
	}), notify.TopicSettings)

	if cfg.InventoryCSV != "" {
		seed.LoadInventory(ctx, svc.Inventory, cfg.InventoryCSV, appLog)
	}
	logReminders(ctx, svc.Reminders, appLog)

	go board.Run(ctx, dashboard.DefaultInterval)
	go backups.Schedule(ctx, func() time.Duration {
		return backup.Days(settings.Get().BackupFrequencyDays)
	})

	handler := api.New(svc, api.Deps{
		Secret:     cfg.Secret,
		ExportDir:  cfg.ExportDir,
		Settings:   settings,
		Hub:        hub,
		Translator: tr,
		Board:      board,
		Backup:     backups,
		Log:        appLog,
	})

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: handler.Router(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.Printf("vet clinic server starting on :%s", cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// logReminders reports what needs attention today, as the front desk sees
// it on start-up.
func logReminders(ctx context.Context, r *clinic.Reminders, log logger.Logger) {
	if due, err := r.VaccinesDueToday(ctx); err != nil {
		log.Warn("vaccine reminder query failed", map[string]any{"error": err})
	} else if len(due) > 0 {
		log.Info("vaccines due today", map[string]any{"count": len(due)})
	}
	if items, err := r.ExpiringWithin(ctx, clinic.DefaultExpiryWindowDays); err != nil {
		log.Warn("expiry reminder query failed", map[string]any{"error": err})
	} else if len(items) > 0 {
		log.Info("inventory expiring soon", map[string]any{"count": len(items)})
	}
	if items, err := r.LowStock(ctx); err != nil {
		log.Warn("low stock query failed", map[string]any{"error": err})
	} else if len(items) > 0 {
		log.Info("inventory low on stock", map[string]any{"count": len(items)})
	}
}
