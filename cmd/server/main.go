package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/gpsfleet/fleet-reports-go/internal/api"
	"github.com/gpsfleet/fleet-reports-go/internal/config"
	"github.com/gpsfleet/fleet-reports-go/internal/database"
	"github.com/gpsfleet/fleet-reports-go/internal/export"
	"github.com/gpsfleet/fleet-reports-go/internal/handler"
	"github.com/gpsfleet/fleet-reports-go/internal/jobs"
	"github.com/gpsfleet/fleet-reports-go/internal/logger"
	"github.com/gpsfleet/fleet-reports-go/internal/notification"
	"github.com/gpsfleet/fleet-reports-go/internal/repository"
	"github.com/gpsfleet/fleet-reports-go/internal/service"
)

func main() {
	cfg := config.Load()

	log, err := logger.Init(os.Getenv("ENVIRONMENT"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	store, err := jobs.NewStore(cfg.JobDir, log)
	if err != nil {
		log.Fatal("failed to open job store", zap.Error(err))
	}
	store.StartSweeper(jobs.DefaultSweepInterval)
	defer store.Close()

	exporter, err := export.NewCSVExporter(cfg.ExportDir)
	if err != nil {
		log.Fatal("failed to prepare export directory", zap.Error(err))
	}

	var notifier service.Notifier
	if cfg.SMTPHost != "" {
		notifier = notification.NewEmailNotifier(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	reports := service.NewReportService(
		store,
		repository.NewDeviceRepository(db),
		repository.NewTelemetryRepository(db),
		repository.NewEventRepository(db),
		repository.NewGeofenceRepository(db),
		exporter,
		notifier,
		log,
	)

	router := api.SetupRouter(handler.NewReportHandler(reports), log)

	log.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
