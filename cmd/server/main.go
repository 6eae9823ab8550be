package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/service"
	"github.com/atlaserp/procurement/internal/config"
	"github.com/atlaserp/procurement/internal/infrastructure/directory"
	"github.com/atlaserp/procurement/internal/infrastructure/notify"
	"github.com/atlaserp/procurement/internal/infrastructure/persistence/repository"
	"github.com/atlaserp/procurement/internal/infrastructure/persistence/sqlite"
	"github.com/atlaserp/procurement/internal/infrastructure/storage"
	httpiface "github.com/atlaserp/procurement/internal/interfaces/http"
	"github.com/atlaserp/procurement/pkg/database"
	"github.com/atlaserp/procurement/pkg/utils"
)

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting procurement workflow service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer sqlDB.Close()

	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	db := sqlite.NewDB(sqlDB, logger)

	requisitionRepo := repository.NewRequisitionRepository(sqlDB, logger)
	budgetRepo := repository.NewBudgetRepository(sqlDB, logger)
	historyRepo := repository.NewHistoryRepository(sqlDB, logger)
	approverRepo := repository.NewApproverRepository(sqlDB, logger)

	userDirectory := directory.NewSQLDirectory(sqlDB, logger)
	notifier := notify.NewLogNotifier(logger)
	attachments := storage.NewLocalAttachmentStore(cfg.Attachments.BaseDir, logger)

	history := service.NewHistoryRecorder(historyRepo, logger)
	authority := service.NewApprovalAuthority(userDirectory, logger)
	projector := service.NewParentStatusProjector(requisitionRepo, history, logger)

	requisitionService := service.NewRequisitionService(
		requisitionRepo, history, authority, userDirectory, db, notifier, logger)
	budgetService := service.NewBudgetService(
		budgetRepo, requisitionRepo, history, authority, projector, db, notifier, logger)
	approverService := service.NewApproverService(approverRepo, authority, logger)

	server := httpiface.NewServer(httpiface.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, requisitionService, budgetService, approverService, attachments, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "configs/config.yaml"
}
