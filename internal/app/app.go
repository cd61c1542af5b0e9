package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/duoplan/internal/config"
	"github.com/templui/duoplan/internal/db"
	"github.com/templui/duoplan/internal/repository"
	"github.com/templui/duoplan/internal/service"
	"github.com/templui/duoplan/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Clock          service.Clock
	AuthService    *service.AuthService
	GoalService    *service.GoalService
	PartnerService *service.PartnerService
	SyncService    *service.SyncService
	ExportService  *service.ExportService
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	exportStorage, err := storage.New(cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return NewWithDB(cfg, database, exportStorage, service.SystemClock{Location: cfg.WeekLocation()}), nil
}

// NewWithDB wires the services on an already migrated database. exportStorage may be
// nil.
func NewWithDB(cfg *config.Config, database *sqlx.DB, exportStorage storage.Storage, clock service.Clock) *App {
	// Repositories
	goalRepository := repository.NewGoalRepository(database)
	goalProgressRepository := repository.NewGoalProgressRepository(database)
	partnerGoalRepository := repository.NewPartnerGoalRepository(database)
	taskLinkRepository := repository.NewTaskLinkRepository(database)

	// Services
	goalService := service.NewGoalService(
		goalRepository,
		goalProgressRepository,
		partnerGoalRepository,
		taskLinkRepository,
		clock,
	)
	partnerService := service.NewPartnerService(partnerGoalRepository)
	exportService := service.NewExportService(
		goalRepository,
		goalProgressRepository,
		exportStorage,
		clock,
		cfg.S3PresignExpiry,
	)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Clock:          clock,
		AuthService:    service.NewAuthService(cfg.JWTSecret),
		GoalService:    goalService,
		PartnerService: partnerService,
		SyncService:    service.NewSyncService(partnerService, cfg.SyncWebhookSecret),
		ExportService:  exportService,
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
