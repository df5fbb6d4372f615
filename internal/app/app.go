package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ReOneSec/SpyCrypto/internal/config"
	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
	s3infra "github.com/ReOneSec/SpyCrypto/internal/infra/s3"
	"github.com/ReOneSec/SpyCrypto/internal/infra/telegram"
	"github.com/ReOneSec/SpyCrypto/internal/repo/postgres"
	"github.com/ReOneSec/SpyCrypto/internal/services/admin"
	"github.com/ReOneSec/SpyCrypto/internal/services/detect"
	"github.com/ReOneSec/SpyCrypto/internal/services/enforce"
	exportsvc "github.com/ReOneSec/SpyCrypto/internal/services/export"
	"github.com/ReOneSec/SpyCrypto/internal/services/notify"
	"github.com/ReOneSec/SpyCrypto/internal/services/privilege"
	statssvc "github.com/ReOneSec/SpyCrypto/internal/services/stats"
)

type App struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	tg     *telegram.Client

	registry  *detect.Registry
	botNameFn func() string

	privilegeService *privilege.Service
	enforceService   *enforce.Service
	adminService     *admin.Service
	statsService     *statssvc.Service
	notifyService    *notify.Service
	exportService    *exportsvc.Service
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := detect.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("build pattern registry: %w", err)
	}

	db, err := postgres.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Warn("postgres unavailable, continuing without database", "error", err)
		db = nil
	}

	strikesRepo := postgres.NewStrikesRepo(db)
	actionsRepo := postgres.NewActionsRepo(db)

	var storage *s3infra.Storage
	if cfg.IsExportEnabled() {
		storage, err = s3infra.NewStorage(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
		if err != nil {
			logger.Warn("s3 storage unavailable, exports will be disabled", "error", err)
			storage = nil
		}
	}

	app := &App{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		registry: registry,
	}

	app.tg, err = telegram.NewClient(cfg.BotToken, cfg.PollTimeoutSeconds, logger, app.routeUpdate)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	app.botNameFn = app.tg.BotUsername

	app.notifyService = notify.NewService(app.tg, cfg.AdminLogChannel, logger)
	app.privilegeService = privilege.NewService(app.tg)
	app.enforceService = enforce.NewService(app.tg, &ledgerRepo{strikes: strikesRepo, actions: actionsRepo}, app.notifyService, logger, cfg.MuteDuration())
	app.adminService = admin.NewService(&ledgerRepo{strikes: strikesRepo, actions: actionsRepo}, logger)
	app.statsService = statssvc.NewService(actionsRepo)
	if storage != nil {
		app.exportService = exportsvc.NewService(actionsRepo, storage)
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	defer a.close()
	go a.notifyService.Run(ctx)
	return a.tg.Start(ctx)
}

func (a *App) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("close postgres", "error", err)
		}
	}
}

// ledgerRepo joins the two postgres repositories into the single Ledger
// surface the services consume.
type ledgerRepo struct {
	strikes *postgres.StrikesRepo
	actions *postgres.ActionsRepo
}

func (l *ledgerRepo) GetStrikes(ctx context.Context, chatID, userID int64) (int, error) {
	return l.strikes.GetStrikes(ctx, chatID, userID)
}

func (l *ledgerRepo) ListStrikes(ctx context.Context, chatID int64, limit int) ([]model.StrikeRecord, error) {
	return l.strikes.ListStrikes(ctx, chatID, limit)
}

func (l *ledgerRepo) IncrementStrikes(ctx context.Context, chatID, userID int64, username string) (int, error) {
	return l.strikes.IncrementStrikes(ctx, chatID, userID, username)
}

func (l *ledgerRepo) ResetUser(ctx context.Context, chatID, userID int64) (bool, error) {
	return l.strikes.ResetUser(ctx, chatID, userID)
}

func (l *ledgerRepo) ResetAll(ctx context.Context, chatID int64) (int, error) {
	return l.strikes.ResetAll(ctx, chatID)
}

func (l *ledgerRepo) LogAction(ctx context.Context, record model.ActionRecord) error {
	return l.actions.LogAction(ctx, record)
}
