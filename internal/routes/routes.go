package routes

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kivubank/accounts/internal/account"
	"github.com/kivubank/accounts/internal/card"
	"github.com/kivubank/accounts/internal/client"
	"github.com/kivubank/accounts/internal/config"
	"github.com/kivubank/accounts/internal/events"
	"github.com/kivubank/accounts/internal/middleware"
	"github.com/kivubank/accounts/internal/movement"
	"github.com/kivubank/accounts/internal/pending"
	"github.com/kivubank/accounts/internal/report"
	"github.com/kivubank/accounts/internal/transfer"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Outside of dev,
// missing backends are a wiring error; in dev the repositories and stores
// fall back to in-memory implementations and the bus to a log-only publisher.
func Setup(app *fiber.App, d Deps) error {
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	var (
		accountRepo  account.Repository
		movementRepo movement.Repository
		cardRepo     card.Repository
		transferRepo transfer.Repository
	)
	if d.DB != nil {
		accountRepo = account.NewPostgresRepository(d.DB)
		movementRepo = movement.NewPostgresRepository(d.DB)
		cardRepo = card.NewPostgresRepository(d.DB)
		transferRepo = transfer.NewPostgresRepository(d.DB)
	} else {
		accountRepo = account.NewMemoryRepository()
		movementRepo = movement.NewMemoryRepository()
		cardRepo = card.NewMemoryRepository()
		transferRepo = transfer.NewMemoryRepository()
	}

	var (
		pendingStore pending.Store
		bus          events.Bus
	)
	if d.Cache != nil {
		pendingStore = pending.NewRedisStore(d.Cache)
		bus = events.NewPublisher(d.Cache)
	} else {
		pendingStore = pending.NewMemoryStore()
		bus = events.NewLogBus(d.Logger)
	}

	var directory client.Directory
	if d.Cfg.ClientsURL != "" {
		directory = client.NewHTTPDirectory(d.Cfg.ClientsURL, d.Cfg.CreditsURL)
	} else {
		directory = client.NewStaticDirectory()
	}

	accountSvc := account.NewService(accountRepo, directory, d.Logger)
	movementSvc := movement.NewService(movementRepo, accountRepo, d.Logger)
	cardSvc := card.NewService(cardRepo, accountRepo, movementRepo, d.Logger)
	transferSvc := transfer.NewService(transferRepo, movementRepo, accountRepo, pendingStore, bus, d.Logger)
	reportSvc := report.NewService(accountRepo, cardRepo, movementRepo, transferRepo)

	api := app.Group("/api/v1")
	RegisterAccountRoutes(api, account.NewHandler(accountSvc), movement.NewHandler(movementSvc))
	RegisterMovementRoutes(api, movement.NewHandler(movementSvc))
	RegisterTransferRoutes(api, transfer.NewHandler(transferSvc), pendingStore, d.Cfg.PendingTTL)
	RegisterCardRoutes(api, card.NewHandler(cardSvc))
	RegisterReportRoutes(api, report.NewHandler(reportSvc))

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
