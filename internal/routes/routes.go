package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/athena-hd/athena-rewards/internal/config"
	"github.com/athena-hd/athena-rewards/internal/faults"
	"github.com/athena-hd/athena-rewards/internal/middleware"
	"github.com/athena-hd/athena-rewards/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. The wallet store
// is selected from the available backends: Postgres when a pool is present,
// else Redis, else the in-memory store (dev only).
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() && d.DB == nil && d.Cache == nil {
		return fmt.Errorf("a persistent store is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	store, err := selectStore(d)
	if err != nil {
		return err
	}

	faultHandler := faults.NewHandler()
	walletSvc := wallet.NewService(store, d.Logger)
	walletHandler := wallet.NewHandler(walletSvc, faultHandler)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterWalletRoutes(api, walletHandler)

	return nil
}

func selectStore(d Deps) (wallet.Store, error) {
	switch {
	case d.DB != nil:
		store := wallet.NewPostgresStore(d.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure wallet schema: %w", err)
		}
		return store, nil
	case d.Cache != nil:
		return wallet.NewRedisStore(d.Cache), nil
	default:
		d.Logger.Warn("no persistent store configured, using in-memory store")
		return wallet.NewMemoryStore(), nil
	}
}
