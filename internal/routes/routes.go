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

	"github.com/coinfold/coinfold/internal/config"
	"github.com/coinfold/coinfold/internal/ledger"
	"github.com/coinfold/coinfold/internal/middleware"
	"github.com/coinfold/coinfold/internal/notification"
	"github.com/coinfold/coinfold/internal/prices"
	"github.com/coinfold/coinfold/internal/session"
	"github.com/coinfold/coinfold/internal/store"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// handlers groups the wired services behind the HTTP surface.
type handlers struct {
	engine   *ledger.Engine
	sessions *session.Manager
	prices   prices.Source
}

// Setup configures middlewares and all application routes. Without a
// database the service runs on in-memory storage; without Redis prices are
// uncached and idempotency is not enforced. Both fallbacks are for
// development only.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.Development() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	RegisterHealthRoutes(app, d)

	var st store.Store
	if d.DB != nil {
		st = store.NewPostgres(d.DB)
	} else {
		st = store.NewMemory()
	}
	schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.EnsureSchema(schemaCtx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	var priceSrc prices.Source = prices.Static()
	if d.Cache != nil {
		priceSrc = prices.NewCached(priceSrc, d.Cache, d.Cfg.PriceCacheTTL)
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	engine := ledger.NewEngine(st, priceSrc, notifier, d.Cfg.StorageTimeout, d.Logger)
	sessions := session.NewManager(d.Cfg.SessionTTL)

	h := &handlers{engine: engine, sessions: sessions, prices: priceSrc}

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	h.RegisterAuthRoutes(api)
	h.RegisterMarketRoutes(api)

	// Protected routes
	protected := api.Group("", middleware.SessionAuth(sessions))
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	h.RegisterLogoutRoute(protected)
	h.RegisterWalletRoutes(protected)

	return nil
}
