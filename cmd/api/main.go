package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/rikscandle/rikscandle-backend/api/routes"
	"github.com/rikscandle/rikscandle-backend/internal/inventory"
	"github.com/rikscandle/rikscandle-backend/internal/invoices"
	"github.com/rikscandle/rikscandle-backend/internal/orders"
	"github.com/rikscandle/rikscandle-backend/internal/payments"
	"github.com/rikscandle/rikscandle-backend/internal/pricing"
	"github.com/rikscandle/rikscandle-backend/internal/products"
	"github.com/rikscandle/rikscandle-backend/internal/users"
	"github.com/rikscandle/rikscandle-backend/pkg/config"
	"github.com/rikscandle/rikscandle-backend/pkg/db"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
	"github.com/rikscandle/rikscandle-backend/pkg/mailer"
	"github.com/rikscandle/rikscandle-backend/pkg/migrate"
	"github.com/rikscandle/rikscandle-backend/pkg/razorpay"
	"github.com/rikscandle/rikscandle-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gateway, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create razorpay client", err)
		os.Exit(1)
	}

	mail, err := mailer.NewClient(cfg.Sendgrid, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	renderer, err := invoice.NewRenderer(context.Background(), cfg.Company, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice renderer", err)
		os.Exit(1)
	}

	productRepo := product.NewRepository(dbClient.DB())
	userRepo := user.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	userService, err := user.NewService(userRepo, cfg.JWT, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	coupons, err := pricing.NewRedisCouponResolver(redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon resolver", err)
		os.Exit(1)
	}

	pricer, err := pricing.NewService(productRepo, coupons, cfg.Pricing)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	settler, err := inventory.NewSettler(logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory settler", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		ordersRepo,
		dbClient,
		pricer,
		settler,
		func(tx *gorm.DB) inventory.ProductStore { return productRepo.WithTx(tx) },
		userRepo,
		mail,
		renderer,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(gateway, ordersRepo, ordersService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	webhookGuard, err := payments.NewIdempotencyGuard(redisClient, cfg.Razorpay.WebhookEventTTL, "razorpay:webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Cfg:          cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Orders:       ordersService,
			Payments:     paymentsService,
			Catalog:      productRepo,
			Renderer:     renderer,
			Login:        userService,
			WebhookGuard: webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
