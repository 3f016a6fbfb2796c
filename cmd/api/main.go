package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/phamiz/ecommerce-backend/api"
	"github.com/phamiz/ecommerce-backend/api/routes"
	"github.com/phamiz/ecommerce-backend/internal/addresses"
	"github.com/phamiz/ecommerce-backend/internal/auth"
	"github.com/phamiz/ecommerce-backend/internal/cart"
	"github.com/phamiz/ecommerce-backend/internal/orders"
	"github.com/phamiz/ecommerce-backend/internal/products"
	"github.com/phamiz/ecommerce-backend/internal/reviews"
	"github.com/phamiz/ecommerce-backend/internal/users"
	"github.com/phamiz/ecommerce-backend/pkg/auth/session"
	"github.com/phamiz/ecommerce-backend/pkg/config"
	"github.com/phamiz/ecommerce-backend/pkg/db"
	"github.com/phamiz/ecommerce-backend/pkg/logger"
	"github.com/phamiz/ecommerce-backend/pkg/metrics"
	"github.com/phamiz/ecommerce-backend/pkg/migrate"
	"github.com/phamiz/ecommerce-backend/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)

	conn := dbClient.DB()
	usersRepo := users.NewRepository(conn)
	productsRepo := products.NewRepository(conn)
	addressesRepo := addresses.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	reviewsRepo := reviews.NewRepository(conn)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
		AuthConfig:     cfg.Auth,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(productsRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	addressesService, err := addresses.NewService(addressesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create addresses service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, productsRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, cartRepo, productsRepo, addressesRepo, dbClient, orderMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	reviewsService, err := reviews.NewService(reviewsRepo, productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	handler := routes.New(routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Cache:       redisClient,
		Sessions:    sessionManager,
		HTTPMetrics: httpMetrics,
		Registry:    registry,
		Register:    registerService,
		Auth:        authService,
		Users:       usersService,
		Products:    productsService,
		Cart:        cartService,
		Orders:      ordersService,
		Addresses:   addressesService,
		Reviews:     reviewsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"port": port,
	})
	logg.Info(ctx, "starting api server")

	server := api.NewServer(port, handler, logg)
	if err := server.Start(ctx); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
