package main

import (
	"context"
	"log"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ridemap/admin-server/internal/apiclient"
	"github.com/ridemap/admin-server/internal/cache"
	"github.com/ridemap/admin-server/internal/config"
	"github.com/ridemap/admin-server/internal/db"
	"github.com/ridemap/admin-server/internal/handlers"
	"github.com/ridemap/admin-server/internal/metrics"
	"github.com/ridemap/admin-server/internal/middleware"
	"github.com/ridemap/admin-server/internal/services"
	"github.com/ridemap/admin-server/internal/storage"
	"github.com/ridemap/admin-server/internal/store"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, using environment variables")
	}

	cfg := config.New()

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			zlog.Warn("sentry init failed", zap.Error(err))
		}
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		zlog.Fatal("mongodb connection failed", zap.Error(err))
	}

	blobs, err := storage.NewMinioStore(ctx, cfg.Minio)
	if err != nil {
		zlog.Fatal("minio connection failed", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	gateway := store.NewMongoGateway(database)
	snapshots := cache.NewStore()
	backend := apiclient.New(cfg.Backend)

	sessionSvc := services.NewSessionService(gateway, snapshots, zlog)
	instituteSvc := services.NewInstituteService(gateway, snapshots, zlog)
	occupancySvc := services.NewOccupancyService(gateway, instituteSvc, snapshots, m, zlog)
	reportSvc := services.NewReportService(gateway, blobs, m, zlog)

	sessionHandler := handlers.NewSessionHandler(sessionSvc)
	instituteHandler := handlers.NewInstituteHandler(instituteSvc)
	adminHandler := handlers.NewAdminHandler(instituteSvc, backend)
	userHandler := handlers.NewUserHandler(instituteSvc, backend)
	occupancyHandler := handlers.NewOccupancyHandler(occupancySvc)
	reportHandler := handlers.NewReportHandler(reportSvc)

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	app.Post("/auth/session", sessionHandler.Establish)

	api := app.Group("/institutes/:institute", middleware.RequireAdminSession, middleware.RequireTenant)

	api.Get("/departments", instituteHandler.Departments)
	api.Post("/departments", instituteHandler.AddDepartment)
	api.Delete("/departments/:name", instituteHandler.DeleteDepartment)

	api.Get("/busses", instituteHandler.Busses)
	api.Post("/busses", instituteHandler.AddBus)
	api.Delete("/busses/:busNo", instituteHandler.DeleteBus)

	api.Get("/admins", adminHandler.List)
	api.Post("/admins", adminHandler.Create)
	api.Delete("/admins/:uid", adminHandler.Delete)

	api.Get("/users", userHandler.List)
	api.Get("/users/search", userHandler.Search)
	api.Post("/users", userHandler.Create)
	api.Put("/users/:uid", userHandler.Update)
	api.Patch("/users/:uid/bus", userHandler.ReassignBus)

	api.Get("/occupancy", occupancyHandler.Report)

	api.Get("/reports", reportHandler.List)
	api.Post("/reports", reportHandler.Upload)
	api.Get("/reports/progress/:id", reportHandler.Progress)
	api.Get("/reports/:enrollNo/images", reportHandler.Images)

	zlog.Info("starting server", zap.String("addr", cfg.Server.Address()))
	if err := app.Listen(cfg.Server.Address()); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
