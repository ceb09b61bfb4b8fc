package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"autoservice-backend/config"
	"autoservice-backend/controllers"
	"autoservice-backend/database"
	"autoservice-backend/jobs"
	"autoservice-backend/middlewares"
	"autoservice-backend/models"
	"autoservice-backend/routes"
	"autoservice-backend/telemetry"
	"autoservice-backend/tickets"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	// ---- Logging
	var log *zap.Logger
	var err error
	if cfg.Development() {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	middlewares.SetLogger(log)

	shutdownTracing := telemetry.Setup("autoservice-backend", log)

	// ---- Database
	if err := database.Connect(cfg.DBDriver, cfg.DBDSN); err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(database.DB); err != nil {
		log.Fatal("database migrate failed", zap.Error(err))
	}

	// ---- Ticket storage
	uploadDir, err := filepath.Abs(cfg.UploadDir)
	if err != nil {
		log.Fatal("invalid upload dir", zap.String("dir", cfg.UploadDir), zap.Error(err))
	}
	store, err := tickets.NewStore(uploadDir)
	if err != nil {
		log.Fatal("ticket storage unavailable", zap.Error(err))
	}

	// ---- Auth
	if cfg.AuthPassword == "" {
		log.Warn("AUTH_PASSWORD is empty, login is disabled until it is set")
	}
	operator, err := models.NewOperator(cfg.AuthLogin, cfg.AuthPassword)
	if err != nil {
		log.Fatal("operator setup failed", zap.Error(err))
	}
	middlewares.ConfigureAuth(cfg.JWTSecret)

	controllers.Configure(store, operator, log)
	controllers.SetTicketRenderer(tickets.Renderer{ShopName: cfg.ShopName, FontPath: cfg.TicketFontPath})

	// ---- Fiber app with global error handler, body limit, CORS and rate limiter
	app := routes.NewApp(routes.AppOptions{
		BodyLimit:       cfg.BodyLimitBytes,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	// ---- Housekeeping
	scheduler, err := jobs.Start(jobs.Cleaner{
		DB:             database.DB,
		Tickets:        store,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Log:            log.Named("jobs"),
	}, cfg.CleanupAt, time.Local)
	if err != nil {
		log.Fatal("cleanup schedule failed", zap.String("at", cfg.CleanupAt), zap.Error(err))
	}

	// ---- Start
	go func() {
		log.Info("API server starting", zap.String("port", cfg.Port), zap.String("db", cfg.DBDriver))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	scheduler.Stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}
}
