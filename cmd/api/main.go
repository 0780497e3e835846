package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/scoreplay/promo-backend/api/routes"
	"github.com/scoreplay/promo-backend/internal/config"
	"github.com/scoreplay/promo-backend/internal/handlers"
	"github.com/scoreplay/promo-backend/internal/repositories"
	mongorepo "github.com/scoreplay/promo-backend/internal/repositories/mongodb"
	"github.com/scoreplay/promo-backend/internal/services"
	"github.com/scoreplay/promo-backend/pkg/mongodb"
	"golang.org/x/exp/slog"
)

func main() {
	// A missing .env file is fine in production, environment variables
	// take over.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogger(cfg.LogLevel)

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := mongorepo.EnsureIndexes(indexCtx, db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	var tierRepo repositories.TierRepository = mongorepo.NewTierRepository(db)
	var entryRepo repositories.EntryRepository = mongorepo.NewEntryRepository(db)
	var winnerRepo repositories.WinnerRepository = mongorepo.NewWinnerRepository(db)
	var drawRepo repositories.DrawRepository = mongorepo.NewDrawRepository(db)
	var auditRepo repositories.AuditRepository = mongorepo.NewAuditRepository(db)
	var adminRepo repositories.AdminUserRepository = mongorepo.NewAdminUserRepository(db)

	auditService := services.NewAuditService(auditRepo)
	tierService := services.NewTierService(tierRepo, entryRepo, winnerRepo, auditService, mongoClient)
	entryService := services.NewEntryService(entryRepo, tierRepo, auditService)
	drawService := services.NewDrawService(tierRepo, entryRepo, winnerRepo, drawRepo, auditService, mongoClient)
	claimService := services.NewClaimService(winnerRepo, auditService)
	authService := services.NewAuthService(adminRepo, cfg)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelBoot()
	if err := authService.Bootstrap(bootCtx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	router := routes.SetupRouter(routes.HandlerDependencies{
		Config:       cfg,
		AuthHandler:  handlers.NewAuthHandler(authService),
		TierHandler:  handlers.NewTierHandler(tierService),
		EntryHandler: handlers.NewEntryHandler(entryService),
		DrawHandler:  handlers.NewDrawHandler(drawService),
		ClaimHandler: handlers.NewClaimHandler(claimService),
		AuditHandler: handlers.NewAuditHandler(auditService),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	slog.Info("server exited")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}
