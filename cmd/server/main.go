package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/clienttracker/crm-system/internal/api"
	"github.com/clienttracker/crm-system/internal/infrastructure/config"
	mongodb "github.com/clienttracker/crm-system/internal/infrastructure/db/mongo"
	redisdb "github.com/clienttracker/crm-system/internal/infrastructure/db/redis"
	"github.com/clienttracker/crm-system/internal/infrastructure/notify"
	"github.com/clienttracker/crm-system/internal/infrastructure/storage"
	"github.com/clienttracker/crm-system/internal/infrastructure/workspace"
	"github.com/clienttracker/crm-system/pkg/logger"
)

// @title        ClientTracker CRM API
// @version      1.0
// @description  Role-gated client lifecycle management for business development teams.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Attachment object store ---
	files, err := storage.NewObjectStore(storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("object store initialisation failed")
	}
	if err := files.EnsureBucket(ctx); err != nil {
		log.Fatal().Err(err).Msg("attachment bucket check failed")
	}

	// --- Workspace client ---
	google := workspace.NewGoogleClient(log)

	// --- Notification dispatcher ---
	var sender notify.Sender = notify.NewWebhookSender(cfg.Notify.WebhookURL)
	if cfg.Notify.ChatSpace != "" {
		sender = notify.NewChatSender(google, cfg.Notify.ChatCredentials, cfg.Notify.ChatSpace)
	}
	dispatcher := notify.NewDispatcher(cfg.Notify.Workers, sender, log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.Dependencies{
		Mongo:     db,
		Redis:     rdb,
		Notifier:  dispatcher,
		Files:     files,
		Workspace: google,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.JWTTTL,
		Logger:    log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
