package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"jan-server/services/chat-api/internal/config"
	"jan-server/services/chat-api/internal/domain/chat"
	"jan-server/services/chat-api/internal/infrastructure/auth"
	"jan-server/services/chat-api/internal/infrastructure/database"
	"jan-server/services/chat-api/internal/infrastructure/logger"
	"jan-server/services/chat-api/internal/infrastructure/observability"
	"jan-server/services/chat-api/internal/infrastructure/repository/conversationrepo"
	"jan-server/services/chat-api/internal/infrastructure/repository/indexrepo"
	"jan-server/services/chat-api/internal/infrastructure/storage"
	"jan-server/services/chat-api/internal/interfaces/httpserver"
)

const (
	jwksRefreshInterval = 5 * time.Minute
	jwtClockSkew        = 30 * time.Second
)

// @title Chat API
// @version 1.0
// @description Conversation history service for the assistant frontend
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	client, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("disconnect database")
		}
	}()

	db := client.Database(cfg.MongoDatabase)
	if err := database.EnsureIndexes(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("ensure database indexes")
	}

	uploadStorage, err := storage.NewS3Storage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize upload storage")
	}

	var authValidator *auth.Validator
	if cfg.AuthEnabled {
		authValidator, err = auth.NewValidator(ctx, cfg.AuthJWKSURL, cfg.AuthIssuer, cfg.AuthAudience, jwksRefreshInterval, jwtClockSkew, log)
		if err != nil {
			log.Fatal().Err(err).Msg("initialize auth validator")
		}
	} else {
		log.Warn().Msg("AUTH_ENABLED is false; all requests will be rejected as unauthenticated")
	}

	chatService := chat.NewService(
		conversationrepo.NewRepository(db),
		indexrepo.NewRepository(db),
		log,
	)

	httpServer := httpserver.New(cfg, log, chatService, uploadStorage, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
