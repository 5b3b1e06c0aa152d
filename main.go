package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raushankrgupta/fragrance-collection/api"
	"github.com/raushankrgupta/fragrance-collection/config"
	"github.com/raushankrgupta/fragrance-collection/repository"
	"github.com/raushankrgupta/fragrance-collection/service"
	"github.com/raushankrgupta/fragrance-collection/utils"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.LoadConfig()
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize MongoDB
	client, err := utils.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := utils.DisconnectMongo(client); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()
	db := client.Database(cfg.DBName)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	logger.Info().Str("database", cfg.DBName).Msg("connected to MongoDB")

	store, err := utils.NewS3Store(ctx, cfg.AWSRegion, cfg.AWSBucketName)
	if err != nil {
		return err
	}

	var tagger service.ImageTagger
	var assistant *service.AssistantService
	if cfg.TaggingEnabled() || cfg.ChatEnabled() {
		gemini, err := utils.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		defer gemini.Close()
		if cfg.TaggingEnabled() {
			tagger = gemini
		}
		if cfg.ChatEnabled() {
			assistant = service.NewAssistantService(repository.NewChatRepository(db), gemini)
		}
	}

	var mailer service.Mailer
	if cfg.SendGridAPIKey != "" {
		sg, err := utils.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom)
		if err != nil {
			return err
		}
		mailer = sg
	} else {
		logger.Warn().Msg("SENDGRID_API_KEY not set, welcome emails disabled")
	}

	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		return err
	}

	fragrances := repository.NewFragranceRepository(db)
	router := api.NewRouter(api.Deps{
		Auth:          service.NewAuthService(repository.NewUserRepository(db), tokens, mailer, logger),
		Catalog:       service.NewCatalogService(fragrances),
		Collection:    service.NewCollectionService(repository.NewCollectionRepository(db), fragrances),
		Images:        service.NewImageService(fragrances, store, utils.NewDownloader(), tagger, logger),
		Assistant:     assistant,
		Ping:          func(ctx context.Context) error { return client.Ping(ctx, nil) },
		Logger:        logger,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Bool("assistant", assistant != nil).Bool("tagging", tagger != nil).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
