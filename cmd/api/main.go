package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-market-api/internal/config"
	"github.com/campus-market-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/campus-market-api/internal/infrastructure/jwt"
	"github.com/campus-market-api/internal/infrastructure/mail"
	s3infra "github.com/campus-market-api/internal/infrastructure/s3"
	transporthttp "github.com/campus-market-api/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("no .env file found, reading from environment")
	}

	cfg := config.Load()
	if !cfg.IsProduction() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables, logger)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("jwt provider")
	}

	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg)

	mailer := mail.NewMailer(cfg)

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OTPRepo:     dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.EmailOTPs),
		ItemRepo:    dynamo.NewItemRepo(dynamoClient, cfg.DynamoTables.Items),
		S3Store:     s3Store,
		Mailer:      mailer,
		JWTProvider: jwtProvider,
		Logger:      logger,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server stopped")
}
