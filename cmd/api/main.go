package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pageza/snapcook/backend/config"
	"github.com/pageza/snapcook/backend/internal/api"
	"github.com/pageza/snapcook/backend/internal/database"
	"github.com/pageza/snapcook/backend/internal/middleware"
	"github.com/pageza/snapcook/backend/internal/server"
	"github.com/pageza/snapcook/backend/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	log.Logger = logger

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if config.IsDevelopment() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx := logger.WithContext(context.Background())

	// closers run in reverse order of acquisition.
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	db, err := database.New(cfg)
	if err != nil {
		if errors.Is(err, database.ErrNotConfigured) {
			return errors.New("the recipe index needs PostgreSQL: set DATABASE_URL or DB_HOST")
		}
		return err
	}
	closers = append(closers, func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing database")
		}
	})
	if err := database.RunMigrations(db.DB); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	var redisClient *redis.Client
	if cfg.HasRedis() {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			return err
		}
		closers = append(closers, func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn().Err(err).Msg("closing redis")
			}
		})
	}

	openAI, err := service.NewOpenAIClient(service.OpenAIConfig{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.ChatModel,
		VisionModel:    cfg.VisionModel,
		EmbeddingModel: cfg.EmbeddingModel,
		Temperature:    cfg.Temperature,
	})
	if err != nil {
		return err
	}

	chat, vision, err := buildModels(ctx, cfg, openAI)
	if err != nil {
		return err
	}

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		return err
	}

	var threads service.ThreadStore
	var limiter *middleware.RateLimiter
	if redisClient != nil {
		threads = service.NewRedisThreadStore(redisClient, cfg.ThreadHistoryLimit, cfg.ThreadTTL)
		if cfg.AnalyzeRateLimit > 0 {
			limiter = middleware.NewAnalyzeRateLimiter(redisClient, cfg.AnalyzeRateLimit)
		}
	} else {
		logger.Warn().Msg("REDIS not configured, conversations are kept in memory")
		threads = service.NewMemoryThreadStore(cfg.ThreadHistoryLimit, cfg.ThreadTTL)
	}

	recipes := service.NewPGVectorStore(db.DB, openAI)
	retriever := service.NewRecipeRetriever(recipes)

	srv := server.New(cfg, logger, &api.Handlers{
		Analysis:     service.NewAnalysisService(vision, retriever, archive, cfg.RecipeTopN),
		Conversation: service.NewOrchestrator(chat, recipes, threads),
		Checks: map[string]api.HealthChecker{
			"database":     api.HealthCheckFunc(db.HealthCheck),
			"thread_store": threads,
		},
		RateLimiter: limiter,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildModels picks the chat and vision backends named in the config.
// Embeddings always come from OpenAI so the stored vectors stay comparable.
func buildModels(ctx context.Context, cfg *config.Config, openAI *service.OpenAIClient) (service.ChatModel, service.VisionClassifier, error) {
	var gemini *service.GeminiClient
	if cfg.LLMProvider == config.ProviderGemini || cfg.VisionProvider == config.ProviderGemini {
		var err error
		gemini, err = service.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Temperature)
		if err != nil {
			return nil, nil, err
		}
	}

	var chat service.ChatModel = openAI
	if cfg.LLMProvider == config.ProviderGemini {
		chat = gemini
	}

	var vision service.VisionClassifier
	switch cfg.VisionProvider {
	case config.ProviderGemini:
		vision = gemini
	case config.ProviderRekognition:
		awsCfg, err := config.LoadAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, fmt.Errorf("aws config: %w", err)
		}
		vision = service.NewRekognitionClassifier(awsCfg)
	default:
		vision = openAI
	}
	return chat, vision, nil
}

func buildArchive(ctx context.Context, cfg *config.Config) (service.ImageArchive, error) {
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}
	if s3Config != nil {
		return service.NewS3Archive(s3Config), nil
	}
	return service.NewDiskArchive(cfg.UploadDir)
}
