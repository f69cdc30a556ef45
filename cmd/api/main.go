package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/banjirlab/relief-assistant/internal/adapters/cache"
	"github.com/banjirlab/relief-assistant/internal/adapters/events"
	"github.com/banjirlab/relief-assistant/internal/adapters/providers/answer"
	"github.com/banjirlab/relief-assistant/internal/adapters/search"
	"github.com/banjirlab/relief-assistant/internal/adapters/storage"
	"github.com/banjirlab/relief-assistant/internal/api/handlers"
	"github.com/banjirlab/relief-assistant/internal/api/middleware"
	"github.com/banjirlab/relief-assistant/internal/api/routes"
	"github.com/banjirlab/relief-assistant/internal/application/services"
	"github.com/banjirlab/relief-assistant/internal/domain/providers"
	"github.com/banjirlab/relief-assistant/internal/domain/repositories"
	"github.com/banjirlab/relief-assistant/internal/infrastructure/clients/redis"
	"github.com/banjirlab/relief-assistant/internal/infrastructure/clients/typesense"
	"github.com/banjirlab/relief-assistant/internal/infrastructure/notifications"
	"github.com/banjirlab/relief-assistant/internal/infrastructure/observability"
	"github.com/banjirlab/relief-assistant/pkg/config"
	"github.com/banjirlab/relief-assistant/pkg/secrets"
)

func main() {
	// Load .env if present; deployments set real environment variables.
	_ = godotenv.Load()

	// Hydrate API keys from Vault before configuration reads the environment
	vaultResult, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv(""))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load secrets from Vault")
	} else if vaultResult.Enabled {
		log.Info().Int("loaded", vaultResult.Loaded).Int("skipped", vaultResult.Skipped).Msg("Vault secrets applied")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize structured logging
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	log.Info().
		Str("service", cfg.OTEL.ServiceName).
		Str("version", cfg.OTEL.ServiceVersion).
		Str("env", cfg.Server.Env).
		Msg("Starting flood relief assistant API")

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize Redis. The assistant runs without it: response caching is
	// disabled and status events stay in-process.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Continuing without Redis; events stay in-process")
		eventBus = events.NewLocalEventBus()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("Redis client initialized successfully")
	}

	// Initialize Typesense if configured. Without it retrieval falls back to
	// in-memory keyword matching.
	var docIndex repositories.DocumentIndex
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Continuing without Typesense; retrieval uses keyword matching")
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.EnsureCollection(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to ensure Typesense collection")
			}
			docIndex = adapter
			log.Info().Msg("Typesense client initialized successfully")
		}
	}

	// Pick the answer provider
	var answerer providers.AnswerProvider
	openaiEnabled := false
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; answers quote retrieved text directly")
		answerer = answer.NewTemplateResponder()
	} else {
		responder, err := answer.NewOpenAIResponder(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize OpenAI responder; falling back to template answers")
			answerer = answer.NewTemplateResponder()
		} else {
			answerer = responder
			openaiEnabled = true
		}
	}

	// Load evacuation centers
	centers, err := storage.NewFileCenterSource(cfg.Data.CentersFile).Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Data.CentersFile).Msg("Failed to load evacuation centers")
	}
	log.Info().Int("centers", len(centers)).Msg("Evacuation centers loaded")

	// Load the bilingual knowledge corpus
	docs := storage.LoadCorpus(storage.CorpusPaths{
		EnglishParquet: cfg.Data.EnglishCorpus,
		MalayParquet:   cfg.Data.MalayCorpus,
		CSV:            cfg.Data.CSVCorpus,
		ProcessedDir:   cfg.Data.ProcessedDir,
	})

	// Load the bilingual synonym table for keyword retrieval
	var termService *services.TermExpansionService
	if cfg.Data.TermsFile != "" {
		ts, err := services.NewTermExpansionService(cfg.Data.TermsFile)
		if err != nil {
			log.Warn().Err(err).Str("file", cfg.Data.TermsFile).Msg("Continuing without term expansion")
		} else {
			termService = ts
			log.Info().Int("terms", ts.Count()).Msg("Term expansion table loaded")
		}
	}

	// Initialize services
	reportLog := storage.NewFileReportLog(cfg.Data.ReportsFile)
	consensusService := services.NewConsensusService(
		reportLog,
		eventBus,
		cfg.Consensus.ReportTimeoutSec,
		cfg.Consensus.CriticalThreshold,
	)
	consensusService.Rebuild(ctx)

	recommendationService := services.NewRecommendationService(
		centers,
		services.NewNeedExtractor(),
		services.NewCapabilityMatcher(),
		consensusService,
	)
	retrievalService := services.NewRetrievalService(docs, docIndex, termService)
	reportService := services.NewReportService(reportLog, consensusService)
	ingestionService := services.NewIngestionService(cfg.Data.ProcessedDir, retrievalService, docIndex)

	// Page duty staff over WhatsApp when a center turns critical
	if len(cfg.Alerts.Recipients) > 0 {
		sender, err := notifications.NewWhatsAppCloudSender()
		if err != nil {
			log.Warn().Err(err).Msg("Continuing without WhatsApp alerts")
		} else {
			alertService := services.NewAlertService(sender, eventBus, cfg.Alerts.Recipients)
			if err := alertService.Start(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to start critical-status alerts")
			} else {
				log.Info().Int("recipients", len(cfg.Alerts.Recipients)).Msg("Critical-status alerts enabled")
			}
		}
	}

	// Schedule periodic consensus refresh so report expiry becomes visible
	// even without incoming traffic
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Consensus.RefreshCron, func() {
		consensusService.Rebuild(context.Background())
	}); err != nil {
		log.Warn().Err(err).Str("schedule", cfg.Consensus.RefreshCron).Msg("Failed to schedule consensus refresh")
	} else {
		scheduler.Start()
		log.Info().Str("schedule", cfg.Consensus.RefreshCron).Msg("Consensus refresh scheduled")
	}

	// Initialize handlers
	queryHandler := handlers.NewQueryHandler(retrievalService, answerer, recommendationService)
	reportHandler := handlers.NewReportHandler(
		reportService,
		cacheProvider,
		cfg.Reports.RateLimitPerHour,
		time.Duration(cfg.Reports.DedupWindowSec)*time.Second,
	)
	centerHandler := handlers.NewCenterHandler(recommendationService, consensusService)
	uploadHandler := handlers.NewUploadHandler(ingestionService, cfg.Data.UploadDir)
	sseHandler := handlers.NewSSEHandler(eventBus)
	healthHandler := handlers.NewHealthHandler(recommendationService, retrievalService, sseHandler, handlers.HealthDependencies{
		Redis:     redisClient != nil,
		Typesense: docIndex != nil,
		OpenAI:    openaiEnabled,
	})

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
		log.Info().Msg("Cache middleware initialized successfully")
	}

	// Set up router
	router := routes.NewRouter(
		queryHandler,
		reportHandler,
		centerHandler,
		uploadHandler,
		sseHandler,
		healthHandler,
		cacheMiddleware,
		metrics,
		cfg.CORS.AllowedOrigins,
	)
	httpHandler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // no write timeout, the status stream stays open
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("address", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	// Stop the refresh scheduler
	scheduler.Stop()

	// Close event bus
	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Server stopped")
}
