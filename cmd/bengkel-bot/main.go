package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bengkel-bot/internal/api"
	"bengkel-bot/internal/api/handlers"
	"bengkel-bot/internal/corpus"
	"bengkel-bot/internal/pricing"
	"bengkel-bot/internal/repository"
	"bengkel-bot/internal/service"
	"bengkel-bot/internal/session"
	"bengkel-bot/internal/worker"
	"bengkel-bot/pkg/auth"
	"bengkel-bot/pkg/config"
	"bengkel-bot/pkg/logger"
	"bengkel-bot/pkg/metrics"
	"bengkel-bot/pkg/postgres"
	"bengkel-bot/pkg/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting bengkel bot")

	ctx := context.Background()
	m := metrics.New(prometheus.DefaultRegisterer)

	// The database is optional: without it the corpora come from documents
	// and booking is reported as unavailable.
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Warn("Database unavailable, continuing without it", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	var (
		knowledgeSource corpus.KnowledgeSource
		priceSource     corpus.PriceSource
		jobCardStore    service.JobCardStore
		interactionRepo *repository.InteractionRepository
	)
	if db != nil {
		knowledgeSource = repository.NewKnowledgeRepository(db, appLogger)
		priceSource = repository.NewPriceRepository(db, appLogger)
		jobCardStore = repository.NewJobCardRepository(db, appLogger)
		interactionRepo = repository.NewInteractionRepository(db, appLogger)
	}

	corpusStore := corpus.NewStore(knowledgeSource, priceSource, cfg.Corpus.DocumentDir, cfg.Corpus.PriceDocument, appLogger)
	corpora := corpusStore.LoadAll(ctx)
	priceTable := pricing.NewTable(corpusStore.LoadPrices(ctx), appLogger)
	appLogger.Info("Price table loaded", zap.Int("placeholders", priceTable.Len()))

	extractor, closeExtractor, err := newExtractor(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize answer extractor", zap.Error(err))
	}
	defer closeExtractor()

	interactionLog, err := newInteractionLog(cfg, interactionRepo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open interaction logs", zap.Error(err))
	}
	defer interactionLog.Close()

	qaService := service.NewQAService(corpora, extractor, pricing.NewRenderer(priceTable), interactionLog, m,
		service.QAConfig{Threshold: cfg.Retrieval.Threshold, Timeout: cfg.Extractor.Timeout}, appLogger)

	sessions, closeSessions, err := newSessionStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize session store", zap.Error(err))
	}
	defer closeSessions()

	bookingService := service.NewBookingService(jobCardStore,
		service.BookingConfig{DailyCapacity: cfg.Booking.DailyCapacity, HorizonDays: cfg.Booking.HorizonDays}, m, appLogger)
	chatService := service.NewChatService(sessions, qaService, bookingService, cfg.Telegram.OperatorChatID, m, appLogger)

	if cfg.Telegram.Token == "" {
		appLogger.Warn("TELEGRAM_TOKEN is empty, outbound messages will fail")
	}
	if cfg.Telegram.WebhookSecret == "" {
		if cfg.Telegram.AllowUnsignedWebhook {
			appLogger.Warn("TELEGRAM_WEBHOOK_SECRET is empty, webhook accepts unsigned updates")
		} else {
			appLogger.Warn("TELEGRAM_WEBHOOK_SECRET is empty, webhook updates will be refused")
		}
	}
	botClient := telegram.NewClient(cfg.Telegram.Token)
	dispatcher := worker.NewDispatcher(chatService, botClient, cfg.Worker.Concurrency, 0, appLogger)
	dispatcherDone := make(chan error, 1)
	go func() {
		dispatcherDone <- dispatcher.Run(ctx)
	}()

	jwtManager := auth.NewJWTManager(cfg.Operator.JWTSecret, cfg.Operator.TokenTTL)
	authService := service.NewAuthService(cfg.Operator.Username, cfg.Operator.PasswordHash, jwtManager, appLogger)

	app := api.SetupRouter(api.Handlers{
		Auth:     handlers.NewAuthHandler(authService, appLogger),
		Message:  handlers.NewMessageHandler(chatService, dispatcher, cfg.Telegram.WebhookSecret, cfg.Telegram.AllowUnsignedWebhook, appLogger),
		JobCards: handlers.NewJobCardHandler(bookingService, appLogger),
	}, jwtManager, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
	dispatcher.Close()
	if err := <-dispatcherDone; err != nil {
		appLogger.Error("Dispatcher stopped with error", zap.Error(err))
	}
	appLogger.Info("Shutdown complete")
}

func newExtractor(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.Extractor, func(), error) {
	switch cfg.Extractor.Provider {
	case "gigachat":
		e, err := service.NewGigaChatExtractor(ctx, &cfg.GigaChat, log)
		if err != nil {
			return nil, nil, err
		}
		return e, func() {
			if err := e.Close(); err != nil {
				log.Warn("Failed to close GigaChat client", zap.Error(err))
			}
		}, nil
	case "http", "":
		log.Info("Using HTTP answer extractor", zap.String("url", cfg.Extractor.URL))
		return service.NewHTTPExtractor(cfg.Extractor.URL, &http.Client{Timeout: cfg.Extractor.Timeout}), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown extractor provider %q", cfg.Extractor.Provider)
	}
}

func newInteractionLog(cfg *config.Config, repo *repository.InteractionRepository, log *zap.Logger) (*service.InteractionLog, error) {
	if repo == nil {
		return service.NewInteractionLog(cfg.Logger.InteractionDir, nil, log)
	}
	return service.NewInteractionLog(cfg.Logger.InteractionDir, repo, log)
}

func newSessionStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		log.Info("Using Redis session store", zap.String("addr", cfg.Redis.Addr))
		return session.NewRedisStore(client, cfg.Session.TTL), func() { _ = client.Close() }, nil
	case "memory", "":
		return session.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
