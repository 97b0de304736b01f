package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barberbot/internal/bot"
	"barberbot/internal/config"
	"barberbot/internal/database"
	"barberbot/internal/domain"
	"barberbot/internal/events"
	"barberbot/internal/logging"
	"barberbot/internal/models"
	"barberbot/internal/repository"
	"barberbot/internal/service"
	"barberbot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := initRepository(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	redisClient, stateService := initStateService(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	eventBus := events.NewEventBus()
	subscribeAuditEvents(eventBus, &logger)

	slotService := service.NewSlotService(repo, eventBus, &logger)
	bookingService := service.NewBookingService(repo, eventBus, &logger)
	metrics := bot.NewMetrics()

	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	return startBot(ctx, cfg, repo, stateService, slotService, bookingService, eventBus, metrics, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()
	return cfg, logger, closer, nil
}

// initRepository выбирает хранилище: PostgreSQL, если задан хост,
// иначе SQLite. Стартовые слоты сеются только в пустую базу.
func initRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.Repository, error) {
	if cfg.Database.Postgres.Host != "" {
		pg, err := database.NewPostgresDB(database.PostgresConfig{
			Host:     cfg.Database.Postgres.Host,
			Port:     cfg.Database.Postgres.Port,
			User:     cfg.Database.Postgres.User,
			Password: cfg.Database.Postgres.Password,
			DBName:   cfg.Database.Postgres.DBName,
			SSLMode:  cfg.Database.Postgres.SSLMode,
		}, logger)
		if err != nil {
			logger.Error().Err(err).Msg("Ошибка подключения к PostgreSQL")
			return nil, err
		}
		return pg, nil
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return nil, err
	}

	if cfg.Bot.SeedSlots {
		added, err := db.SeedSlots(ctx, models.SeedDays, models.SeedFromHour, models.SeedToHour)
		if err != nil {
			logger.Error().Err(err).Msg("Ошибка создания стартовых слотов")
		} else if added > 0 {
			logger.Info().Int("slots", added).Msg("Созданы стартовые слоты")
		}
	}
	return db, nil
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	ttl := time.Duration(models.DefaultStateTTL) * time.Second
	primaryRepo := repository.NewRedisStateRepository(redisClient, ttl)
	fallbackRepo := repository.NewMemoryStateRepository(ttl)
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, service.NewStateService(stateRepo, logger)
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		addr := fmt.Sprintf(":%d", port)
		logger.Info().Str("addr", addr).Msg("Metrics server listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	repo domain.Repository,
	stateService *service.StateService,
	slotService *service.SlotService,
	bookingService *service.BookingService,
	eventBus *events.EventBus,
	metrics *bot.Metrics,
	logger *zerolog.Logger,
) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	botWrapper := bot.NewBotWrapper(botAPI)
	tgService := service.NewTelegramService(botWrapper)

	notifier := worker.NewNotifyWorker(tgService, worker.RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2,
	}, logger)
	notifier.Start(ctx)
	defer notifier.Wait()

	telegramBot, err := bot.NewBot(
		tgService, cfg, stateService, slotService,
		bookingService, repo, notifier, eventBus,
		metrics, logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	if err := telegramBot.StartReminderSweep(ctx); err != nil {
		return err
	}

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)
	telegramBot.Stop()

	logger.Info().Msg("Shutdown complete.")
	return nil
}

// subscribeAuditEvents пишет доменные события в журнал.
func subscribeAuditEvents(bus *events.EventBus, logger *zerolog.Logger) {
	audit := func(ev *events.Event) error {
		logger.Info().Str("event", ev.Type).RawJSON("payload", ev.Payload).Msg("event")
		return nil
	}

	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingCancelled,
		events.EventSlotsAdded,
		events.EventSlotDeleted,
		events.EventBroadcastSent,
		events.EventReminderSent,
	} {
		bus.Subscribe(eventType, audit)
	}
}
