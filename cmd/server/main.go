package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"liqwatch/internal/api"
	"liqwatch/internal/config"
	"liqwatch/internal/hyperliquid"
	"liqwatch/internal/monitor"
	"liqwatch/internal/notifier"
	"liqwatch/internal/service"
	"liqwatch/internal/store"
	"liqwatch/internal/websocket"
	"liqwatch/pkg/utils"
)

func main() {
	// .env опционален: в контейнере конфигурация приходит окружением
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.InitLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer logger.Sync()
	zap.ReplaceGlobals(logger.Logger)

	// Нормализация адресов: дальше по коду адреса сравниваются как есть
	addresses := make([]string, 0, len(cfg.Monitor.Addresses))
	for _, addr := range cfg.Monitor.Addresses {
		addresses = append(addresses, utils.NormalizeAddress(addr))
	}

	// Персистентное состояние гейта
	stateStore, purger, cleanup, err := initStore(cfg, logger.Logger)
	if err != nil {
		logger.Fatal("failed to init state store", zap.Error(err))
	}
	defer cleanup()
	logger.Info("state store ready", zap.String("backend", cfg.Store.Backend))

	// Клиент биржи
	venue := hyperliquid.NewClient(hyperliquid.ClientOptions{
		BaseURL: cfg.Venue.BaseURL,
		Logger:  logger.Logger,
	})

	// Гейт алертов
	var gate monitor.GatePolicy
	switch cfg.Monitor.GatePolicy {
	case "cooldown":
		gate = monitor.NewCooldownGate(stateStore, cfg.Monitor.Cooldown, logger.Logger)
	default:
		gate = monitor.NewPeriodGate(stateStore, logger.Logger)
	}
	logger.Info("alert gate configured", zap.String("policy", gate.Name()))

	// Доставка алертов
	telegram := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if !telegram.Enabled() {
		logger.Warn("telegram delivery disabled: no credentials, alerts go to journal and websocket only")
	}
	alertService := service.NewAlertService(telegram, logger.Logger)

	// WebSocket hub
	hub := websocket.NewHub(logger.Logger)
	go hub.Run()
	alertService.SetWebSocketHub(hub)

	// Движок оценки
	engine := monitor.NewEngine(monitor.EngineOptions{
		Client:    venue,
		Gate:      gate,
		Sink:      alertService,
		Hub:       hub,
		Purger:    purger,
		Logger:    logger.Logger,
		Interval:  cfg.Monitor.EvalInterval,
		Addresses: addresses,
	})

	engineCtx, engineCancel := context.WithCancel(context.Background())
	go engine.Run(engineCtx)

	// HTTP сервер
	router := api.SetupRoutes(api.Dependencies{
		Engine:       engine,
		AlertService: alertService,
		Hub:          hub,
		Logger:       logger.Logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	engineCancel()
	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// initStore создает state store по выбранному backend.
//
// Возвращает стор, опциональный Purger (только postgres) и функцию
// закрытия соединений.
func initStore(cfg *config.Config, logger *zap.Logger) (store.StateStore, monitor.Purger, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})

		s := store.NewRedisStore(client)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, noop, fmt.Errorf("redis ping failed: %w", err)
		}
		return s, nil, func() { client.Close() }, nil

	case "postgres":
		db, err := initDatabase(cfg)
		if err != nil {
			return nil, nil, noop, err
		}

		s := store.NewPostgresStore(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.InitSchema(ctx); err != nil {
			db.Close()
			return nil, nil, noop, fmt.Errorf("failed to init schema: %w", err)
		}
		return s, s, func() { db.Close() }, nil

	default:
		logger.Warn("using in-memory state store: gate state is lost on restart")
		return store.NewMemoryStore(), nil, noop, nil
	}
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Store.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Пул маленький: стор трогают только гейт и фоновая чистка
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
