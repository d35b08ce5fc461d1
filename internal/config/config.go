package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"liqwatch/pkg/utils"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Venue    VenueConfig
	Telegram TelegramConfig
	Monitor  MonitorConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port int
	Host string
}

// StoreConfig - настройки персистентного состояния гейта.
//
// Backend выбирает реализацию: "memory" (по умолчанию, состояние
// теряется при рестарте), "redis" или "postgres".
type StoreConfig struct {
	Backend  string
	Redis    RedisConfig
	Database DatabaseConfig
}

// RedisConfig - настройки подключения к Redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig - настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// VenueConfig - настройки клиента биржи
type VenueConfig struct {
	BaseURL string
}

// TelegramConfig - настройки доставки алертов в Telegram.
// Пустой токен или chat ID отключают доставку (журнал и WebSocket
// продолжают работать).
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// MonitorConfig - настройки цикла мониторинга
type MonitorConfig struct {
	Addresses    []string      // наблюдаемые EVM-адреса
	GatePolicy   string        // "period" или "cooldown"
	EvalInterval time.Duration // период цикла оценки
	Cooldown     time.Duration // пауза cooldown-гейта между повторами тира
	PurgeExpired bool          // чистить просроченные записи стора в цикле
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "memory"),
			Redis: RedisConfig{
				Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvAsInt("REDIS_DB", 0),
			},
			Database: DatabaseConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnvAsInt("DB_PORT", 5432),
				Name:     getEnv("DB_NAME", "liqwatch"),
				User:     getEnv("DB_USER", "liqwatch"),
				Password: getEnv("DB_PASSWORD", ""),
				SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			},
		},
		Venue: VenueConfig{
			BaseURL: getEnv("HYPERLIQUID_API_URL", ""),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
		Monitor: MonitorConfig{
			Addresses:    getEnvAsList("WATCH_ADDRESSES"),
			GatePolicy:   getEnv("GATE_POLICY", "period"),
			EvalInterval: getEnvAsDuration("EVAL_INTERVAL", 1*time.Minute),
			Cooldown:     getEnvAsDuration("ALERT_COOLDOWN", 30*time.Minute),
			PurgeExpired: getEnvAsBool("PURGE_EXPIRED", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate проверяет обязательные параметры и диапазоны
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Store.Backend {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("STORE_BACKEND must be one of memory, redis, postgres; got %q", c.Store.Backend)
	}

	if c.Store.Backend == "postgres" {
		if c.Store.Database.Port < 1 || c.Store.Database.Port > 65535 {
			return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Store.Database.Port)
		}
	}

	if len(c.Monitor.Addresses) == 0 {
		return fmt.Errorf("WATCH_ADDRESSES is required: comma-separated list of EVM addresses")
	}
	if err := utils.ValidateAddressList(c.Monitor.Addresses); err != nil {
		return fmt.Errorf("WATCH_ADDRESSES: %w", err)
	}

	switch c.Monitor.GatePolicy {
	case "period", "cooldown":
	default:
		return fmt.Errorf("GATE_POLICY must be \"period\" or \"cooldown\", got %q", c.Monitor.GatePolicy)
	}

	if c.Monitor.EvalInterval <= 0 {
		return fmt.Errorf("EVAL_INTERVAL must be positive, got %v", c.Monitor.EvalInterval)
	}
	if c.Monitor.Cooldown <= 0 {
		return fmt.Errorf("ALERT_COOLDOWN must be positive, got %v", c.Monitor.Cooldown)
	}

	// Токен без chat ID (и наоборот) - почти наверняка ошибка конфигурации
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList парсит значение как список через запятую,
// отбрасывая пустые элементы
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
