package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"barberbot/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Bot        BotConfig        `yaml:"bot"`
	Exports    ExportConfig     `yaml:"exports"`
	Admins     []int64          `yaml:"admins"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type DatabaseConfig struct {
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type BotConfig struct {
	// За сколько часов до визита отправлять напоминание
	ReminderHours int `yaml:"reminder_hours"`
	// Смещение часового пояса салона в минутах относительно UTC
	TzOffsetMinutes   int  `yaml:"tz_offset_minutes"`
	RateLimitMessages int  `yaml:"rate_limit_messages"`
	RateLimitWindow   int  `yaml:"rate_limit_window"`
	SeedSlots         bool `yaml:"seed_slots"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен, боевое окружение задаёт переменные напрямую
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.mergeAdminsFromEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// mergeAdminsFromEnv дополняет список админов из ADMIN_IDS (через
// запятую) и ADMIN_ID, отбрасывая дубликаты и мусор.
func (c *Config) mergeAdminsFromEnv() {
	raw := os.Getenv("ADMIN_IDS")
	if single := os.Getenv("ADMIN_ID"); single != "" {
		if raw != "" {
			raw += ","
		}
		raw += single
	}

	seen := make(map[int64]bool, len(c.Admins))
	for _, id := range c.Admins {
		seen[id] = true
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		c.Admins = append(c.Admins, id)
	}
}

func (c *Config) applyDefaults() {
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Database.Postgres.Host != "" {
		if c.Database.Postgres.Port == 0 {
			c.Database.Postgres.Port = 5432
		}
		if c.Database.Postgres.SSLMode == "" {
			c.Database.Postgres.SSLMode = "disable"
		}
	}

	if c.Bot.ReminderHours == 0 {
		c.Bot.ReminderHours = models.DefaultReminderHours
	}
	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = models.RateLimitMessages
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = models.RateLimitWindow
	}
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}

	if c.Database.Path == "" && c.Database.Postgres.Host == "" {
		return errors.New("database path or postgres host is required")
	}

	if len(c.Admins) == 0 {
		return errors.New("at least one admin id is required")
	}

	return nil
}

// IsAdmin проверяет, входит ли пользователь в список админов.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

// Timezone возвращает часовой пояс салона из смещения в минутах.
// Нулевое смещение означает UTC, а не локальную зону сервера.
func (c *Config) Timezone() *time.Location {
	return time.FixedZone("salon", c.Bot.TzOffsetMinutes*60)
}
