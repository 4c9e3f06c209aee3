package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"myhotel/utils"

	"github.com/joho/godotenv"
)

type DBConfig struct {
	Driver       string
	DSN          string
	Name         string
	SQLitePath   string
	LogLevel     string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PaystackConfig struct {
	SecretKey string
	BaseURL   string
}

type AdminConfig struct {
	Username string
	Password string
	FullName string
}

type Config struct {
	Port             string
	DB               DBConfig
	Redis            RedisConfig
	Paystack         PaystackConfig
	Admin            AdminConfig
	AuthTokenTTL     time.Duration
	PaymentIntentTTL time.Duration
	CORSOrigins      []string
	LogLevel         string
	LogFormat        string
	ServiceName      string
	Seed             bool
}

// LoadEnvFile loads path into the process environment. A missing file is not
// an error; variables already set win.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port: utils.EnvOrDefault("PORT", "8080"),
		DB: DBConfig{
			Driver:       strings.ToLower(utils.EnvOrDefault("DB_DRIVER", "mysql")),
			SQLitePath:   utils.EnvOrDefault("SQLITE_PATH", "hotel.db"),
			LogLevel:     utils.EnvOrDefault("GORM_LOG_LEVEL", "warn"),
			MaxOpenConns: utils.EnvIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: utils.EnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     utils.EnvOrDefault("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       utils.EnvIntOrDefault("REDIS_DB", 0),
		},
		Paystack: PaystackConfig{
			SecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
			BaseURL:   utils.EnvOrDefault("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		},
		Admin: AdminConfig{
			Username: utils.EnvOrDefault("ADMIN_USERNAME", "admin@hotel.local"),
			Password: utils.EnvOrDefault("ADMIN_PASSWORD", "admin123"),
			FullName: utils.EnvOrDefault("ADMIN_FULL_NAME", "Admin User"),
		},
		AuthTokenTTL:     utils.EnvDurationOrDefault("AUTH_TOKEN_TTL", 12*time.Hour),
		PaymentIntentTTL: utils.EnvDurationOrDefault("PAYMENT_INTENT_TTL", time.Hour),
		CORSOrigins:      ParseCorsOrigins(os.Getenv("CORS_ORIGINS")),
		LogLevel:         utils.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        utils.EnvOrDefault("LOG_FORMAT", "json"),
		ServiceName:      utils.EnvOrDefault("SERVICE_NAME", "myhotel"),
		Seed:             utils.EnvBoolOrDefault("SEED_ON_START", true),
	}

	dsn, name, err := resolveDSN(cfg.DB.Driver, cfg.DB.SQLitePath)
	if err != nil {
		return cfg, err
	}
	cfg.DB.DSN, cfg.DB.Name = dsn, name
	return cfg, nil
}

func ParseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
