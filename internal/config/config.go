package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvProduction is the value of APP_ENV that enables production behavior
// (TLS verification on the database connection, JSON logs by default).
const EnvProduction = "production"

// Config holds all configuration for the application.
type Config struct {
	Env      string
	Server   Server
	Database Database
	Worker   Worker
	Logger   Logger
}

// Server holds the configuration for the web server.
type Server struct {
	Port int
}

// Database holds the configuration for the Postgres connection pool.
type Database struct {
	URL             string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // minutes
}

// Worker holds the configuration for the remote account worker API.
type Worker struct {
	BaseURL        string
	RateLimit      float64 // requests per second
	RateLimitBurst int
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, with an optional .env file
// for local development. A missing DATABASE_URL is the only fatal condition.
func Load() (Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("SERVER_PORT", 3000)
	viper.SetDefault("WORKER_API_URL", "https://tradincode-worker-production.up.railway.app/api")
	viper.SetDefault("WORKER_RATE_LIMIT", 20)      // requests per second
	viper.SetDefault("WORKER_RATE_LIMIT_BURST", 5) // burst size
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	cfg := Config{
		Env: viper.GetString("APP_ENV"),
		Server: Server{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: Database{
			URL:             viper.GetString("DATABASE_URL"),
			SSLMode:         viper.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: viper.GetInt("DB_CONN_MAX_LIFETIME_MINUTES"),
		},
		Worker: Worker{
			BaseURL:        viper.GetString("WORKER_API_URL"),
			RateLimit:      viper.GetFloat64("WORKER_RATE_LIMIT"),
			RateLimitBurst: viper.GetInt("WORKER_RATE_LIMIT_BURST"),
		},
		Logger: Logger{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	if cfg.Env == EnvProduction && cfg.Logger.Format == "console" {
		cfg.Logger.Format = "json"
	}

	if cfg.Database.URL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// DSN returns the Postgres connection string with the TLS policy applied:
// certificate verification is required in production and disabled elsewhere,
// unless the URL or DATABASE_SSLMODE already pins a mode.
func (d Database) DSN(env string) string {
	if strings.Contains(d.URL, "sslmode=") {
		return d.URL
	}

	mode := d.SSLMode
	if mode == "" {
		if env == EnvProduction {
			mode = "require"
		} else {
			mode = "disable"
		}
	}

	sep := "?"
	if strings.Contains(d.URL, "?") {
		sep = "&"
	}
	return d.URL + sep + "sslmode=" + mode
}
