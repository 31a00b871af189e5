package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/tradincode")
		t.Setenv("APP_ENV", "development")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "development", cfg.Env)
		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Logger.Level)
		assert.Equal(t, "console", cfg.Logger.Format)
		assert.Equal(t, 20.0, cfg.Worker.RateLimit)
		assert.Equal(t, 5, cfg.Worker.RateLimitBurst)
		assert.NotEmpty(t, cfg.Worker.BaseURL)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	})

	t.Run("ProductionDefaultsToJSONLogs", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/tradincode")
		t.Setenv("APP_ENV", "production")
		t.Setenv("LOG_FORMAT", "console")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "json", cfg.Logger.Format)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/tradincode")
		t.Setenv("APP_ENV", "development")
		t.Setenv("SERVER_PORT", "8080")
		t.Setenv("WORKER_API_URL", "http://localhost:9999/api")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "http://localhost:9999/api", cfg.Worker.BaseURL)
	})

	t.Run("MissingDatabaseURL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		_, err := Load()

		assert.Error(t, err)
	})
}

func TestDatabaseDSN(t *testing.T) {
	testCases := []struct {
		name     string
		db       Database
		env      string
		expected string
	}{
		{
			name:     "DevelopmentDisablesTLS",
			db:       Database{URL: "postgres://localhost/db"},
			env:      "development",
			expected: "postgres://localhost/db?sslmode=disable",
		},
		{
			name:     "ProductionRequiresTLS",
			db:       Database{URL: "postgres://localhost/db"},
			env:      EnvProduction,
			expected: "postgres://localhost/db?sslmode=require",
		},
		{
			name:     "ExplicitModeWins",
			db:       Database{URL: "postgres://localhost/db", SSLMode: "verify-full"},
			env:      "development",
			expected: "postgres://localhost/db?sslmode=verify-full",
		},
		{
			name:     "URLModeUntouched",
			db:       Database{URL: "postgres://localhost/db?sslmode=prefer"},
			env:      EnvProduction,
			expected: "postgres://localhost/db?sslmode=prefer",
		},
		{
			name:     "AppendsToExistingQuery",
			db:       Database{URL: "postgres://localhost/db?application_name=dash"},
			env:      "development",
			expected: "postgres://localhost/db?application_name=dash&sslmode=disable",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.db.DSN(tc.env))
		})
	}
}
