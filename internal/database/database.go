package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tradincode-dashboard-go/internal/config"
	"tradincode-dashboard-go/internal/models"
)

// zapWriter adapts a zap logger to gorm's logger.Writer interface so that
// slow-query and error output from gorm lands in the structured log instead
// of stderr. Background connection failures surface here as warnings; they
// must never crash the process.
type zapWriter struct {
	log *zap.Logger
}

func (w *zapWriter) Printf(format string, v ...interface{}) {
	w.log.Warn(fmt.Sprintf(format, v...))
}

// NewDatabase opens the shared Postgres connection pool and performs
// auto-migration. The returned handle is created once in main and injected
// into the stores; database/sql underneath hands out one pooled connection
// per operation and guarantees its release on every exit path.
func NewDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gl := gormlogger.New(
		&zapWriter{log: log.Named("gorm")},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN(cfg.Env)), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

	if err := pingWithRetry(sqlDB.PingContext); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates any missing tables. The analysis worker owns the
// schema in production; migration here only matters for fresh deployments
// and test databases, so it is additive and never drops anything.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Analysis{},
		&models.Alert{},
		&models.PaperConfig{},
		&models.PaperTrade{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// pingWithRetry verifies connectivity with a short backoff so a dashboard
// deploy does not flap while the database is still coming up.
func pingWithRetry(ping func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const maxRetries = 3
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
		}
	}
	return fmt.Errorf("failed to ping database after %d attempts: %w", maxRetries, err)
}
