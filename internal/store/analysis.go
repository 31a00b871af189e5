package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tradincode-dashboard-go/internal/models"
)

// DefaultAlertLimit bounds GetRecentAlerts when the caller passes no limit.
const DefaultAlertLimit = 20

// chartWindow is how far back the price chart reaches.
const chartWindow = 30 * 24 * time.Hour

// AnalysisStore is read-only access to the market analysis history written
// by the external worker.
type AnalysisStore struct {
	db *gorm.DB
}

// NewAnalysisStore creates a new AnalysisStore.
func NewAnalysisStore(db *gorm.DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

// Latest returns the most recent analysis row, or nil when the table is
// empty. An empty table is a valid state, not an error.
func (s *AnalysisStore) Latest(ctx context.Context) (*models.Analysis, error) {
	var analysis models.Analysis
	result := s.db.WithContext(ctx).Order("timestamp DESC").Limit(1).Find(&analysis)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get latest analysis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &analysis, nil
}

// ChartSeries returns the last 30 days of analyses in ascending order,
// projected down to the columns the chart consumes.
func (s *AnalysisStore) ChartSeries(ctx context.Context) ([]models.Analysis, error) {
	var rows []models.Analysis
	err := s.db.WithContext(ctx).
		Select("timestamp", "price", "ma_50", "ma_200", "score", "rsi_weekly").
		Where("timestamp > ?", time.Now().Add(-chartWindow)).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get chart series: %w", err)
	}
	return rows, nil
}

// RecentAlerts returns the most recent alerts, newest first.
func (s *AnalysisStore) RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit < 1 {
		limit = DefaultAlertLimit
	}

	var alerts []models.Alert
	err := s.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent alerts: %w", err)
	}
	return alerts, nil
}
