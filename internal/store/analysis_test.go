package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tradincode-dashboard-go/internal/models"
)

func seedAnalysis(t *testing.T, db *gorm.DB, ts time.Time, price float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Analysis{Timestamp: ts, Price: price, Score: 50}).Error)
}

func TestLatestAnalysis(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyTable", func(t *testing.T) {
		analysis := NewAnalysisStore(newTestDB(t))

		latest, err := analysis.Latest(ctx)

		assert.NoError(t, err)
		assert.Nil(t, latest)
	})

	t.Run("MostRecentWins", func(t *testing.T) {
		db := newTestDB(t)
		analysis := NewAnalysisStore(db)
		now := time.Now().UTC().Truncate(time.Second)
		seedAnalysis(t, db, now.Add(-2*time.Hour), 48000)
		seedAnalysis(t, db, now, 52000)
		seedAnalysis(t, db, now.Add(-1*time.Hour), 50000)

		latest, err := analysis.Latest(ctx)

		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, 52000.0, latest.Price)
	})
}

func TestChartSeries(t *testing.T) {
	ctx := context.Background()

	t.Run("WindowAndOrder", func(t *testing.T) {
		db := newTestDB(t)
		analysis := NewAnalysisStore(db)
		now := time.Now().UTC().Truncate(time.Second)

		seedAnalysis(t, db, now.Add(-40*24*time.Hour), 30000) // outside window
		seedAnalysis(t, db, now.Add(-10*24*time.Hour), 45000)
		seedAnalysis(t, db, now.Add(-1*24*time.Hour), 50000)

		rows, err := analysis.ChartSeries(ctx)

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 45000.0, rows[0].Price)
		assert.Equal(t, 50000.0, rows[1].Price)
		assert.True(t, rows[0].Timestamp.Before(rows[1].Timestamp))
	})

	t.Run("EmptyTable", func(t *testing.T) {
		analysis := NewAnalysisStore(newTestDB(t))

		rows, err := analysis.ChartSeries(ctx)

		assert.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestRecentAlerts(t *testing.T) {
	ctx := context.Background()

	seedAlerts := func(t *testing.T, db *gorm.DB, n int) {
		now := time.Now().UTC().Truncate(time.Second)
		for i := 0; i < n; i++ {
			require.NoError(t, db.Create(&models.Alert{
				Type:      "score",
				Message:   "threshold crossed",
				Score:     float64(i),
				Timestamp: now.Add(time.Duration(i) * time.Minute),
			}).Error)
		}
	}

	t.Run("LimitAndOrder", func(t *testing.T) {
		db := newTestDB(t)
		analysis := NewAnalysisStore(db)
		seedAlerts(t, db, 10)

		alerts, err := analysis.RecentAlerts(ctx, 5)

		require.NoError(t, err)
		require.Len(t, alerts, 5)
		// newest first
		assert.Equal(t, 9.0, alerts[0].Score)
		assert.True(t, alerts[0].Timestamp.After(alerts[4].Timestamp))
	})

	t.Run("DefaultLimit", func(t *testing.T) {
		db := newTestDB(t)
		analysis := NewAnalysisStore(db)
		seedAlerts(t, db, 25)

		alerts, err := analysis.RecentAlerts(ctx, 0)

		require.NoError(t, err)
		assert.Len(t, alerts, DefaultAlertLimit)
	})

	t.Run("EmptyTable", func(t *testing.T) {
		analysis := NewAnalysisStore(newTestDB(t))

		alerts, err := analysis.RecentAlerts(ctx, 0)

		assert.NoError(t, err)
		assert.Empty(t, alerts)
	})
}
