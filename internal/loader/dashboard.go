package loader

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tradincode-dashboard-go/internal/models"
)

// DashboardView is the view model for the main dashboard page.
type DashboardView struct {
	Latest     *LatestAnalysisView `json:"latest"`
	Historical []ChartPointView    `json:"historical"`
	Alerts     []AlertView         `json:"alerts"`
	Error      string              `json:"error,omitempty"`
}

// LatestAnalysisView is the most recent analysis with all indicators.
type LatestAnalysisView struct {
	Price      float64   `json:"price"`
	Ma50       *float64  `json:"ma50"`
	Ma200      *float64  `json:"ma200"`
	RsiWeekly  *float64  `json:"rsiWeekly"`
	MacdWeekly *float64  `json:"macdWeekly"`
	MacdSignal *float64  `json:"macdSignal"`
	BbUpper    *float64  `json:"bbUpper"`
	BbMiddle   *float64  `json:"bbMiddle"`
	BbLower    *float64  `json:"bbLower"`
	Score      float64   `json:"score"`
	Timestamp  time.Time `json:"timestamp"`
}

// ChartPointView is one point of the 30-day price chart.
type ChartPointView struct {
	Timestamp int64    `json:"timestamp"` // epoch millis
	Price     float64  `json:"price"`
	Ma50      *float64 `json:"ma50"`
	Ma200     *float64 `json:"ma200"`
	Score     float64  `json:"score"`
	RsiWeekly *float64 `json:"rsiWeekly"`
}

// AlertView is one alert row.
type AlertView struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardLoader loads the main dashboard page.
type DashboardLoader struct {
	analysis AnalysisReader
	logger   *zap.Logger
}

// NewDashboardLoader creates a new DashboardLoader.
func NewDashboardLoader(analysis AnalysisReader, logger *zap.Logger) *DashboardLoader {
	return &DashboardLoader{analysis: analysis, logger: logger}
}

// Load fetches the latest analysis, the chart series and the recent alerts
// concurrently. On any failure it returns the empty-shaped view model with
// Error set; it never propagates the failure.
func (l *DashboardLoader) Load(ctx context.Context) DashboardView {
	var (
		latest     *models.Analysis
		historical []models.Analysis
		alerts     []models.Alert

		latestErr, histErr, alertsErr error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		latest, latestErr = l.analysis.Latest(ctx)
	}()
	go func() {
		defer wg.Done()
		historical, histErr = l.analysis.ChartSeries(ctx)
	}()
	go func() {
		defer wg.Done()
		alerts, alertsErr = l.analysis.RecentAlerts(ctx, 0)
	}()
	wg.Wait()

	if err := firstError(latestErr, histErr, alertsErr); err != nil {
		l.logger.Error("Failed to load dashboard data", zap.Error(err))
		return DashboardView{
			Historical: []ChartPointView{},
			Alerts:     []AlertView{},
			Error:      "Failed to load data. Please check database connection.",
		}
	}

	view := DashboardView{
		Historical: make([]ChartPointView, 0, len(historical)),
		Alerts:     make([]AlertView, 0, len(alerts)),
	}

	if latest != nil {
		view.Latest = &LatestAnalysisView{
			Price:      latest.Price,
			Ma50:       latest.Ma50,
			Ma200:      latest.Ma200,
			RsiWeekly:  latest.RsiWeekly,
			MacdWeekly: latest.MacdWeekly,
			MacdSignal: latest.MacdSignal,
			BbUpper:    latest.BbUpper,
			BbMiddle:   latest.BbMiddle,
			BbLower:    latest.BbLower,
			Score:      latest.Score,
			Timestamp:  latest.Timestamp,
		}
	}

	for _, h := range historical {
		view.Historical = append(view.Historical, ChartPointView{
			Timestamp: epochMillis(h.Timestamp),
			Price:     h.Price,
			Ma50:      h.Ma50,
			Ma200:     h.Ma200,
			Score:     h.Score,
			RsiWeekly: h.RsiWeekly,
		})
	}

	for _, a := range alerts {
		view.Alerts = append(view.Alerts, AlertView{
			ID:        a.ID,
			Type:      a.Type,
			Message:   a.Message,
			Score:     a.Score,
			Timestamp: a.Timestamp,
		})
	}

	return view
}
