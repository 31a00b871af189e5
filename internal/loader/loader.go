// Package loader builds the per-page view models. Each loader fans out its
// independent store and worker API calls, waits for all of them, and maps
// the rows into renderer-ready camelCase structs. Page loads never fail
// hard: any fetch error degrades into an empty-shaped view model carrying a
// human-readable error string.
package loader

import (
	"context"
	"time"

	"tradincode-dashboard-go/internal/models"
	"tradincode-dashboard-go/internal/store"
)

// LedgerReader is the slice of the ledger store the page loaders consume.
type LedgerReader interface {
	GetConfig(ctx context.Context) (*models.PaperConfig, error)
	ListTrades(ctx context.Context, page, limit int) (*store.TradePage, error)
	Metrics(ctx context.Context) (*store.TradingMetrics, error)
	PortfolioHistory(ctx context.Context) ([]store.PortfolioPoint, error)
}

// AnalysisReader is the slice of the analysis store the page loaders consume.
type AnalysisReader interface {
	Latest(ctx context.Context) (*models.Analysis, error)
	ChartSeries(ctx context.Context) ([]models.Analysis, error)
	RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error)
}

// firstError returns the first non-nil error of the batch.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// epochMillis converts a timestamp to the epoch-milliseconds form the
// charting layer expects.
func epochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// floatOrZero flattens a nullable aggregate to the zero the UI renders.
func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
