package loader

import (
	"context"
	"errors"

	"tradincode-dashboard-go/internal/models"
	"tradincode-dashboard-go/internal/store"
	"tradincode-dashboard-go/internal/worker"
)

var errBoom = errors.New("database exploded")

// fakeLedger implements LedgerReader with canned results.
type fakeLedger struct {
	config  *models.PaperConfig
	trades  *store.TradePage
	metrics *store.TradingMetrics
	history []store.PortfolioPoint
	err     error

	lastPage  int
	lastLimit int
}

func (f *fakeLedger) GetConfig(ctx context.Context) (*models.PaperConfig, error) {
	return f.config, f.err
}

func (f *fakeLedger) ListTrades(ctx context.Context, page, limit int) (*store.TradePage, error) {
	f.lastPage, f.lastLimit = page, limit
	if f.err != nil {
		return nil, f.err
	}
	if f.trades != nil {
		return f.trades, nil
	}
	return &store.TradePage{Page: page, Limit: limit}, nil
}

func (f *fakeLedger) Metrics(ctx context.Context) (*store.TradingMetrics, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.metrics != nil {
		return f.metrics, nil
	}
	return &store.TradingMetrics{}, nil
}

func (f *fakeLedger) PortfolioHistory(ctx context.Context) ([]store.PortfolioPoint, error) {
	return f.history, f.err
}

// fakeAnalysis implements AnalysisReader with canned results.
type fakeAnalysis struct {
	latest *models.Analysis
	series []models.Analysis
	alerts []models.Alert
	err    error
}

func (f *fakeAnalysis) Latest(ctx context.Context) (*models.Analysis, error) {
	return f.latest, f.err
}

func (f *fakeAnalysis) ChartSeries(ctx context.Context) ([]models.Analysis, error) {
	return f.series, f.err
}

func (f *fakeAnalysis) RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	return f.alerts, f.err
}

// fakeWorker implements worker.ClientInterface; unset function fields
// answer empty successes.
type fakeWorker struct {
	healthFn     func(ctx context.Context) (*worker.HealthStatus, error)
	listFn       func(ctx context.Context) ([]worker.Account, error)
	getFn        func(ctx context.Context, id int64) (*worker.Account, error)
	createFn     func(ctx context.Context, req *worker.CreateAccountRequest) (*worker.Account, error)
	updateFn     func(ctx context.Context, id int64, req *worker.CreateAccountRequest) (*worker.Account, error)
	deleteFn     func(ctx context.Context, id int64) error
	toggleFn     func(ctx context.Context, id int64) (*worker.Account, error)
	tradesFn     func(ctx context.Context, id int64, limit int) ([]worker.AccountTrade, error)
	snapshotsFn  func(ctx context.Context, id int64, limit int) ([]worker.Snapshot, error)
	rankingsFn   func(ctx context.Context) ([]worker.RankingEntry, error)
	strategiesFn func(ctx context.Context) ([]worker.Strategy, error)
	timeframesFn func(ctx context.Context) ([]worker.Timeframe, error)
}

var _ worker.ClientInterface = (*fakeWorker)(nil)

func (f *fakeWorker) Health(ctx context.Context) (*worker.HealthStatus, error) {
	if f.healthFn != nil {
		return f.healthFn(ctx)
	}
	return &worker.HealthStatus{Status: "ok"}, nil
}

func (f *fakeWorker) ListAccounts(ctx context.Context) ([]worker.Account, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeWorker) GetAccount(ctx context.Context, id int64) (*worker.Account, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeWorker) CreateAccount(ctx context.Context, req *worker.CreateAccountRequest) (*worker.Account, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return &worker.Account{}, nil
}

func (f *fakeWorker) UpdateAccount(ctx context.Context, id int64, req *worker.CreateAccountRequest) (*worker.Account, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return &worker.Account{}, nil
}

func (f *fakeWorker) DeleteAccount(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeWorker) ToggleAccount(ctx context.Context, id int64) (*worker.Account, error) {
	if f.toggleFn != nil {
		return f.toggleFn(ctx, id)
	}
	return &worker.Account{}, nil
}

func (f *fakeWorker) AccountTrades(ctx context.Context, id int64, limit int) ([]worker.AccountTrade, error) {
	if f.tradesFn != nil {
		return f.tradesFn(ctx, id, limit)
	}
	return nil, nil
}

func (f *fakeWorker) AccountSnapshots(ctx context.Context, id int64, limit int) ([]worker.Snapshot, error) {
	if f.snapshotsFn != nil {
		return f.snapshotsFn(ctx, id, limit)
	}
	return nil, nil
}

func (f *fakeWorker) Rankings(ctx context.Context) ([]worker.RankingEntry, error) {
	if f.rankingsFn != nil {
		return f.rankingsFn(ctx)
	}
	return nil, nil
}

func (f *fakeWorker) Strategies(ctx context.Context) ([]worker.Strategy, error) {
	if f.strategiesFn != nil {
		return f.strategiesFn(ctx)
	}
	return nil, nil
}

func (f *fakeWorker) Timeframes(ctx context.Context) ([]worker.Timeframe, error) {
	if f.timeframesFn != nil {
		return f.timeframesFn(ctx)
	}
	return nil, nil
}
