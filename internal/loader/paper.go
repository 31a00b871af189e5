package loader

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tradincode-dashboard-go/internal/models"
	"tradincode-dashboard-go/internal/store"
)

// DefaultTradePageSize is the trade page size when the request names none.
const DefaultTradePageSize = 20

// maxTradePageSize bounds the page size here at the boundary; the store
// itself takes any limit.
const maxTradePageSize = 100

// PaperTradingView is the view model for the paper trading page.
type PaperTradingView struct {
	Config           *ConfigView          `json:"config"`
	Trades           []TradeView          `json:"trades"`
	Pagination       PaginationView       `json:"pagination"`
	Metrics          MetricsView          `json:"metrics"`
	PortfolioHistory []PortfolioPointView `json:"portfolioHistory"`
	CurrentPrice     float64              `json:"currentPrice"`
	Error            string               `json:"error,omitempty"`
}

// ConfigView is the current paper trading configuration.
type ConfigView struct {
	ID                   int64      `json:"id"`
	IsActive             bool       `json:"isActive"`
	InitialBalance       float64    `json:"initialBalance"`
	BalanceUsd           float64    `json:"balanceUsd"`
	BalanceBtc           float64    `json:"balanceBtc"`
	StartedAt            *time.Time `json:"startedAt"`
	PercentagePerTrade   float64    `json:"percentagePerTrade"`
	BuyThreshold         float64    `json:"buyThreshold"`
	SellThreshold        float64    `json:"sellThreshold"`
	TakeProfitPercentage float64    `json:"takeProfitPercentage"`
	StopLossPercentage   float64    `json:"stopLossPercentage"`
}

// TradeView is one trade row ready for rendering.
type TradeView struct {
	ID                   int64     `json:"id"`
	TradeType            string    `json:"tradeType"`
	BtcPrice             float64   `json:"btcPrice"`
	BtcAmount            float64   `json:"btcAmount"`
	UsdAmount            float64   `json:"usdAmount"`
	BalanceUsd           float64   `json:"balanceUsd"`
	BalanceBtc           float64   `json:"balanceBtc"`
	ScoreAtTrade         float64   `json:"scoreAtTrade"`
	Reason               string    `json:"reason"`
	ProfitLossUsd        *float64  `json:"profitLossUsd"`
	ProfitLossPercentage *float64  `json:"profitLossPercentage"`
	CreatedAt            time.Time `json:"createdAt"`
}

// PaginationView carries the trade page bookkeeping.
type PaginationView struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// MetricsView flattens the nullable aggregates to renderable zeros.
type MetricsView struct {
	TotalBuys       int64   `json:"totalBuys"`
	TotalSells      int64   `json:"totalSells"`
	WinningTrades   int64   `json:"winningTrades"`
	LosingTrades    int64   `json:"losingTrades"`
	AvgWin          float64 `json:"avgWin"`
	AvgLoss         float64 `json:"avgLoss"`
	TotalProfitLoss float64 `json:"totalProfitLoss"`
}

// PortfolioPointView is one point of the portfolio value chart.
type PortfolioPointView struct {
	Timestamp  int64   `json:"timestamp"` // epoch millis
	TotalValue float64 `json:"totalValue"`
	BtcPrice   float64 `json:"btcPrice"`
}

// PaperTradingLoader loads the paper trading page.
type PaperTradingLoader struct {
	ledger   LedgerReader
	analysis AnalysisReader
	logger   *zap.Logger
}

// NewPaperTradingLoader creates a new PaperTradingLoader.
func NewPaperTradingLoader(ledger LedgerReader, analysis AnalysisReader, logger *zap.Logger) *PaperTradingLoader {
	return &PaperTradingLoader{ledger: ledger, analysis: analysis, logger: logger}
}

// Load fetches config, trade page, metrics, portfolio history and the
// latest analysis concurrently and assembles the page view model. Any
// failure degrades to the empty shape with Error set.
func (l *PaperTradingLoader) Load(ctx context.Context, page, limit int) PaperTradingView {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxTradePageSize {
		limit = DefaultTradePageSize
	}

	var (
		config  *models.PaperConfig
		trades  *store.TradePage
		metrics *store.TradingMetrics
		history []store.PortfolioPoint
		latest  *models.Analysis

		configErr, tradesErr, metricsErr, historyErr, latestErr error
	)

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		config, configErr = l.ledger.GetConfig(ctx)
	}()
	go func() {
		defer wg.Done()
		trades, tradesErr = l.ledger.ListTrades(ctx, page, limit)
	}()
	go func() {
		defer wg.Done()
		metrics, metricsErr = l.ledger.Metrics(ctx)
	}()
	go func() {
		defer wg.Done()
		history, historyErr = l.ledger.PortfolioHistory(ctx)
	}()
	go func() {
		defer wg.Done()
		latest, latestErr = l.analysis.Latest(ctx)
	}()
	wg.Wait()

	if err := firstError(configErr, tradesErr, metricsErr, historyErr, latestErr); err != nil {
		l.logger.Error("Failed to load paper trading data", zap.Error(err))
		return emptyPaperTradingView("Failed to load paper trading data")
	}

	view := PaperTradingView{
		Trades: make([]TradeView, 0, len(trades.Trades)),
		Pagination: PaginationView{
			Total:      trades.Total,
			Page:       trades.Page,
			Limit:      trades.Limit,
			TotalPages: trades.TotalPages,
		},
		Metrics: MetricsView{
			TotalBuys:       metrics.TotalBuys,
			TotalSells:      metrics.TotalSells,
			WinningTrades:   metrics.WinningTrades,
			LosingTrades:    metrics.LosingTrades,
			AvgWin:          floatOrZero(metrics.AvgWin),
			AvgLoss:         floatOrZero(metrics.AvgLoss),
			TotalProfitLoss: floatOrZero(metrics.TotalProfitLoss),
		},
		PortfolioHistory: make([]PortfolioPointView, 0, len(history)),
	}

	if config != nil {
		view.Config = &ConfigView{
			ID:                   config.ID,
			IsActive:             config.IsActive,
			InitialBalance:       config.InitialBalance,
			BalanceUsd:           config.BalanceUsd,
			BalanceBtc:           config.BalanceBtc,
			StartedAt:            config.StartedAt,
			PercentagePerTrade:   config.PercentagePerTrade,
			BuyThreshold:         config.BuyThreshold,
			SellThreshold:        config.SellThreshold,
			TakeProfitPercentage: config.TakeProfitPercentage,
			StopLossPercentage:   config.StopLossPercentage,
		}
	}

	for _, t := range trades.Trades {
		view.Trades = append(view.Trades, TradeView{
			ID:                   t.ID,
			TradeType:            t.TradeType,
			BtcPrice:             t.BtcPrice,
			BtcAmount:            t.BtcAmount,
			UsdAmount:            t.UsdAmount,
			BalanceUsd:           t.BalanceUsd,
			BalanceBtc:           t.BalanceBtc,
			ScoreAtTrade:         t.ScoreAtTrade,
			Reason:               t.Reason,
			ProfitLossUsd:        t.ProfitLossUsd,
			ProfitLossPercentage: t.ProfitLossPercentage,
			CreatedAt:            t.CreatedAt,
		})
	}

	for _, h := range history {
		view.PortfolioHistory = append(view.PortfolioHistory, PortfolioPointView{
			Timestamp:  epochMillis(h.Timestamp),
			TotalValue: h.TotalValue,
			BtcPrice:   h.BtcPrice,
		})
	}

	if latest != nil {
		view.CurrentPrice = latest.Price
	}

	return view
}

func emptyPaperTradingView(errMsg string) PaperTradingView {
	return PaperTradingView{
		Trades:           []TradeView{},
		Pagination:       PaginationView{Total: 0, Page: 1, Limit: DefaultTradePageSize, TotalPages: 0},
		Metrics:          MetricsView{},
		PortfolioHistory: []PortfolioPointView{},
		Error:            errMsg,
	}
}
