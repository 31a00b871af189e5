package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tradincode-dashboard-go/internal/models"
)

// ErrNoConfig is returned by mutations that need a current config row when
// the paper_config table is empty.
var ErrNoConfig = errors.New("no paper trading config exists")

// LedgerStore owns the paper trading ledger: the single current config row
// and the append-only trade log. All monetary state transitions of the
// simulated account go through here.
type LedgerStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(db *gorm.DB, logger *zap.Logger) *LedgerStore {
	return &LedgerStore{db: db, logger: logger}
}

// ConfigUpdate enumerates the columns a caller may change on the current
// config row. Nil fields are left untouched. Restricting updates to this
// fixed set keeps arbitrary column names out of the SET clause.
type ConfigUpdate struct {
	InitialBalance       *float64
	PercentagePerTrade   *float64
	BuyThreshold         *float64
	SellThreshold        *float64
	TakeProfitPercentage *float64
	StopLossPercentage   *float64
}

func (u ConfigUpdate) changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if u.InitialBalance != nil {
		changes["initial_balance"] = *u.InitialBalance
	}
	if u.PercentagePerTrade != nil {
		changes["percentage_per_trade"] = *u.PercentagePerTrade
	}
	if u.BuyThreshold != nil {
		changes["buy_threshold"] = *u.BuyThreshold
	}
	if u.SellThreshold != nil {
		changes["sell_threshold"] = *u.SellThreshold
	}
	if u.TakeProfitPercentage != nil {
		changes["take_profit_percentage"] = *u.TakeProfitPercentage
	}
	if u.StopLossPercentage != nil {
		changes["stop_loss_percentage"] = *u.StopLossPercentage
	}
	return changes
}

// TradePage is one page of the trade log plus pagination bookkeeping.
type TradePage struct {
	Trades     []models.PaperTrade
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TradingMetrics aggregates the trade log. Averages, the P&L sum and the
// peak value are nil when no qualifying trades exist.
type TradingMetrics struct {
	TotalBuys       int64
	TotalSells      int64
	WinningTrades   int64
	LosingTrades    int64
	AvgWin          *float64
	AvgLoss         *float64
	TotalProfitLoss *float64
	PeakValue       *float64
}

// PortfolioPoint is one sample of the derived portfolio value series.
type PortfolioPoint struct {
	Timestamp  time.Time
	TotalValue float64
	BtcPrice   float64
}

// GetConfig returns the current config row, or nil if none exists yet.
// The row with the highest id wins; older rows are historical versions.
func (s *LedgerStore) GetConfig(ctx context.Context) (*models.PaperConfig, error) {
	var cfg models.PaperConfig
	result := s.db.WithContext(ctx).Order("id DESC").Limit(1).Find(&cfg)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get paper config: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &cfg, nil
}

// UpdateConfig applies the given fields to the current config row and
// stamps updated_at. Returns ErrNoConfig when the table is empty.
func (s *LedgerStore) UpdateConfig(ctx context.Context, update ConfigUpdate) (*models.PaperConfig, error) {
	current, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNoConfig
	}

	changes := update.changes()
	changes["updated_at"] = time.Now()

	err = s.db.WithContext(ctx).
		Model(&models.PaperConfig{}).
		Where("id = ?", current.ID).
		Updates(changes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update paper config: %w", err)
	}

	return s.GetConfig(ctx)
}

// ListTrades returns one page of the trade log, most recent first.
// page is 1-indexed; limit is taken as-is, callers bound it at the edge.
func (s *LedgerStore) ListTrades(ctx context.Context, page, limit int) (*TradePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.PaperTrade{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count paper trades: %w", err)
	}

	var trades []models.PaperTrade
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&trades).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list paper trades: %w", err)
	}

	return &TradePage{
		Trades:     trades,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Metrics computes the aggregate trading statistics in a single query.
// The peak value prices the BTC balance of every historical snapshot at the
// most recent known BTC price.
func (s *LedgerStore) Metrics(ctx context.Context) (*TradingMetrics, error) {
	var m TradingMetrics
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) FILTER (WHERE trade_type = 'buy') AS total_buys,
			COUNT(*) FILTER (WHERE trade_type = 'sell') AS total_sells,
			COUNT(*) FILTER (WHERE trade_type = 'sell' AND profit_loss_usd > 0) AS winning_trades,
			COUNT(*) FILTER (WHERE trade_type = 'sell' AND profit_loss_usd <= 0) AS losing_trades,
			AVG(profit_loss_usd) FILTER (WHERE trade_type = 'sell' AND profit_loss_usd > 0) AS avg_win,
			AVG(profit_loss_usd) FILTER (WHERE trade_type = 'sell' AND profit_loss_usd <= 0) AS avg_loss,
			SUM(profit_loss_usd) FILTER (WHERE trade_type = 'sell') AS total_profit_loss,
			MAX(balance_usd + balance_btc * (SELECT btc_price FROM paper_trades ORDER BY created_at DESC LIMIT 1)) AS peak_value
		FROM paper_trades
	`).Scan(&m).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute trading metrics: %w", err)
	}
	return &m, nil
}

// Reset wipes the trade log and restores the current config row to its
// starting state, atomically. Either every step commits or none does.
func (s *LedgerStore) Reset(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM paper_trades").Error; err != nil {
			return fmt.Errorf("failed to delete paper trades: %w", err)
		}

		err := tx.Exec(`
			UPDATE paper_config
			SET balance_usd = initial_balance,
			    balance_btc = 0,
			    is_active = ?,
			    started_at = NULL,
			    updated_at = ?
			WHERE id = (SELECT MAX(id) FROM paper_config)
		`, false, time.Now()).Error
		if err != nil {
			return fmt.Errorf("failed to reset paper config: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Paper trading ledger reset")
	return nil
}

// Start marks the session active and records when it began. Calling Start
// on an already active session just moves started_at; callers that want
// start-once semantics must check IsActive first.
func (s *LedgerStore) Start(ctx context.Context) (*models.PaperConfig, error) {
	now := time.Now()
	return s.setActive(ctx, map[string]interface{}{
		"is_active":  true,
		"started_at": now,
		"updated_at": now,
	})
}

// Stop marks the session inactive. started_at is left in place so the
// history of when the session ran survives a stop.
func (s *LedgerStore) Stop(ctx context.Context) (*models.PaperConfig, error) {
	return s.setActive(ctx, map[string]interface{}{
		"is_active":  false,
		"updated_at": time.Now(),
	})
}

func (s *LedgerStore) setActive(ctx context.Context, changes map[string]interface{}) (*models.PaperConfig, error) {
	current, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNoConfig
	}

	err = s.db.WithContext(ctx).
		Model(&models.PaperConfig{}).
		Where("id = ?", current.ID).
		Updates(changes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to toggle paper trading: %w", err)
	}

	return s.GetConfig(ctx)
}

// PortfolioHistory recomputes the portfolio value series from the trade
// log, oldest first. Each trade row carries its post-trade balances, so the
// value at that moment is balance_usd + balance_btc * btc_price.
func (s *LedgerStore) PortfolioHistory(ctx context.Context) ([]PortfolioPoint, error) {
	var points []PortfolioPoint
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			created_at AS timestamp,
			balance_usd + balance_btc * btc_price AS total_value,
			btc_price
		FROM paper_trades
		ORDER BY created_at ASC
	`).Scan(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio history: %w", err)
	}
	return points, nil
}
