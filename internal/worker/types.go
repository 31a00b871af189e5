package worker

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Number is a float64 that unmarshals from either a JSON number or a
// numeric string. The worker serializes Postgres numeric columns as
// strings, while counts arrive as plain numbers; both land here.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 1 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Float returns the plain float64 value.
func (n Number) Float() float64 { return float64(n) }

// Account is one multi-account paper trading account managed by the worker.
type Account struct {
	ID              int64  `json:"id"`
	AccountName     string `json:"account_name"`
	Strategy        string `json:"strategy"`
	Timeframe       string `json:"timeframe"`
	InitialBalance  Number `json:"initial_balance"`
	BalanceUsd      Number `json:"balance_usd"`
	BalanceBtc      Number `json:"balance_btc"`
	IsActive        bool   `json:"is_active"`
	TotalTrades     Number `json:"total_trades"`
	WinningTrades   Number `json:"winning_trades"`
	LosingTrades    Number `json:"losing_trades"`
	TotalProfitLoss Number `json:"total_profit_loss"`
	CreatedAt       string `json:"created_at"`
}

// CreateAccountRequest is the payload for creating or updating an account.
// Percentages are fractions in [0, 1]; the form layer converts from the
// 0-100 inputs before this struct is built.
type CreateAccountRequest struct {
	AccountName         string   `json:"account_name"`
	Strategy            string   `json:"strategy"`
	Timeframe           string   `json:"timeframe"`
	InitialBalance      float64  `json:"initial_balance"`
	IsActive            bool     `json:"is_active"`
	PositionSizePercent float64  `json:"position_size_percent"`
	StopLossPercent     float64  `json:"stop_loss_percent"`
	TakeProfitPercent   *float64 `json:"take_profit_percent"`
	TrailingStop        bool     `json:"trailing_stop"`
	TrailingStopPercent *float64 `json:"trailing_stop_percent"`
	RequiredConvergence *int     `json:"required_convergence"`
}

// AccountTrade is one trade executed on a worker-managed account.
type AccountTrade struct {
	ID            int64   `json:"id"`
	AccountID     int64   `json:"account_id"`
	TradeType     string  `json:"trade_type"`
	BtcPrice      Number  `json:"btc_price"`
	BtcAmount     Number  `json:"btc_amount"`
	UsdAmount     Number  `json:"usd_amount"`
	ProfitLossUsd *Number `json:"profit_loss_usd"`
	Reason        string  `json:"reason"`
	CreatedAt     string  `json:"created_at"`
}

// Snapshot is one periodic portfolio valuation of an account.
type Snapshot struct {
	ID         int64  `json:"id"`
	AccountID  int64  `json:"account_id"`
	TotalValue Number `json:"total_value"`
	BtcPrice   Number `json:"btc_price"`
	CreatedAt  string `json:"created_at"`
}

// RankingEntry is one row of the account leaderboard.
type RankingEntry struct {
	Rank            int    `json:"rank"`
	AccountID       int64  `json:"account_id"`
	AccountName     string `json:"account_name"`
	Strategy        string `json:"strategy"`
	IsActive        bool   `json:"is_active"`
	TotalProfitLoss Number `json:"total_profit_loss"`
	ProfitPercent   Number `json:"profit_percent"`
	WinRate         Number `json:"win_rate"`
}

// Strategy describes one trading strategy the worker can run.
type Strategy struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Timeframe describes one candle timeframe an account can trade on.
type Timeframe struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// HealthStatus is the worker's health check response.
type HealthStatus struct {
	Status string `json:"status"`
}
