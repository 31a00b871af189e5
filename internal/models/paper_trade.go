package models

import "time"

const (
	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"
)

// PaperTrade is one executed simulated trade. Rows are written by the
// external trade-execution worker and are append-only: the dashboard reads,
// aggregates, and (on a full reset) deletes them, but never updates one.
type PaperTrade struct {
	ID                   int64     `gorm:"primaryKey" json:"id"`
	TradeType            string    `json:"trade_type"` // "buy" or "sell"
	BtcPrice             float64   `json:"btc_price"`
	BtcAmount            float64   `json:"btc_amount"`
	UsdAmount            float64   `json:"usd_amount"`
	BalanceUsd           float64   `json:"balance_usd"`
	BalanceBtc           float64   `json:"balance_btc"`
	ScoreAtTrade         float64   `json:"score_at_trade"`
	Reason               string    `json:"reason"`
	ProfitLossUsd        *float64  `json:"profit_loss_usd"`        // sell trades only
	ProfitLossPercentage *float64  `json:"profit_loss_percentage"` // sell trades only
	CreatedAt            time.Time `json:"created_at"`
}

func (PaperTrade) TableName() string { return "paper_trades" }
