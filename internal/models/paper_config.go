package models

import "time"

// PaperConfig is the paper trading configuration row. The table may hold
// several historical versions; the row with the highest id is the current
// one and is the only row mutations should target.
type PaperConfig struct {
	ID                   int64      `gorm:"primaryKey" json:"id"`
	InitialBalance       float64    `json:"initial_balance"`
	BalanceUsd           float64    `json:"balance_usd"`
	BalanceBtc           float64    `json:"balance_btc"`
	IsActive             bool       `json:"is_active"`
	StartedAt            *time.Time `json:"started_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	PercentagePerTrade   float64    `json:"percentage_per_trade"`
	BuyThreshold         float64    `json:"buy_threshold"`
	SellThreshold        float64    `json:"sell_threshold"`
	TakeProfitPercentage float64    `json:"take_profit_percentage"`
	StopLossPercentage   float64    `json:"stop_loss_percentage"`
}

// TableName pins the legacy singular table name.
func (PaperConfig) TableName() string { return "paper_config" }
