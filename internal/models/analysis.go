package models

import "time"

// Analysis is one market analysis snapshot produced by the external worker.
// The dashboard only ever reads this table.
type Analysis struct {
	Timestamp  time.Time `gorm:"primaryKey" json:"timestamp"`
	Price      float64   `json:"price"`
	Ma50       *float64  `gorm:"column:ma_50" json:"ma_50"`
	Ma200      *float64  `gorm:"column:ma_200" json:"ma_200"`
	Score      float64   `json:"score"`
	RsiWeekly  *float64  `json:"rsi_weekly"`
	MacdWeekly *float64  `json:"macd_weekly"`
	MacdSignal *float64  `json:"macd_signal"`
	BbUpper    *float64  `json:"bb_upper"`
	BbMiddle   *float64  `json:"bb_middle"`
	BbLower    *float64  `json:"bb_lower"`
}

func (Analysis) TableName() string { return "analyses" }
