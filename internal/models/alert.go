package models

import "time"

// Alert is a notification row raised by the analysis worker when a score
// threshold is crossed.
type Alert struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

func (Alert) TableName() string { return "alerts" }
