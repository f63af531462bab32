// Package journal keeps a local append-only record of user actions and
// their outcomes. It records what the user did, not what the server owns;
// server entities are never persisted here.
package journal

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Action kinds recorded in the journal.
const (
	KindExit           = "EXIT"
	KindBuy            = "BUY"
	KindSell           = "SELL"
	KindWebhook        = "WEBHOOK"
	KindFuturesWebhook = "FUTURES_WEBHOOK"
)

// ActionRecord is one journaled user action.
type ActionRecord struct {
	gorm.Model
	Kind     string  `json:"kind"`
	Subject  string  `json:"subject"` // transaction id, symbol or script
	Quantity float64 `json:"quantity,omitempty"`
	OK       bool    `json:"ok"`
	Message  string  `json:"message"`
}

// Journal wraps the sqlite-backed action log.
type Journal struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to the journal database and migrates the schema. Existing
// records are kept; the journal must never erase itself on boot.
func Open(dsn string, logger *zap.Logger) (*Journal, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if err := db.AutoMigrate(&ActionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal schema: %w", err)
	}
	return &Journal{db: db, logger: logger}, nil
}

// Record appends one action outcome. A journal write failure is logged and
// swallowed: bookkeeping must never fail the user's action.
func (j *Journal) Record(kind, subject string, quantity float64, ok bool, message string) {
	rec := ActionRecord{Kind: kind, Subject: subject, Quantity: quantity, OK: ok, Message: message}
	if err := j.db.Create(&rec).Error; err != nil {
		j.logger.Error("Failed to journal action",
			zap.String("kind", kind),
			zap.String("subject", subject),
			zap.Error(err))
	}
}

// Recent returns the newest n records.
func (j *Journal) Recent(n int) ([]ActionRecord, error) {
	var records []ActionRecord
	if err := j.db.Order("created_at desc").Limit(n).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return records, nil
}
