package models

import (
	"time"

	"github.com/kungming2/translator-BOT-reborn/internal/shared/constants"
)

// ProcessedEventModel marks a platform event (post, comment or message)
// as handled so a restarted poller never double-applies it.
type ProcessedEventModel struct {
	EventID     string `gorm:"primaryKey;size:32"`
	Kind        string `gorm:"size:16;not null;index"`
	ProcessedAt time.Time
}

func (ProcessedEventModel) TableName() string {
	return constants.TableProcessedEvents
}
