package models

import (
	"time"

	"github.com/kungming2/translator-BOT-reborn/internal/shared/constants"
)

// NotificationTallyModel records one delivered notification, queried in
// monthly windows for the per-user limits surface.
type NotificationTallyModel struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:64;not null;index:idx_tally_user_time"`
	LanguageCode string `gorm:"size:16;not null"`
	SentAt       time.Time `gorm:"not null;index:idx_tally_user_time"`
}

func (NotificationTallyModel) TableName() string {
	return constants.TableNotificationTallies
}
