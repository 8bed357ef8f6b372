package models

import (
	"time"

	"github.com/kungming2/translator-BOT-reborn/internal/shared/constants"
)

type SubscriptionModel struct {
	ID           uint   `gorm:"primaryKey"`
	LanguageCode string `gorm:"size:16;not null;uniqueIndex:idx_sub_lang_user"`
	Username     string `gorm:"size:64;not null;uniqueIndex:idx_sub_lang_user;index"`
	CreatedAt    time.Time
}

func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}
