package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/kungming2/translator-BOT-reborn/internal/shared/constants"
)

// CompanionModel tracks the bot's own comments on a request, keyed by
// anchor tag so handlers can edit or remove them later.
type CompanionModel struct {
	RequestID string         `gorm:"primaryKey;size:32"`
	Comments  datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CompanionModel) TableName() string {
	return constants.TableCompanions
}
