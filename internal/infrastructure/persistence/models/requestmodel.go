package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kungming2/translator-BOT-reborn/internal/shared/constants"
)

// RequestModel persists one translation-request post. Language lists and
// per-language bookkeeping live in JSON columns so the schema survives
// registry growth without migrations.
type RequestModel struct {
	ID             string `gorm:"primaryKey;size:32"`
	Author         string `gorm:"size:64;not null;index"`
	RawTitle       string `gorm:"size:512;not null"`
	ActualTitle    string `gorm:"size:512"`
	Classification string `gorm:"size:32;not null;index"`
	Direction      string `gorm:"size:32"`
	Status         string `gorm:"size:32;not null;default:'untranslated';index"`

	SourceCodes         datatypes.JSON `gorm:"type:json"`
	TargetCodes         datatypes.JSON `gorm:"type:json"`
	OriginalSourceCodes datatypes.JSON `gorm:"type:json"`
	SubStatus           datatypes.JSON `gorm:"type:json"`
	History             datatypes.JSON `gorm:"type:json"`
	Notified            datatypes.JSON `gorm:"type:json"`

	ClaimedBy   string `gorm:"size:64"`
	ClaimedAt   *time.Time
	ClaimedCode string `gorm:"size:16"`
	LongContent bool   `gorm:"default:false"`

	PostedAt  time.Time `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RequestModel) TableName() string {
	return constants.TableRequests
}

func (m *RequestModel) BeforeCreate(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = constants.StatusUntranslated
	}
	return nil
}
