package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/notification"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/models"
)

type NotificationTallyRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationTallyRepository(db *gorm.DB) notification.TallyRepository {
	return &NotificationTallyRepositoryImpl{db: db}
}

func (r *NotificationTallyRepositoryImpl) Increment(ctx context.Context, username, languageCode string) error {
	model := &models.NotificationTallyModel{
		Username:     username,
		LanguageCode: languageCode,
		SentAt:       time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record notification tally: %w", err)
	}
	return nil
}

func (r *NotificationTallyRepositoryImpl) MonthlyCount(ctx context.Context, username string) (int, error) {
	var count int64
	cutoff := time.Now().AddDate(0, 0, -30)
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationTallyModel{}).
		Where("username = ? AND sent_at > ?", username, cutoff).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count notification tallies: %w", err)
	}
	return int(count), nil
}
