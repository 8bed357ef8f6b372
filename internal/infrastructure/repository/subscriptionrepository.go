package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/subscription"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/mappers"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/models"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) Save(ctx context.Context, sub *subscription.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		return fmt.Errorf("failed to map subscription entity to model: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) Delete(ctx context.Context, languageCode, username string) error {
	if err := r.db.WithContext(ctx).
		Where("language_code = ? AND username = ?", languageCode, username).
		Delete(&models.SubscriptionModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) DeleteAllForUser(ctx context.Context, username string) (int, error) {
	result := r.db.WithContext(ctx).
		Where("username = ?", username).
		Delete(&models.SubscriptionModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete subscriptions: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *SubscriptionRepositoryImpl) ListUsersForLanguage(ctx context.Context, languageCode string) ([]string, error) {
	var users []string
	if err := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("language_code = ?", languageCode).
		Order("username ASC").
		Pluck("username", &users).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return users, nil
}

func (r *SubscriptionRepositoryImpl) ListLanguagesForUser(ctx context.Context, username string) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("username = ?", username).
		Order("language_code ASC").
		Pluck("language_code", &codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list user languages: %w", err)
	}
	return codes, nil
}
