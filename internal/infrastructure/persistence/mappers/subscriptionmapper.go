package mappers

import (
	"github.com/kungming2/translator-BOT-reborn/internal/domain/subscription"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/models"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}
	return subscription.Reconstruct(model.LanguageCode, model.Username, model.CreatedAt), nil
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}
	return &models.SubscriptionModel{
		LanguageCode: entity.LanguageCode(),
		Username:     entity.Username(),
		CreatedAt:    entity.CreatedAt(),
	}, nil
}
