package migration

import (
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.RequestModel{},
		&models.CompanionModel{},
		&models.SubscriptionModel{},
		&models.ProcessedEventModel{},
		&models.NotificationTallyModel{},
	}
}
