package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/models"
)

// ProcessedEventRepository remembers which platform events were already
// handled so polling passes are idempotent across restarts.
type ProcessedEventRepository struct {
	db *gorm.DB
}

func NewProcessedEventRepository(db *gorm.DB) *ProcessedEventRepository {
	return &ProcessedEventRepository{db: db}
}

func (r *ProcessedEventRepository) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProcessedEventModel{}).
		Where("event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}
	return count > 0, nil
}

func (r *ProcessedEventRepository) MarkProcessed(ctx context.Context, eventID, kind string) error {
	model := &models.ProcessedEventModel{
		EventID:     eventID,
		Kind:        kind,
		ProcessedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

// PruneBefore drops markers older than the cutoff to keep the table small.
func (r *ProcessedEventRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result := r.db.WithContext(ctx).
		Where("processed_at < ?", cutoff).
		Delete(&models.ProcessedEventModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune processed events: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}
