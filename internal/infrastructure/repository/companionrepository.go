package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/mappers"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/models"
)

type CompanionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.CompanionMapper
}

func NewCompanionRepository(db *gorm.DB) request.CompanionRepository {
	return &CompanionRepositoryImpl{
		db:     db,
		mapper: mappers.NewCompanionMapper(),
	}
}

func (r *CompanionRepositoryImpl) Save(ctx context.Context, companion *request.Companion) error {
	model, err := r.mapper.ToModel(companion)
	if err != nil {
		return fmt.Errorf("failed to map companion entity to model: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_id"}},
			UpdateAll: true,
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to save companion: %w", err)
	}
	return nil
}

func (r *CompanionRepositoryImpl) GetByRequestID(ctx context.Context, requestID string) (*request.Companion, error) {
	var model models.CompanionModel
	if err := r.db.WithContext(ctx).First(&model, "request_id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get companion: %w", err)
	}
	return r.mapper.ToEntity(&model)
}
