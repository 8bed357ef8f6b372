package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/mappers"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/models"
)

type RequestRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.RequestMapper
}

// NewRequestRepository returns the concrete type so callers can also use
// it as the notification volume estimator.
func NewRequestRepository(db *gorm.DB, registry *language.Registry) *RequestRepositoryImpl {
	return &RequestRepositoryImpl{
		db:     db,
		mapper: mappers.NewRequestMapper(registry),
	}
}

func (r *RequestRepositoryImpl) Save(ctx context.Context, req *request.Request) error {
	model, err := r.mapper.ToModel(req)
	if err != nil {
		return fmt.Errorf("failed to map request entity to model: %w", err)
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

func (r *RequestRepositoryImpl) GetByID(ctx context.Context, id string) (*request.Request, error) {
	var model models.RequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get request by ID: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *RequestRepositoryImpl) ListByStatus(ctx context.Context, status request.Status, limit int) ([]*request.Request, error) {
	var rows []*models.RequestModel
	query := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("posted_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list requests by status: %w", err)
	}
	return r.mapper.ToEntities(rows)
}

func (r *RequestRepositoryImpl) ListClaimedBefore(ctx context.Context, cutoff time.Time) ([]*request.Request, error) {
	var rows []*models.RequestModel
	if err := r.db.WithContext(ctx).
		Where("claimed_by <> '' AND claimed_at < ?", cutoff).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list claimed requests: %w", err)
	}
	return r.mapper.ToEntities(rows)
}

func (r *RequestRepositoryImpl) ListUntranslatedBefore(ctx context.Context, cutoff time.Time) ([]*request.Request, error) {
	var rows []*models.RequestModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND posted_at < ?", "untranslated", cutoff).
		Order("posted_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list stale requests: %w", err)
	}
	return r.mapper.ToEntities(rows)
}

// MonthlyRequests counts requests posted for a language over the trailing
// 30 days. The JSON column is matched textually, which is exact because
// codes are stored as quoted strings.
func (r *RequestRepositoryImpl) MonthlyRequests(ctx context.Context, languageCode string) (int, error) {
	var count int64
	cutoff := time.Now().AddDate(0, 0, -30)
	if err := r.db.WithContext(ctx).
		Model(&models.RequestModel{}).
		Where("posted_at > ? AND source_codes LIKE ?", cutoff, `%"`+languageCode+`%`).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count monthly requests: %w", err)
	}
	return int(count), nil
}
