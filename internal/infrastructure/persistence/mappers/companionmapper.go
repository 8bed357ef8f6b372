package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/models"
)

type CompanionMapper interface {
	ToEntity(model *models.CompanionModel) (*request.Companion, error)
	ToModel(entity *request.Companion) (*models.CompanionModel, error)
}

type CompanionMapperImpl struct{}

func NewCompanionMapper() CompanionMapper {
	return &CompanionMapperImpl{}
}

func (m *CompanionMapperImpl) ToEntity(model *models.CompanionModel) (*request.Companion, error) {
	if model == nil {
		return nil, nil
	}
	comments := map[string]string{}
	if len(model.Comments) > 0 {
		if err := json.Unmarshal(model.Comments, &comments); err != nil {
			return nil, fmt.Errorf("failed to decode companion comments: %w", err)
		}
	}
	return request.ReconstructCompanion(model.RequestID, comments), nil
}

func (m *CompanionMapperImpl) ToModel(entity *request.Companion) (*models.CompanionModel, error) {
	if entity == nil {
		return nil, nil
	}
	comments, err := json.Marshal(entity.Comments())
	if err != nil {
		return nil, fmt.Errorf("failed to encode companion comments: %w", err)
	}
	return &models.CompanionModel{
		RequestID: entity.RequestID(),
		Comments:  comments,
	}, nil
}
