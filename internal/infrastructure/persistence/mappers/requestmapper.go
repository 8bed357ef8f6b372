package mappers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/title"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/models"
)

type RequestMapper interface {
	ToEntity(model *models.RequestModel) (*request.Request, error)
	ToModel(entity *request.Request) (*models.RequestModel, error)
	ToEntities(models []*models.RequestModel) ([]*request.Request, error)
}

type RequestMapperImpl struct {
	registry *language.Registry
}

func NewRequestMapper(registry *language.Registry) RequestMapper {
	return &RequestMapperImpl{registry: registry}
}

func (m *RequestMapperImpl) ToEntity(model *models.RequestModel) (*request.Request, error) {
	if model == nil {
		return nil, nil
	}

	source, err := m.decodeIdentities(model.SourceCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode source languages: %w", err)
	}
	target, err := m.decodeIdentities(model.TargetCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode target languages: %w", err)
	}
	originalSource, err := m.decodeIdentities(model.OriginalSourceCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode original source languages: %w", err)
	}
	// Rows written before original_source_codes existed fall back to the
	// current source list.
	if len(originalSource) == 0 {
		originalSource = source
	}

	subStatus, err := decodeSubStatus(model.SubStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sub-status: %w", err)
	}
	history, err := decodeHistory(model.History)
	if err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	notified, err := decodeNotified(model.Notified, source)
	if err != nil {
		return nil, fmt.Errorf("failed to decode notified set: %w", err)
	}

	var claimedAt time.Time
	if model.ClaimedAt != nil {
		claimedAt = *model.ClaimedAt
	}

	entity := request.Reconstruct(
		model.ID,
		model.Author,
		model.PostedAt,
		model.RawTitle,
		model.ActualTitle,
		title.Classification(model.Classification),
		title.Direction(model.Direction),
		source,
		target,
		originalSource,
		request.Status(model.Status),
		subStatus,
		history,
		notified,
		model.ClaimedBy,
		claimedAt,
		model.ClaimedCode,
		model.LongContent,
	)
	return entity, nil
}

func (m *RequestMapperImpl) ToModel(entity *request.Request) (*models.RequestModel, error) {
	if entity == nil {
		return nil, nil
	}

	sourceCodes, err := encodeIdentities(entity.Source())
	if err != nil {
		return nil, fmt.Errorf("failed to encode source languages: %w", err)
	}
	targetCodes, err := encodeIdentities(entity.Target())
	if err != nil {
		return nil, fmt.Errorf("failed to encode target languages: %w", err)
	}
	originalCodes, err := encodeIdentities(entity.OriginalSource())
	if err != nil {
		return nil, fmt.Errorf("failed to encode original source languages: %w", err)
	}

	subStatus := make(map[string]string, len(entity.SubStatus()))
	for code, st := range entity.SubStatus() {
		subStatus[code] = string(st)
	}
	subStatusJSON, err := json.Marshal(subStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sub-status: %w", err)
	}
	historyJSON, err := json.Marshal(entity.History())
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	notifiedJSON, err := json.Marshal(entity.AllNotified())
	if err != nil {
		return nil, fmt.Errorf("failed to encode notified set: %w", err)
	}

	model := &models.RequestModel{
		ID:                  entity.ID(),
		Author:              entity.Author(),
		RawTitle:            entity.RawTitle(),
		ActualTitle:         entity.ActualTitle(),
		Classification:      string(entity.Classification()),
		Direction:           string(entity.Direction()),
		Status:              string(entity.Status()),
		SourceCodes:         sourceCodes,
		TargetCodes:         targetCodes,
		OriginalSourceCodes: originalCodes,
		SubStatus:           subStatusJSON,
		History:             historyJSON,
		Notified:            notifiedJSON,
		ClaimedBy:           entity.ClaimedBy(),
		ClaimedCode:         entity.ClaimedCode(),
		LongContent:         entity.LongContent(),
		PostedAt:            entity.CreatedAt(),
	}
	if !entity.ClaimedAt().IsZero() {
		at := entity.ClaimedAt()
		model.ClaimedAt = &at
	}
	return model, nil
}

func (m *RequestMapperImpl) ToEntities(rows []*models.RequestModel) ([]*request.Request, error) {
	entities := make([]*request.Request, 0, len(rows))
	for _, row := range rows {
		entity, err := m.ToEntity(row)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// Identities are stored as "code" or "code|CC" strings, the same shape
// the resolver cache uses, so a row stays readable without the registry.
func encodeIdentities(idents []language.Identity) ([]byte, error) {
	codes := make([]string, 0, len(idents))
	for _, ident := range idents {
		code := ident.PreferredCode()
		if ident.Country != "" {
			code += "|" + ident.Country
		}
		codes = append(codes, code)
	}
	return json.Marshal(codes)
}

func (m *RequestMapperImpl) decodeIdentities(raw []byte) ([]language.Identity, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var codes []string
	if err := json.Unmarshal(raw, &codes); err != nil {
		return nil, err
	}
	idents := make([]language.Identity, 0, len(codes))
	for _, encoded := range codes {
		code, country, _ := strings.Cut(encoded, "|")
		ident, ok := m.registry.ByCode(code)
		if !ok {
			// Tolerate codes the current dataset no longer carries.
			ident = language.Identity{Name: code, Code3: code}
		}
		if country != "" {
			ident = ident.WithCountry(country)
		}
		idents = append(idents, ident)
	}
	return idents, nil
}

func decodeSubStatus(raw []byte) (map[string]request.Status, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var plain map[string]string
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, err
	}
	out := make(map[string]request.Status, len(plain))
	for code, st := range plain {
		out[code] = request.Status(st)
	}
	return out, nil
}

// decodeHistory accepts both the JSON array written today and the
// comma-joined string older rows carry.
func decodeHistory(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var legacy string
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, err
	}
	if legacy == "" {
		return nil, nil
	}
	parts := strings.Split(legacy, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

// decodeNotified accepts the per-language map written today and the flat
// username list older rows used, which applied to the primary source.
func decodeNotified(raw []byte, source []language.Identity) (map[string][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var byLang map[string][]string
	if err := json.Unmarshal(raw, &byLang); err == nil {
		return byLang, nil
	}
	var flat []string
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	if len(flat) == 0 {
		return nil, nil
	}
	code := language.CodeUnknown
	if len(source) > 0 {
		code = source[0].PreferredCode()
	}
	return map[string][]string{code: flat}, nil
}
