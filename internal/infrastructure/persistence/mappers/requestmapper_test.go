package mappers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/title"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/persistence/models"
)

func newMapper(t *testing.T) (*RequestMapperImpl, *language.Registry) {
	t.Helper()
	reg, err := language.NewRegistry()
	require.NoError(t, err)
	return &RequestMapperImpl{registry: reg}, reg
}

func sampleRequest(t *testing.T, reg *language.Registry) *request.Request {
	t.Helper()
	pt, ok := reg.ByCode("pt")
	require.True(t, ok)
	parsed := &title.ParsedTitle{
		Source:         []language.Identity{pt.WithCountry("BR")},
		Target:         []language.Identity{reg.English()},
		Classification: title.ClassSingle,
		Actual:         "birth certificate",
	}
	req, err := request.NewFromTitle("t3_x1y2z3", "poster", time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC), "[PT-BR > EN] birth certificate", parsed)
	require.NoError(t, err)
	req.RecordNotified("pt", []string{"helper_one", "helper_two"})
	return req
}

func TestRequestRoundTrip(t *testing.T) {
	mapper, reg := newMapper(t)
	req := sampleRequest(t, reg)

	model, err := mapper.ToModel(req)
	require.NoError(t, err)
	back, err := mapper.ToEntity(model)
	require.NoError(t, err)

	assert.Equal(t, req.ID(), back.ID())
	assert.Equal(t, req.Author(), back.Author())
	assert.Equal(t, req.Status(), back.Status())
	assert.Equal(t, req.Classification(), back.Classification())
	require.Len(t, back.Source(), 1)
	assert.Equal(t, "pt", back.Source()[0].PreferredCode())
	assert.Equal(t, "BR", back.Source()[0].Country)
	assert.Equal(t, []string{"helper_one", "helper_two"}, back.NotifiedUsers("pt"))
	assert.Equal(t, req.History(), back.History())
}

func TestRequestClaimTimestampRoundTrip(t *testing.T) {
	mapper, reg := newMapper(t)
	req := sampleRequest(t, reg)
	at := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, req.Claim("translator_x", at, 8*time.Hour, ""))

	model, err := mapper.ToModel(req)
	require.NoError(t, err)
	require.NotNil(t, model.ClaimedAt)

	back, err := mapper.ToEntity(model)
	require.NoError(t, err)
	assert.Equal(t, "translator_x", back.ClaimedBy())
	assert.Equal(t, at, back.ClaimedAt())
}

func TestRequestScopedClaimRoundTrip(t *testing.T) {
	mapper, reg := newMapper(t)
	de, ok := reg.ByCode("de")
	require.True(t, ok)
	fr, ok := reg.ByCode("fr")
	require.True(t, ok)
	parsed := &title.ParsedTitle{
		Source:         []language.Identity{reg.English()},
		Target:         []language.Identity{de, fr},
		Classification: title.ClassDefinedMultiple,
		Actual:         "community flyer",
	}
	req, err := request.NewFromTitle("t3_multi9", "poster", time.Now(), "[EN > DE/FR] flyer", parsed)
	require.NoError(t, err)
	require.NoError(t, req.Claim("translator_x", time.Now(), 8*time.Hour, "fr"))

	model, err := mapper.ToModel(req)
	require.NoError(t, err)
	back, err := mapper.ToEntity(model)
	require.NoError(t, err)
	assert.Equal(t, "fr", back.ClaimedCode())
	assert.Equal(t, request.StatusInProgress, back.SubStatus()["fr"])
	assert.Equal(t, request.StatusUntranslated, back.SubStatus()["de"])
}

func TestLegacyNotifiedListDecodes(t *testing.T) {
	mapper, _ := newMapper(t)

	model := &models.RequestModel{
		ID:             "t3_old001",
		Author:         "poster",
		RawTitle:       "[DE > EN] postcard",
		Classification: string(title.ClassSingle),
		Status:         "untranslated",
		SourceCodes:    []byte(`["de"]`),
		TargetCodes:    []byte(`["en"]`),
		Notified:       []byte(`["veteran","old_timer"]`),
		PostedAt:       time.Now(),
	}

	back, err := mapper.ToEntity(model)
	require.NoError(t, err)
	assert.Equal(t, []string{"veteran", "old_timer"}, back.NotifiedUsers("de"))
}

func TestLegacyHistoryStringDecodes(t *testing.T) {
	mapper, _ := newMapper(t)

	model := &models.RequestModel{
		ID:             "t3_old002",
		Author:         "poster",
		RawTitle:       "[Unknown > EN] stamp",
		Classification: string(title.ClassSingle),
		Status:         "untranslated",
		SourceCodes:    []byte(`["zh"]`),
		TargetCodes:    []byte(`["en"]`),
		History:        []byte(`"unknown, zh"`),
		PostedAt:       time.Now(),
	}

	back, err := mapper.ToEntity(model)
	require.NoError(t, err)
	assert.Equal(t, []string{"unknown", "zh"}, back.History())
}

func TestMissingOriginalSourceFallsBack(t *testing.T) {
	mapper, _ := newMapper(t)

	model := &models.RequestModel{
		ID:             "t3_old003",
		Author:         "poster",
		RawTitle:       "[FR > EN] letter",
		Classification: string(title.ClassSingle),
		Status:         "untranslated",
		SourceCodes:    []byte(`["fr"]`),
		TargetCodes:    []byte(`["en"]`),
		PostedAt:       time.Now(),
	}

	back, err := mapper.ToEntity(model)
	require.NoError(t, err)
	require.Len(t, back.OriginalSource(), 1)
	assert.Equal(t, "fr", back.OriginalSource()[0].PreferredCode())
}

func TestUnknownCodeTolerated(t *testing.T) {
	mapper, _ := newMapper(t)

	model := &models.RequestModel{
		ID:             "t3_old004",
		Author:         "poster",
		RawTitle:       "[??? > EN] mystery",
		Classification: string(title.ClassSingle),
		Status:         "untranslated",
		SourceCodes:    []byte(`["xyz"]`),
		TargetCodes:    []byte(`["en"]`),
		PostedAt:       time.Now(),
	}

	back, err := mapper.ToEntity(model)
	require.NoError(t, err)
	require.Len(t, back.Source(), 1)
	assert.Equal(t, "xyz", back.Source()[0].PreferredCode())
}
