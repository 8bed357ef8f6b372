package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kungming2/translator-BOT-reborn/internal/shared/errors"
)

func TestNewSubscriptionNormalizesCode(t *testing.T) {
	sub, err := New("  PT-BR ", "polyglot", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "pt-br", sub.LanguageCode())
	assert.Equal(t, "polyglot", sub.Username())
}

func TestNewSubscriptionValidation(t *testing.T) {
	_, err := New("", "someone", time.Now())
	assert.True(t, apperrors.IsValidationError(err))

	_, err = New("de", "   ", time.Now())
	assert.True(t, apperrors.IsValidationError(err))
}

func TestReconstructRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := Reconstruct("yue", "canto_fan", at)

	assert.Equal(t, "yue", sub.LanguageCode())
	assert.Equal(t, "canto_fan", sub.Username())
	assert.Equal(t, at, sub.CreatedAt())
}
