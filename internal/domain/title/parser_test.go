package title

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	registry, err := language.NewRegistry()
	require.NoError(t, err)
	resolver := language.NewResolver(registry, nil, 0.75, nil)
	return NewParser(resolver, nil, 1400, 300)
}

func TestParseSingleRequest(t *testing.T) {
	parser := newTestParser(t)
	parsed := parser.Parse(context.Background(), "[Japanese > English] What does this say?")

	assert.Equal(t, ClassSingle, parsed.Classification)
	assert.Equal(t, []string{"ja"}, parsed.SourceCodes())
	assert.Equal(t, []string{"en"}, parsed.TargetCodes())
	assert.Equal(t, DirectionEnglishTo, parsed.Direction)
	assert.Equal(t, "What does this say?", parsed.Actual)
	assert.True(t, parsed.Notifiable)
	assert.Equal(t, "[Japanese > English] What does this say?", parsed.Suggested)
}

func TestParseUnbracketedToPhrasing(t *testing.T) {
	parser := newTestParser(t)
	parsed := parser.Parse(context.Background(), "Japanese to English, a letter from my grandfather")

	assert.Equal(t, ClassSingle, parsed.Classification)
	assert.Equal(t, []string{"ja"}, parsed.SourceCodes())
	assert.Equal(t, []string{"en"}, parsed.TargetCodes())
	assert.Equal(t, "a letter from my grandfather", parsed.Actual)
	assert.Equal(t, "[Japanese > English] a letter from my grandfather", parsed.Suggested)
}

func TestParseClassifications(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	tests := []struct {
		name           string
		title          string
		classification Classification
		targets        []string
	}{
		{"multiple sources stay single", "[Japanese/Korean > English] a note", ClassSingle, []string{"en"}},
		{"defined multiple targets", "[English > German/French] our flyer", ClassDefinedMultiple, []string{"de", "fr"}},
		{"broad keyword", "[English > Any] a short poem", ClassGeneralMultiple, []string{"multiple"}},
		{"ambiguous source disqualifies multiple", "[English/Spanish > French/German] docs", ClassSingle, []string{"de", "fr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := parser.Parse(ctx, tt.title)
			assert.Equal(t, tt.classification, parsed.Classification)
			assert.ElementsMatch(t, tt.targets, parsed.TargetCodes())
		})
	}
}

func TestParseInternalPosts(t *testing.T) {
	parser := newTestParser(t)
	for _, title := range []string{"[META] Rule changes", "[Community] 500k subscribers!"} {
		parsed := parser.Parse(context.Background(), title)
		assert.Equal(t, ClassInternal, parsed.Classification)
		assert.False(t, parsed.Notifiable)
	}
}

func TestParseRejections(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	t.Run("no direction marker", func(t *testing.T) {
		parsed := parser.Parse(ctx, "What does my tattoo mean?")
		assert.Equal(t, ClassRejected, parsed.Classification)
		assert.Equal(t, RejectNoDirection, parsed.Reason)
		assert.False(t, parsed.Notifiable)
		assert.Equal(t, "[Unknown > English] What does my tattoo mean?", parsed.Suggested)
	})

	t.Run("buried marker", func(t *testing.T) {
		padding := strings.Repeat("grandma's letters from the old country ", 2)
		parsed := parser.Parse(ctx, padding+"Japanese > English please")
		assert.Equal(t, ClassRejected, parsed.Classification)
		assert.Equal(t, RejectNoDirection, parsed.Reason)
	})

	t.Run("english to english", func(t *testing.T) {
		parsed := parser.Parse(ctx, "[English > English] a joke")
		assert.Equal(t, ClassRejected, parsed.Classification)
		assert.Equal(t, RejectEnglishOnly, parsed.Reason)
		assert.False(t, parsed.Notifiable)
	})
}

func TestParseUnknownSourceDefaults(t *testing.T) {
	parser := newTestParser(t)
	parsed := parser.Parse(context.Background(), "[unknown > English] an old coin")

	assert.Equal(t, ClassSingle, parsed.Classification)
	assert.Equal(t, []string{"unknown"}, parsed.SourceCodes())
	assert.True(t, parsed.Notifiable)
}

func TestParseDiacriticsAndWideMarkers(t *testing.T) {
	parser := newTestParser(t)
	parsed := parser.Parse(context.Background(), "【Español ＞ English】 una carta vieja")

	assert.Equal(t, ClassSingle, parsed.Classification)
	assert.Equal(t, []string{"es"}, parsed.SourceCodes())
	assert.Equal(t, []string{"en"}, parsed.TargetCodes())
	assert.Equal(t, "una carta vieja", parsed.Actual)
}

func TestFlagLong(t *testing.T) {
	parser := newTestParser(t)
	parsed := &ParsedTitle{}

	parser.FlagLong(parsed, strings.Repeat("a", 1401), "", 0)
	assert.True(t, parsed.LongContent)

	parsed = &ParsedTitle{}
	parser.FlagLong(parsed, "short", "https://video.example/watch?v=1", 400)
	assert.True(t, parsed.LongContent)

	parsed = &ParsedTitle{}
	parser.FlagLong(parsed, "short", "https://video.example/watch?v=1&t=120", 400)
	assert.False(t, parsed.LongContent, "timestamped videos are already addressed")

	parsed = &ParsedTitle{}
	parser.FlagLong(parsed, "short", "https://video.example/watch?v=1", 120)
	assert.False(t, parsed.LongContent)
}
