package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	registry, err := language.NewRegistry()
	require.NoError(t, err)
	return NewParser(language.NewResolver(registry, nil, 0.75, nil), nil)
}

func codes(t *testing.T, cmd Command) []string {
	t.Helper()
	idents, ok := cmd.Languages()
	require.True(t, ok)
	out := make([]string, 0, len(idents))
	for _, ident := range idents {
		out = append(out, ident.PreferredCode())
	}
	return out
}

func TestParseBasicCommands(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	commands := parser.Parse(ctx, "Definitely Korean. !identify:korean and also !claim")
	require.Len(t, commands, 2)
	assert.Equal(t, KindIdentify, commands[0].Kind())
	assert.Equal(t, []string{"ko"}, codes(t, commands[0]))
	assert.Equal(t, KindClaim, commands[1].Kind())
}

func TestParseAliasesAndUnknown(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	commands := parser.Parse(ctx, "!id:zh but definitely !notacommand here")
	require.Len(t, commands, 1)
	assert.Equal(t, KindIdentify, commands[0].Kind())
	assert.Equal(t, []string{"zh"}, codes(t, commands[0]))
}

func TestParseSpecificMode(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	commands := parser.Parse(ctx, "!identify:deu!")
	require.Len(t, commands, 1)
	assert.True(t, commands[0].IsSpecific())
	assert.Equal(t, []string{"de"}, codes(t, commands[0]))

	// ger is 639-2B; strict resolution refuses it and the token is dropped.
	commands = parser.Parse(ctx, "!identify:ger!")
	require.Len(t, commands, 1)
	assert.True(t, commands[0].IsSpecific())
	assert.Empty(t, codes(t, commands[0]))
	assert.Equal(t, []string{"ger"}, commands[0].DroppedTokens())
}

func TestParseClaimLanguageArgument(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	commands := parser.Parse(ctx, "!claim:french")
	require.Len(t, commands, 1)
	assert.Equal(t, KindClaim, commands[0].Kind())
	assert.Equal(t, []string{"fr"}, codes(t, commands[0]))

	commands = parser.Parse(ctx, "!missing:german")
	require.Len(t, commands, 1)
	assert.Equal(t, KindMissing, commands[0].Kind())
	assert.Equal(t, []string{"de"}, codes(t, commands[0]))

	// Bare claims carry no language payload.
	commands = parser.Parse(ctx, "!claim")
	require.Len(t, commands, 1)
	langs, ok := commands[0].Languages()
	assert.True(t, ok)
	assert.Empty(t, langs)
}

func TestParseLongToggle(t *testing.T) {
	parser := newTestParser(t)

	commands := parser.Parse(context.Background(), "!long")
	require.Len(t, commands, 1)
	assert.Equal(t, KindLong, commands[0].Kind())
	_, ok := commands[0].Languages()
	assert.False(t, ok)
}

func TestParseLanguageLists(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	commands := parser.Parse(ctx, `!page:german+french+qqxyz`)
	require.Len(t, commands, 1)
	assert.Equal(t, KindPage, commands[0].Kind())
	assert.Equal(t, []string{"de", "fr"}, codes(t, commands[0]))
	assert.Equal(t, []string{"qqxyz"}, commands[0].DroppedTokens())
}

func TestParseQuotedMultiWordArgument(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	commands := parser.Parse(ctx, `!identify:"middle english" please`)
	require.Len(t, commands, 1)
	assert.Equal(t, []string{"enm"}, codes(t, commands[0]))
}

func TestParseDeduplicates(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	commands := parser.Parse(ctx, "!translated thanks! again: !translated and !translated")
	assert.Len(t, commands, 1)

	// Same kind with a different argument is a different command.
	commands = parser.Parse(ctx, "!identify:zh or maybe !identify:ja")
	assert.Len(t, commands, 2)
}

func TestParseIdempotentPayload(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	first := parser.Parse(ctx, "!identify:korean")
	second := parser.Parse(ctx, "!identify:korean")
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, codes(t, first[0]), codes(t, second[0]))
}

func TestCoOccurrenceSuppression(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	commands := parser.Parse(ctx, "!identify:vietnamese !translated")
	require.Len(t, commands, 2)
	assert.True(t, commands[0].NotificationSuppressed())

	commands = parser.Parse(ctx, "!identify:vietnamese only")
	require.Len(t, commands, 1)
	assert.False(t, commands[0].NotificationSuppressed())
}

func TestCommandsInsideCodeBlocksIgnored(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	commands := parser.Parse(ctx, "```\n!translated\n```\nJust explaining the syntax.")
	assert.Empty(t, commands)
}

func TestSearchCarriesText(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	commands := parser.Parse(ctx, `!search:"lost in translation"`)
	require.Len(t, commands, 1)
	text, ok := commands[0].Text()
	require.True(t, ok)
	assert.Equal(t, "lost in translation", text)

	_, ok = commands[0].Languages()
	assert.False(t, ok, "search has no language payload")
}

func TestParseLookups(t *testing.T) {
	parser := newTestParser(t)
	ctx := context.Background()

	lookups := parser.ParseLookups(ctx, "What does `猫` mean? And `안녕하세요`? Also `bonjour`:fr and {{Hanja}}.")
	require.Len(t, lookups, 4)

	assert.Equal(t, "猫", lookups[0].Term)
	require.True(t, lookups[0].HasHint)
	assert.Equal(t, "zh", lookups[0].Hint.PreferredCode())

	assert.Equal(t, "안녕하세요", lookups[1].Term)
	require.True(t, lookups[1].HasHint)
	assert.Equal(t, "ko", lookups[1].Hint.PreferredCode())

	assert.Equal(t, "bonjour", lookups[2].Term)
	require.True(t, lookups[2].HasHint)
	assert.Equal(t, "fr", lookups[2].Hint.PreferredCode())

	assert.Equal(t, "Hanja", lookups[3].Term)
	assert.True(t, lookups[3].Wiki)
	assert.False(t, lookups[3].HasHint)
}

func TestLookupKanaDetection(t *testing.T) {
	parser := newTestParser(t)

	lookups := parser.ParseLookups(context.Background(), "this one: `ありがとう`")
	require.Len(t, lookups, 1)
	require.True(t, lookups[0].HasHint)
	assert.Equal(t, "ja", lookups[0].Hint.PreferredCode())
}
