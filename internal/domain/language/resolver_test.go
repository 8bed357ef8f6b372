package language

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kungming2/translator-BOT-reborn/internal/shared/errors"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(newTestRegistry(t), nil, 0.75, nil)
}

func TestResolvePriorityChain(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{"canonical name", "German", "de"},
		{"case insensitive name", "FRENCH", "fr"},
		{"alternate name", "farsi", "fa"},
		{"iso 639-1", "de", "de"},
		{"iso 639-3", "deu", "de"},
		{"iso 639-2B synonym", "ger", "de"},
		{"code outranks alternate name", "msa", "ms"},
		{"mistake abbreviation", "jp", "ja"},
		{"script code", "Cyrl", "cyrl"},
		{"script free name", "hanzi", "hani"},
		{"language outranks script by name", "latin", "la"},
		{"fuzzy typo", "japanesse", "ja"},
		{"misspelled english", "Englsih", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident, err := resolver.Resolve(ctx, tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ident.PreferredCode())
		})
	}
}

func TestResolveCompounds(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	hk, err := resolver.Resolve(ctx, "zh-HK")
	require.NoError(t, err)
	assert.Equal(t, "yue", hk.PreferredCode())

	unknownScript, err := resolver.Resolve(ctx, "unknown-Cyrl")
	require.NoError(t, err)
	assert.Equal(t, "cyrl", unknownScript.PreferredCode())

	br, err := resolver.Resolve(ctx, "pt-BR")
	require.NoError(t, err)
	assert.Equal(t, "pt", br.PreferredCode())
	assert.Equal(t, "BR", br.Country)
}

func TestResolveCountryQualified(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	at, err := resolver.Resolve(ctx, "German (Austria)")
	require.NoError(t, err)
	assert.Equal(t, "de", at.PreferredCode())
	assert.Equal(t, "AT", at.Country)

	// de-CH is a defined compound lect, so the qualifier upgrades the match.
	ch, err := resolver.Resolve(ctx, "German (Switzerland)")
	require.NoError(t, err)
	assert.Equal(t, "gsw", ch.PreferredCode())
}

func TestResolveSpecificMode(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	es, err := resolver.ResolveSpecific(ctx, "es")
	require.NoError(t, err)
	assert.Equal(t, "es", es.PreferredCode())

	spa, err := resolver.ResolveSpecific(ctx, "spa")
	require.NoError(t, err)
	assert.Equal(t, "es", spa.PreferredCode())

	hani, err := resolver.ResolveSpecific(ctx, "Hani")
	require.NoError(t, err)
	assert.Equal(t, "hani", hani.PreferredCode())

	// ger is 639-2B, not 639-3: strict mode rejects it.
	_, err = resolver.ResolveSpecific(ctx, "ger")
	assert.True(t, apperrors.IsUnresolvableError(err))

	// Names never resolve in strict mode.
	_, err = resolver.ResolveSpecific(ctx, "German")
	assert.True(t, apperrors.IsUnresolvableError(err))
}

func TestFuzzyDenylistAndIgnoreWords(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	// Romani is close enough to Romanian to fuzzy-match, and would be wrong.
	_, err := resolver.Resolve(ctx, "romani")
	assert.True(t, apperrors.IsUnresolvableError(err))

	// Ignore-listed words never fuzz no matter how close they land.
	_, err = resolver.Resolve(ctx, "languages")
	assert.True(t, apperrors.IsUnresolvableError(err))
}

// Every machine code in the registry must resolve back to the identity that
// carries it, even when the code doubles as another identity's alternate
// name (Arabic lists "msa", which is Malay's ISO 639-3 code).
func TestResolveCodeRoundTrip(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	check := func(code string, got Identity) {
		t.Helper()
		ownCodes := []string{got.Code1, got.Code3, got.Code2B, strings.ToLower(got.Script)}
		assert.Contains(t, ownCodes, strings.ToLower(code),
			"code %q resolved to %s, whose code set does not contain it", code, got.Name)
	}

	for _, ident := range resolver.Registry().All() {
		if ident.IsSentinel() {
			continue
		}
		for _, code := range []string{ident.Code1, ident.Code3, ident.Code2B} {
			if code == "" {
				continue
			}
			got, err := resolver.Resolve(ctx, code)
			require.NoError(t, err, "code %q", code)
			check(code, got)
		}
		// Script codes that double as language names (Thai) lose the name
		// tie-break, so they round-trip through the specific-mode path.
		if ident.IsScript() {
			got, err := resolver.ResolveSpecific(ctx, ident.Script)
			require.NoError(t, err, "script code %q", ident.Script)
			check(ident.Script, got)
		}
	}
}

func TestResolveUnresolvable(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	for _, token := range []string{"", "   ", "qqxyz", "!!"} {
		_, err := resolver.Resolve(ctx, token)
		assert.True(t, apperrors.IsUnresolvableError(err), "token %q", token)
	}
}

func TestParseLanguageList(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	resolved, dropped := resolver.ParseLanguageList(ctx, "german+french+qqxyz+de")
	require.Len(t, resolved, 2)
	assert.Equal(t, "de", resolved[0].PreferredCode())
	assert.Equal(t, "fr", resolved[1].PreferredCode())
	assert.Equal(t, []string{"qqxyz"}, dropped)

	resolved, dropped = resolver.ParseLanguageList(ctx, "ja, ko, zh")
	require.Len(t, resolved, 3)
	assert.Empty(t, dropped)
}

type mapCache struct {
	entries map[string]string
	sets    int
}

func (c *mapCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key, value string) error {
	c.entries[key] = value
	c.sets++
	return nil
}

func TestResolverCachesByTokenAndMode(t *testing.T) {
	cache := &mapCache{entries: map[string]string{}}
	resolver := NewResolver(newTestRegistry(t), cache, 0.75, nil)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, "german")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := resolver.Resolve(ctx, "german")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "second lookup must hit the cache")
	assert.Equal(t, first.PreferredCode(), second.PreferredCode())

	// Strict and loose lookups of the same token are distinct entries.
	_, err = resolver.ResolveSpecific(ctx, "es")
	require.NoError(t, err)
	_, err = resolver.Resolve(ctx, "es")
	require.NoError(t, err)
	assert.Equal(t, 3, cache.sets)

	// Country qualifiers survive the cache round trip.
	_, err = resolver.Resolve(ctx, "pt-BR")
	require.NoError(t, err)
	cached, err := resolver.Resolve(ctx, "pt-BR")
	require.NoError(t, err)
	assert.Equal(t, "pt", cached.PreferredCode())
	assert.Equal(t, "BR", cached.Country)
}
