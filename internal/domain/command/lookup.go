package command

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
)

var (
	backtickPattern = regexp.MustCompile("`([^`\n]+)`(?::([a-zA-Z]{2,4}))?")
	wikiPattern     = regexp.MustCompile(`\{\{([^{}\n]+)\}\}`)
)

// ParseLookups scans a comment body for dictionary lookups (backticked
// terms, optionally annotated with an inline :xx code) and {{wiki}} lookups.
// Unannotated CJK terms get a script-detected language hint.
func (p *Parser) ParseLookups(ctx context.Context, body string) []Lookup {
	body = codeBlockPat.ReplaceAllString(body, "")

	var lookups []Lookup
	seen := map[string]bool{}

	for _, match := range backtickPattern.FindAllStringSubmatch(body, -1) {
		term := strings.TrimSpace(match[1])
		if term == "" || seen["t:"+term] {
			continue
		}
		seen["t:"+term] = true

		lookup := Lookup{Term: term}
		if match[2] != "" {
			if ident, err := p.resolver.Resolve(ctx, match[2]); err == nil {
				lookup.Hint = ident
				lookup.HasHint = true
			}
		}
		if !lookup.HasHint {
			if ident, ok := p.detectScriptHint(term); ok {
				lookup.Hint = ident
				lookup.HasHint = true
			}
		}
		lookups = append(lookups, lookup)
	}

	for _, match := range wikiPattern.FindAllStringSubmatch(body, -1) {
		term := strings.TrimSpace(match[1])
		if term == "" || seen["w:"+term] {
			continue
		}
		seen["w:"+term] = true
		lookups = append(lookups, Lookup{Term: term, Wiki: true})
	}

	return lookups
}

// detectScriptHint infers a lookup language from the writing system of the
// term. Hangul implies Korean, kana Japanese, and bare Han characters
// Chinese.
func (p *Parser) detectScriptHint(term string) (language.Identity, bool) {
	var hasHan, hasKana, hasHangul bool
	for _, r := range term {
		switch {
		case unicode.Is(unicode.Hangul, r):
			hasHangul = true
		case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
			hasKana = true
		case unicode.Is(unicode.Han, r):
			hasHan = true
		}
	}

	code := ""
	switch {
	case hasHangul:
		code = "ko"
	case hasKana:
		code = "ja"
	case hasHan:
		code = "zh"
	default:
		return language.Identity{}, false
	}
	ident, ok := p.resolver.Registry().ByCode1(code)
	return ident, ok
}
