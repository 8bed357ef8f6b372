package language

import (
	"context"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	apperrors "github.com/kungming2/translator-BOT-reborn/internal/shared/errors"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

// Cache stores resolved tokens so repeated titles and commands skip the
// resolution chain. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Resolver maps free-form tokens onto registry identities.
type Resolver struct {
	registry  *Registry
	cache     Cache
	threshold float64
	logger    logger.Interface
}

// NewResolver creates a resolver. cache may be nil; threshold is the minimum
// fuzzy similarity in (0, 1].
func NewResolver(registry *Registry, cache Cache, threshold float64, log logger.Interface) *Resolver {
	return &Resolver{
		registry:  registry,
		cache:     cache,
		threshold: threshold,
		logger:    log,
	}
}

// Registry exposes the underlying table for callers that need direct lookups.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve maps a token onto an identity using the full resolution chain:
// compounds, exact names, codes, known mistakes, scripts, then fuzzy
// matching as a last resort.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, error) {
	return r.resolve(ctx, token, false)
}

// ResolveSpecific maps a token strictly by code class: two characters must
// be an ISO 639-1 code, three an ISO 639-3 code, four an ISO 15924 script
// code. No names, no fuzzy matching.
func (r *Resolver) ResolveSpecific(ctx context.Context, token string) (Identity, error) {
	return r.resolve(ctx, token, true)
}

func (r *Resolver) resolve(ctx context.Context, token string, specific bool) (Identity, error) {
	cleaned := cleanToken(token)
	if cleaned == "" {
		return Identity{}, apperrors.NewUnresolvableError(token, "empty after cleanup")
	}

	cacheKey := cacheKeyFor(cleaned, specific)
	if ident, ok := r.cacheLookup(ctx, cacheKey); ok {
		return ident, nil
	}

	var ident Identity
	var err error
	if specific {
		ident, err = r.resolveByCodeClass(cleaned)
	} else {
		ident, err = r.resolveAny(ctx, cleaned)
	}
	if err != nil {
		return Identity{}, err
	}

	r.cacheStore(ctx, cacheKey, ident)
	return ident, nil
}

func (r *Resolver) resolveByCodeClass(token string) (Identity, error) {
	switch len(token) {
	case 2:
		if ident, ok := r.registry.ByCode1(token); ok {
			return ident, nil
		}
	case 3:
		if ident, ok := r.registry.ByCode3(token); ok {
			return ident, nil
		}
	case 4:
		if ident, ok := r.registry.ByScriptCode(token); ok {
			return ident, nil
		}
	}
	return Identity{}, apperrors.NewUnresolvableError(token, "no code of matching class")
}

func (r *Resolver) resolveAny(ctx context.Context, token string) (Identity, error) {
	if strings.Contains(token, "-") {
		if ident, ok := r.resolveCompound(ctx, token); ok {
			return ident, nil
		}
	}
	if strings.Contains(token, "(") {
		if ident, ok := r.resolveQualified(ctx, token); ok {
			return ident, nil
		}
	}

	// Machine codes outrank names: an alternate name that happens to spell
	// another language's code (Arabic's "msa" vs Malay) must not shadow it.
	// Script codes stay behind the name index so a token naming a language
	// and spelling a script code still resolves to the language.
	switch len([]rune(token)) {
	case 2:
		if ident, ok := r.registry.ByCode1(token); ok {
			return ident, nil
		}
	case 3:
		if ident, ok := r.registry.ByCode3(token); ok {
			return ident, nil
		}
		if ident, ok := r.registry.ByCode2B(token); ok {
			return ident, nil
		}
	}

	if ident, ok := r.registry.ByName(token); ok {
		return ident, nil
	}

	if len([]rune(token)) == 4 {
		if ident, ok := r.registry.ByScriptCode(token); ok {
			return ident, nil
		}
	}
	if ident, ok := r.registry.ByMistake(token); ok {
		return ident, nil
	}

	if ident, ok := r.fuzzyMatch(token); ok {
		return ident, nil
	}

	return Identity{}, apperrors.NewUnresolvableError(token)
}

// resolveCompound handles xx-YY tokens: a defined lect compound (zh-HK),
// unknown plus a script (unknown-Cyrl), or a language plus a country
// qualifier (pt-BR).
func (r *Resolver) resolveCompound(ctx context.Context, token string) (Identity, bool) {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Identity{}, false
	}

	if ident, ok := r.registry.CompoundLect(token); ok {
		return ident, true
	}

	left, right := parts[0], parts[1]
	if strings.EqualFold(left, CodeUnknown) {
		if ident, ok := r.registry.ByScriptCode(right); ok {
			return ident, true
		}
		return Identity{}, false
	}

	base, err := r.resolve(ctx, left, false)
	if err != nil {
		return Identity{}, false
	}
	if code, _, ok := r.registry.Country(right); ok {
		return base.WithCountry(code), true
	}
	return Identity{}, false
}

// resolveQualified handles "German (Austria)" style tokens.
func (r *Resolver) resolveQualified(ctx context.Context, token string) (Identity, bool) {
	open := strings.Index(token, "(")
	closing := strings.Index(token, ")")
	if open < 0 || closing <= open {
		return Identity{}, false
	}
	outer := strings.TrimSpace(token[:open])
	inner := strings.TrimSpace(token[open+1 : closing])
	if outer == "" || inner == "" {
		return Identity{}, false
	}

	base, err := r.resolve(ctx, outer, false)
	if err != nil {
		return Identity{}, false
	}
	code, _, ok := r.registry.Country(inner)
	if !ok {
		return Identity{}, false
	}
	if ident, found := r.registry.CompoundLect(base.PreferredCode() + "-" + strings.ToLower(code)); found {
		return ident, true
	}
	return base.WithCountry(code), true
}

// fuzzyMatch scans every identity name for the closest match above the
// similarity threshold. Languages are scanned before scripts, so a language
// wins ties against a script of equal similarity.
func (r *Resolver) fuzzyMatch(token string) (Identity, bool) {
	normalized := NormalizeToken(token)
	if len([]rune(normalized)) < 4 {
		return Identity{}, false
	}
	if r.registry.IsFuzzyIgnored(normalized) {
		return Identity{}, false
	}

	best := Identity{}
	bestScore := r.threshold
	found := false
	for _, ident := range r.registry.All() {
		for _, name := range append([]string{ident.Name}, ident.Alternates...) {
			if r.registry.IsDeniedPair(normalized, name) {
				continue
			}
			score := similarity(normalized, NormalizeToken(name))
			if score > bestScore || (score == bestScore && !found) {
				best = ident
				bestScore = score
				found = true
			}
		}
	}
	if found && r.logger != nil {
		r.logger.Debugw("fuzzy-resolved token",
			"token", token, "match", best.Name, "score", bestScore)
	}
	return best, found
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// ParseLanguageList resolves a +- or comma-joined multi-language argument.
// Unresolvable members are dropped and returned for caller-side warnings;
// duplicates collapse to the first occurrence.
func (r *Resolver) ParseLanguageList(ctx context.Context, raw string) ([]Identity, []string) {
	splitter := func(c rune) bool {
		return c == '+' || c == ','
	}

	var resolved []Identity
	var dropped []string
	seen := map[string]bool{}
	for _, part := range strings.FieldsFunc(raw, splitter) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ident, err := r.Resolve(ctx, part)
		if err != nil {
			dropped = append(dropped, part)
			continue
		}
		if seen[ident.PreferredCode()] {
			continue
		}
		seen[ident.PreferredCode()] = true
		resolved = append(resolved, ident)
	}
	return resolved, dropped
}

func (r *Resolver) cacheLookup(ctx context.Context, key string) (Identity, bool) {
	if r.cache == nil {
		return Identity{}, false
	}
	value, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		if r.logger != nil {
			r.logger.Warnw("resolver cache read failed", "error", err)
		}
		return Identity{}, false
	}
	if !ok {
		return Identity{}, false
	}

	code, country, _ := strings.Cut(value, "|")
	ident, found := r.registry.ByCode(code)
	if !found {
		return Identity{}, false
	}
	if country != "" {
		ident = ident.WithCountry(country)
	}
	return ident, true
}

func (r *Resolver) cacheStore(ctx context.Context, key string, ident Identity) {
	if r.cache == nil {
		return
	}
	value := ident.PreferredCode()
	if ident.Country != "" {
		value += "|" + ident.Country
	}
	if err := r.cache.Set(ctx, key, value); err != nil && r.logger != nil {
		r.logger.Warnw("resolver cache write failed", "error", err)
	}
}

func cacheKeyFor(token string, specific bool) string {
	if specific {
		return "specific:" + NormalizeToken(token)
	}
	return "any:" + NormalizeToken(token)
}

// cleanToken trims whitespace and strips wrapping punctuation left over from
// title and command extraction.
func cleanToken(token string) string {
	return strings.TrimFunc(token, func(c rune) bool {
		if unicode.IsSpace(c) {
			return true
		}
		switch c {
		case '[', ']', '"', '\'', '.', ',', ';', '!', '?', '*':
			return true
		}
		return false
	})
}
