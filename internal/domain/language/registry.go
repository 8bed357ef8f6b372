package language

import (
	"embed"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type settings struct {
	FuzzyIgnore   []string          `yaml:"fuzzy_ignore"`
	FuzzyDenylist [][]string        `yaml:"fuzzy_denylist"`
	Compound      map[string]string `yaml:"compound"`
	BroadMultiple []string          `yaml:"broad_multiple"`
}

// Registry is the immutable language/script/country table. It is built once
// from the embedded dataset; every lookup is read-only and safe for
// concurrent use.
type Registry struct {
	identities []Identity

	byCode1   map[string]int
	byCode3   map[string]int
	byCode2B  map[string]int
	byScript  map[string]int
	byName    map[string]int
	byMistake map[string]int

	countryName map[string]string // AT -> Austria
	countryCode map[string]string // austria -> AT

	compound    map[string]string
	fuzzyIgnore map[string]bool
	denylist    map[string]map[string]bool
	broad       map[string]bool
}

// NewRegistry builds the registry from the embedded dataset.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		byCode1:     map[string]int{},
		byCode3:     map[string]int{},
		byCode2B:    map[string]int{},
		byScript:    map[string]int{},
		byName:      map[string]int{},
		byMistake:   map[string]int{},
		countryName: map[string]string{},
		countryCode: map[string]string{},
		fuzzyIgnore: map[string]bool{},
		denylist:    map[string]map[string]bool{},
		broad:       map[string]bool{},
	}

	var languages []Identity
	if err := loadYAML("data/languages.yaml", &languages); err != nil {
		return nil, err
	}
	var scripts []Identity
	if err := loadYAML("data/scripts.yaml", &scripts); err != nil {
		return nil, err
	}
	var countries map[string]string
	if err := loadYAML("data/countries.yaml", &countries); err != nil {
		return nil, err
	}
	var cfg settings
	if err := loadYAML("data/settings.yaml", &cfg); err != nil {
		return nil, err
	}

	// Languages index first so that name collisions with scripts resolve to
	// the language.
	for _, ident := range languages {
		if err := r.addIdentity(ident); err != nil {
			return nil, err
		}
	}
	for _, ident := range scripts {
		if err := r.addIdentity(ident); err != nil {
			return nil, err
		}
	}

	for code, name := range countries {
		upper := strings.ToUpper(code)
		r.countryName[upper] = name
		r.countryCode[NormalizeToken(name)] = upper
	}

	for _, w := range cfg.FuzzyIgnore {
		r.fuzzyIgnore[NormalizeToken(w)] = true
	}
	for _, pair := range cfg.FuzzyDenylist {
		if len(pair) != 2 {
			return nil, fmt.Errorf("fuzzy denylist entries must be pairs, got %v", pair)
		}
		a, b := NormalizeToken(pair[0]), NormalizeToken(pair[1])
		r.addDenied(a, b)
		r.addDenied(b, a)
	}
	r.compound = map[string]string{}
	for k, v := range cfg.Compound {
		r.compound[strings.ToLower(k)] = v
	}
	for _, w := range cfg.BroadMultiple {
		r.broad[NormalizeToken(w)] = true
	}

	return r, nil
}

func loadYAML(path string, out any) error {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return nil
}

func (r *Registry) addIdentity(ident Identity) error {
	idx := len(r.identities)
	r.identities = append(r.identities, ident)

	if ident.Code1 != "" {
		if err := r.index(r.byCode1, strings.ToLower(ident.Code1), idx, "639-1"); err != nil {
			return err
		}
	}
	if ident.Code3 != "" {
		if err := r.index(r.byCode3, strings.ToLower(ident.Code3), idx, "639-3"); err != nil {
			return err
		}
	}
	if ident.Code2B != "" {
		if err := r.index(r.byCode2B, strings.ToLower(ident.Code2B), idx, "639-2B"); err != nil {
			return err
		}
	}
	if ident.Script != "" {
		if err := r.index(r.byScript, strings.ToLower(ident.Script), idx, "15924"); err != nil {
			return err
		}
	}
	if ident.Mistake != "" {
		r.byMistake[strings.ToLower(ident.Mistake)] = idx
	}

	names := append([]string{ident.Name}, ident.Alternates...)
	for _, name := range names {
		key := NormalizeToken(name)
		if key == "" {
			continue
		}
		// First writer wins: languages are indexed before scripts.
		if _, exists := r.byName[key]; !exists {
			r.byName[key] = idx
		}
	}
	return nil
}

func (r *Registry) index(m map[string]int, key string, idx int, kind string) error {
	if prev, exists := m[key]; exists {
		return fmt.Errorf("duplicate %s code %q for %s and %s",
			kind, key, r.identities[prev].Name, r.identities[idx].Name)
	}
	m[key] = idx
	return nil
}

func (r *Registry) addDenied(from, to string) {
	if r.denylist[from] == nil {
		r.denylist[from] = map[string]bool{}
	}
	r.denylist[from][to] = true
}

// All returns every identity in the registry.
func (r *Registry) All() []Identity {
	return r.identities
}

// ByCode resolves any ISO code class: 639-1, 639-3, 639-2B, or 15924.
func (r *Registry) ByCode(code string) (Identity, bool) {
	key := strings.ToLower(strings.TrimSpace(code))
	for _, m := range []map[string]int{r.byCode1, r.byCode3, r.byCode2B, r.byScript} {
		if idx, ok := m[key]; ok {
			return r.identities[idx], true
		}
	}
	return Identity{}, false
}

// ByCode1 resolves an ISO 639-1 code only.
func (r *Registry) ByCode1(code string) (Identity, bool) {
	idx, ok := r.byCode1[strings.ToLower(code)]
	if !ok {
		return Identity{}, false
	}
	return r.identities[idx], true
}

// ByCode3 resolves an ISO 639-3 code only.
func (r *Registry) ByCode3(code string) (Identity, bool) {
	idx, ok := r.byCode3[strings.ToLower(code)]
	if !ok {
		return Identity{}, false
	}
	return r.identities[idx], true
}

// ByCode2B resolves an ISO 639-2B bibliographic code only.
func (r *Registry) ByCode2B(code string) (Identity, bool) {
	idx, ok := r.byCode2B[strings.ToLower(code)]
	if !ok {
		return Identity{}, false
	}
	return r.identities[idx], true
}

// ByScriptCode resolves an ISO 15924 script code only.
func (r *Registry) ByScriptCode(code string) (Identity, bool) {
	idx, ok := r.byScript[strings.ToLower(code)]
	if !ok {
		return Identity{}, false
	}
	return r.identities[idx], true
}

// ByName resolves a canonical or alternate name, case- and
// diacritic-insensitive. Languages win name collisions with scripts.
func (r *Registry) ByName(name string) (Identity, bool) {
	idx, ok := r.byName[NormalizeToken(name)]
	if !ok {
		return Identity{}, false
	}
	return r.identities[idx], true
}

// ByMistake resolves a known wrong abbreviation (jp, kr, cn, ...).
func (r *Registry) ByMistake(code string) (Identity, bool) {
	idx, ok := r.byMistake[strings.ToLower(code)]
	if !ok {
		return Identity{}, false
	}
	return r.identities[idx], true
}

// Country resolves a country name or alpha-2 code.
func (r *Registry) Country(token string) (code, name string, ok bool) {
	trimmed := strings.TrimSpace(token)
	if len(trimmed) == 2 {
		upper := strings.ToUpper(trimmed)
		if n, found := r.countryName[upper]; found {
			return upper, n, true
		}
	}
	if c, found := r.countryCode[NormalizeToken(trimmed)]; found {
		return c, r.countryName[c], true
	}
	return "", "", false
}

// CompoundLect returns the distinct lect code for a language-country
// compound such as zh-HK, if one is defined.
func (r *Registry) CompoundLect(compound string) (Identity, bool) {
	code, ok := r.compound[strings.ToLower(compound)]
	if !ok {
		return Identity{}, false
	}
	return r.ByCode(code)
}

// IsFuzzyIgnored reports whether the token is excluded from fuzzy matching.
func (r *Registry) IsFuzzyIgnored(token string) bool {
	return r.fuzzyIgnore[NormalizeToken(token)]
}

// IsDeniedPair reports whether fuzzy matching the token onto the candidate
// name is forbidden.
func (r *Registry) IsDeniedPair(token, candidate string) bool {
	return r.denylist[NormalizeToken(token)][NormalizeToken(candidate)]
}

// IsBroadMultiple reports whether the word marks a request as open to any
// target language.
func (r *Registry) IsBroadMultiple(word string) bool {
	return r.broad[NormalizeToken(word)]
}

// Unknown returns the unknown-content sentinel.
func (r *Registry) Unknown() Identity {
	ident, _ := r.ByCode3(CodeUnknown)
	return ident
}

// Multiple returns the multiple-languages sentinel.
func (r *Registry) Multiple() Identity {
	ident, _ := r.ByCode3(CodeMultiple)
	return ident
}

// Generic returns the generic-content sentinel.
func (r *Registry) Generic() Identity {
	ident, _ := r.ByCode3(CodeGeneric)
	return ident
}

// English returns the English identity.
func (r *Registry) English() Identity {
	ident, _ := r.ByCode1(CodeEnglish)
	return ident
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeToken lowercases a token, trims it, and strips diacritics, so
// that "Español" and "espanol" index identically.
func NormalizeToken(token string) string {
	folded, _, err := transform.String(foldTransformer, token)
	if err != nil {
		folded = token
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
