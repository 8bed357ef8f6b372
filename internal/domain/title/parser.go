package title

import (
	"context"
	"fmt"
	"strings"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

const (
	// A ">" direction marker must begin within this many runes of the title
	// head; a "to" phrasing within toMarkerHead runes. Markers buried deeper
	// belong to the body text, not the direction segment.
	gtMarkerHead = 50
	toMarkerHead = 25
)

// Parser turns submission titles into ParsedTitle values.
type Parser struct {
	resolver      *language.Resolver
	logger        logger.Interface
	longPostChars int
	longVideoSecs int
}

// NewParser creates a title parser. longPostChars and longVideoSecs bound
// the long-content flag.
func NewParser(resolver *language.Resolver, log logger.Interface, longPostChars, longVideoSecs int) *Parser {
	return &Parser{
		resolver:      resolver,
		logger:        log,
		longPostChars: longPostChars,
		longVideoSecs: longVideoSecs,
	}
}

// Parse extracts the direction segment and classifies the request. Parse
// never fails: malformed titles come back as rejected with a best-effort
// suggested correction.
func (p *Parser) Parse(ctx context.Context, raw string) *ParsedTitle {
	normalized := normalizeTitle(raw)
	lower := strings.ToLower(normalized)

	if strings.Contains(lower, "[meta]") || strings.Contains(lower, "[community]") {
		return &ParsedTitle{
			Classification: ClassInternal,
			Direction:      DirectionEnglishNone,
			Actual:         normalized,
			Suggested:      normalized,
		}
	}

	srcChunk, tgtChunk, actual, bracketed, found := splitDirection(normalized)
	if !found {
		return p.reject(ctx, normalized, RejectNoDirection)
	}

	sources, _ := p.parseChunk(ctx, srcChunk, true)

	// Bracketed titles delimit the target list exactly; otherwise trailing
	// words past the last resolved language belong to the body of the title.
	var targets []language.Identity
	var broad bool
	if bracketed {
		targets, broad = p.parseChunk(ctx, tgtChunk, false)
	} else {
		targets, broad, actual = p.scanPrefix(ctx, tgtChunk)
	}
	actual = cleanActual(actual)

	parsed := &ParsedTitle{
		Source: sources,
		Target: targets,
		Actual: actual,
	}

	switch {
	case broad:
		parsed.Classification = ClassGeneralMultiple
		parsed.Target = []language.Identity{p.registry().Multiple()}
	case len(targets) == 0:
		return p.rejectWithSources(ctx, normalized, actual, sources, RejectNoTarget)
	case len(targets) > 1 && len(sources) > 1:
		// More than one resolved source disqualifies multiple-classification:
		// the source is ambiguous, so the post is handled as a single request.
		parsed.Classification = ClassSingle
	case len(targets) > 1:
		parsed.Classification = ClassDefinedMultiple
	default:
		parsed.Classification = ClassSingle
	}

	if len(parsed.Source) == 0 {
		parsed.Source = []language.Identity{p.registry().Unknown()}
	}

	if englishOnly(parsed.Source, parsed.Target) {
		parsed.Classification = ClassRejected
		parsed.Reason = RejectEnglishOnly
	}

	parsed.Direction = directionOf(parsed.Source, parsed.Target)
	parsed.Notifiable = parsed.Classification != ClassRejected
	parsed.Suggested = suggestTitle(parsed.Source, parsed.Target, parsed.Actual)
	return parsed
}

// FlagLong marks the parse result when the content is long-form: a wall of
// selftext, or a linked video past the duration bound with no timestamp
// fragment pointing at the relevant part.
func (p *Parser) FlagLong(parsed *ParsedTitle, selfText, videoURL string, videoSeconds int) {
	if len([]rune(selfText)) > p.longPostChars {
		parsed.LongContent = true
		return
	}
	if videoSeconds > p.longVideoSecs && !strings.Contains(videoURL, "t=") {
		parsed.LongContent = true
	}
}

func (p *Parser) registry() *language.Registry {
	return p.resolver.Registry()
}

func (p *Parser) reject(ctx context.Context, normalized string, reason RejectionReason) *ParsedTitle {
	return p.rejectWithSources(ctx, normalized, cleanActual(normalized), nil, reason)
}

func (p *Parser) rejectWithSources(ctx context.Context, normalized, actual string, sources []language.Identity, reason RejectionReason) *ParsedTitle {
	if len(sources) == 0 {
		sources = []language.Identity{p.registry().Unknown()}
	}
	targets := []language.Identity{p.registry().English()}
	parsed := &ParsedTitle{
		Source:         sources,
		Target:         targets,
		Classification: ClassRejected,
		Direction:      directionOf(sources, targets),
		Actual:         actual,
		Reason:         reason,
		Suggested:      suggestTitle(sources, targets, actual),
	}
	if p.logger != nil {
		p.logger.Debugw("rejected title", "title", normalized, "reason", reason)
	}
	return parsed
}

// splitDirection locates the direction marker and carves the title into a
// source chunk, a target chunk, and (for bracketed titles) the actual title.
// bracketed reports whether the target list was closed with "]"; unbracketed
// target chunks still carry body text and need prefix scanning.
func splitDirection(normalized string) (src, tgt, actual string, bracketed, found bool) {
	if gtIdx := strings.Index(normalized, ">"); gtIdx >= 0 {
		if len([]rune(normalized[:gtIdx])) > gtMarkerHead {
			return "", "", "", false, false
		}
		before := normalized[:gtIdx]
		after := normalized[gtIdx+1:]

		if open := strings.LastIndex(before, "["); open >= 0 {
			before = before[open+1:]
		}
		if closing := strings.Index(after, "]"); closing >= 0 {
			return before, after[:closing], after[closing+1:], true, true
		}
		return before, after, "", false, true
	}

	lower := strings.ToLower(normalized)
	toIdx := indexOfWord(lower, "to")
	if toIdx < 0 || len([]rune(normalized[:toIdx])) > toMarkerHead {
		return "", "", "", false, false
	}
	before := strings.Trim(normalized[:toIdx], "[ ")
	if strings.TrimSpace(before) == "" {
		return "", "", "", false, false
	}
	after := normalized[toIdx+len("to"):]
	if closing := strings.Index(after, "]"); closing >= 0 {
		return before, after[:closing], after[closing+1:], true, true
	}
	return before, after, "", false, true
}

// indexOfWord returns the byte index of the first standalone occurrence of
// word in s, or -1.
func indexOfWord(s, word string) int {
	offset := 0
	for {
		idx := strings.Index(s[offset:], word)
		if idx < 0 {
			return -1
		}
		idx += offset
		before := idx == 0 || s[idx-1] == ' '
		end := idx + len(word)
		after := end == len(s) || s[end] == ' '
		if before && after && idx > 0 {
			return idx
		}
		offset = end
		if offset >= len(s) {
			return -1
		}
	}
}

// parseChunk resolves a separator-joined language list. For source chunks
// (fromEnd) an unsplittable chunk falls back to scanning the trailing words,
// since request titles often lead with filler ("Translation request: ...").
func (p *Parser) parseChunk(ctx context.Context, chunk string, fromEnd bool) ([]language.Identity, bool) {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return nil, false
	}
	if colon := strings.LastIndex(chunk, ":"); fromEnd && colon >= 0 {
		chunk = chunk[colon+1:]
	}

	var idents []language.Identity
	broad := false
	seen := map[string]bool{}
	for _, part := range splitLanguageList(chunk) {
		if p.registry().IsBroadMultiple(part) {
			broad = true
			continue
		}
		ident, err := p.resolver.Resolve(ctx, part)
		if err != nil {
			continue
		}
		if seen[ident.PreferredCode()] {
			continue
		}
		seen[ident.PreferredCode()] = true
		idents = append(idents, ident)
	}

	if len(idents) == 0 && !broad && fromEnd {
		idents = p.scanSuffix(ctx, chunk)
	}
	return idents, broad
}

// scanPrefix consumes leading language names from an unbracketed target
// chunk and returns the rest as the actual title.
func (p *Parser) scanPrefix(ctx context.Context, chunk string) ([]language.Identity, bool, string) {
	words := strings.Fields(chunk)
	var idents []language.Identity
	broad := false
	seen := map[string]bool{}

	i := 0
	for i < len(words) {
		if isListSeparator(words[i]) && len(idents) > 0 {
			i++
			continue
		}
		if p.registry().IsBroadMultiple(strings.Trim(words[i], ",.!?")) {
			broad = true
			i++
			continue
		}

		matched := false
		max := 3
		if rest := len(words) - i; rest < max {
			max = rest
		}
		for n := max; n >= 1; n-- {
			candidate := strings.Join(words[i:i+n], " ")
			ident, err := p.resolver.Resolve(ctx, candidate)
			if err != nil {
				continue
			}
			if !seen[ident.PreferredCode()] {
				seen[ident.PreferredCode()] = true
				idents = append(idents, ident)
			}
			i += n
			matched = true
			break
		}
		if !matched {
			break
		}
	}
	return idents, broad, strings.Join(words[i:], " ")
}

// scanSuffix resolves the trailing words of a source chunk, longest window
// first.
func (p *Parser) scanSuffix(ctx context.Context, chunk string) []language.Identity {
	words := strings.Fields(chunk)
	max := 3
	if len(words) < max {
		max = len(words)
	}
	for n := max; n >= 1; n-- {
		candidate := strings.Join(words[len(words)-n:], " ")
		if ident, err := p.resolver.Resolve(ctx, candidate); err == nil {
			return []language.Identity{ident}
		}
	}
	return nil
}

func splitLanguageList(chunk string) []string {
	replacer := strings.NewReplacer(
		" and ", ",", " or ", ",", " & ", ",", "&", ",", "+", ",", "/", ",",
	)
	normalized := replacer.Replace(" " + chunk + " ")

	var parts []string
	for _, part := range strings.Split(normalized, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func isListSeparator(word string) bool {
	switch strings.ToLower(strings.Trim(word, ",")) {
	case "and", "or", "&", "/", "":
		return true
	}
	return false
}

func englishOnly(sources, targets []language.Identity) bool {
	onlyEnglish := func(idents []language.Identity) bool {
		if len(idents) == 0 {
			return false
		}
		for _, ident := range idents {
			if ident.PreferredCode() != language.CodeEnglish {
				return false
			}
		}
		return true
	}
	return onlyEnglish(sources) && onlyEnglish(targets)
}

func directionOf(sources, targets []language.Identity) Direction {
	hasEnglish := func(idents []language.Identity) bool {
		for _, ident := range idents {
			if ident.PreferredCode() == language.CodeEnglish {
				return true
			}
		}
		return false
	}
	srcEn, tgtEn := hasEnglish(sources), hasEnglish(targets)
	switch {
	case srcEn && tgtEn:
		return DirectionEnglishBoth
	case tgtEn:
		return DirectionEnglishTo
	case srcEn:
		return DirectionEnglishFrom
	default:
		return DirectionEnglishNone
	}
}

func suggestTitle(sources, targets []language.Identity, actual string) string {
	src := namesOf(sources)
	if src == "" {
		src = "Unknown"
	}
	tgt := namesOf(targets)
	if tgt == "" {
		tgt = "English"
	}
	suggested := fmt.Sprintf("[%s > %s] %s", src, tgt, actual)
	return strings.TrimSpace(suggested)
}

func normalizeTitle(raw string) string {
	replacer := strings.NewReplacer(
		"【", "[", "】", "]",
		"〉", ">", "＞", ">", "→", ">", "⟶", ">",
		"--->", ">", "-->", ">", "->", ">",
		"≥", ">", "》", ">",
	)
	normalized := replacer.Replace(raw)
	return strings.Join(strings.Fields(normalized), " ")
}

func cleanActual(actual string) string {
	return strings.TrimLeft(strings.TrimSpace(actual), "-:,.] ")
}
