package request

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/title"
)

// Label renders the display label (post flair) for the request, bounded to
// maxRunes. Defined-multiple labels list target codes with a check mark on
// translated ones; codes that would overflow the budget are dropped whole,
// never cut mid-code.
func (r *Request) Label(maxRunes int) string {
	if r.classification == title.ClassDefinedMultiple {
		return r.multipleLabel(maxRunes)
	}
	if r.classification == title.ClassGeneralMultiple {
		return truncateLabel("Multiple Languages", maxRunes)
	}

	name := sourceNames(r)
	var label string
	switch r.status {
	case StatusTranslated:
		label = fmt.Sprintf("Translated [%s]", sourceCodeTag(r))
	case StatusNeedsReview:
		label = fmt.Sprintf("Needs Review [%s]", sourceCodeTag(r))
	case StatusInProgress:
		label = fmt.Sprintf("In Progress [%s]", sourceCodeTag(r))
	case StatusMissing:
		label = fmt.Sprintf("Missing Content [%s]", sourceCodeTag(r))
	default:
		label = name
	}
	return truncateLabel(label, maxRunes)
}

func (r *Request) multipleLabel(maxRunes int) string {
	const prefix = "Multiple Languages ["
	const suffix = "]"

	codes := make([]string, 0, len(r.subStatus))
	for code := range r.subStatus {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	budget := maxRunes - len([]rune(prefix)) - len([]rune(suffix))
	var kept []string
	used := 0
	for _, code := range codes {
		entry := strings.ToUpper(code)
		if r.subStatus[code] == StatusTranslated {
			entry += "✔"
		}
		cost := len([]rune(entry))
		if len(kept) > 0 {
			cost += 2 // ", "
		}
		if used+cost > budget {
			break
		}
		kept = append(kept, entry)
		used += cost
	}
	return prefix + strings.Join(kept, ", ") + suffix
}

// A title naming several source languages still flairs as one language:
// the first resolved source wins, in every status.
func sourceNames(r *Request) string {
	if len(r.source) == 0 {
		return ""
	}
	return r.source[0].DisplayName()
}

func sourceCodeTag(r *Request) string {
	if len(r.source) == 0 {
		return ""
	}
	return strings.ToUpper(r.source[0].PreferredCode())
}

func truncateLabel(label string, maxRunes int) string {
	runes := []rune(label)
	if len(runes) <= maxRunes {
		return label
	}
	return string(runes[:maxRunes])
}
