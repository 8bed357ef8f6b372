// Package title parses submission titles into a translation direction and a
// request classification.
package title

import (
	"strings"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
)

// Classification buckets a request by what its title asks for.
type Classification string

const (
	ClassSingle          Classification = "single"
	ClassDefinedMultiple Classification = "defined_multiple"
	ClassGeneralMultiple Classification = "general_multiple"
	ClassInternal        Classification = "internal"
	ClassRejected        Classification = "rejected"
)

// RejectionReason explains why a title was rejected.
type RejectionReason string

const (
	RejectNone        RejectionReason = ""
	RejectNoDirection RejectionReason = "no_direction_marker"
	RejectNoTarget    RejectionReason = "no_resolvable_target"
	RejectEnglishOnly RejectionReason = "english_to_english"
)

// Direction describes where English sits in the request, which drives
// notification wording and flair selection.
type Direction string

const (
	DirectionEnglishTo   Direction = "english_to"
	DirectionEnglishFrom Direction = "english_from"
	DirectionEnglishBoth Direction = "english_both"
	DirectionEnglishNone Direction = "english_none"
)

// ParsedTitle is the full parse result for one submission title.
type ParsedTitle struct {
	Source         []language.Identity
	Target         []language.Identity
	Classification Classification
	Direction      Direction
	Actual         string
	Suggested      string
	Reason         RejectionReason
	Notifiable     bool
	LongContent    bool
}

// IsRejected reports whether the title failed parsing.
func (p *ParsedTitle) IsRejected() bool {
	return p.Classification == ClassRejected
}

// IsMultiple reports whether the request targets more than one language.
func (p *ParsedTitle) IsMultiple() bool {
	return p.Classification == ClassDefinedMultiple || p.Classification == ClassGeneralMultiple
}

// SourceCodes returns the preferred codes of all resolved sources.
func (p *ParsedTitle) SourceCodes() []string {
	return codesOf(p.Source)
}

// TargetCodes returns the preferred codes of all resolved targets.
func (p *ParsedTitle) TargetCodes() []string {
	return codesOf(p.Target)
}

func codesOf(idents []language.Identity) []string {
	codes := make([]string, 0, len(idents))
	for _, ident := range idents {
		codes = append(codes, ident.PreferredCode())
	}
	return codes
}

func namesOf(idents []language.Identity) string {
	names := make([]string, 0, len(idents))
	for _, ident := range idents {
		names = append(names, ident.DisplayName())
	}
	return strings.Join(names, "/")
}
