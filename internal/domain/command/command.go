// Package command parses bot commands and lookup requests out of comment
// bodies.
package command

import (
	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
)

// Kind names a recognized command.
type Kind string

const (
	KindIdentify    Kind = "identify"
	KindTranslated  Kind = "translated"
	KindDoubleCheck Kind = "doublecheck"
	KindClaim       Kind = "claim"
	KindMissing     Kind = "missing"
	KindReset       Kind = "reset"
	KindPage        Kind = "page"
	KindSet         Kind = "set"
	KindSearch      Kind = "search"
	KindDelete      Kind = "delete"
	KindLong        Kind = "long"
)

// Command is one parsed trigger. The payload is a tagged variant: language
// arguments, free text, or nothing, gated by kind-aware accessors so a
// handler cannot read the wrong shape.
type Command struct {
	kind           Kind
	raw            string
	languages      []language.Identity
	droppedTokens  []string
	text           string
	specific       bool
	suppressNotify bool
}

// Kind returns the command kind.
func (c Command) Kind() Kind {
	return c.kind
}

// Raw returns the raw argument text as typed.
func (c Command) Raw() string {
	return c.raw
}

// Languages returns the resolved language arguments. ok is false for kinds
// that do not carry languages.
func (c Command) Languages() ([]language.Identity, bool) {
	switch c.kind {
	case KindIdentify, KindSet, KindPage, KindTranslated, KindDoubleCheck,
		KindClaim, KindMissing:
		return c.languages, true
	}
	return nil, false
}

// DroppedTokens returns argument members that failed language resolution.
func (c Command) DroppedTokens() []string {
	return c.droppedTokens
}

// Text returns the free-text argument. ok is false for kinds that do not
// carry text.
func (c Command) Text() (string, bool) {
	if c.kind == KindSearch {
		return c.text, true
	}
	return "", false
}

// IsSpecific reports whether the argument used strict code-class resolution.
func (c Command) IsSpecific() bool {
	return c.specific
}

// NotificationSuppressed reports whether a state-change command in the same
// comment suppresses this command's notifications.
func (c Command) NotificationSuppressed() bool {
	return c.suppressNotify
}

// Lookup is one dictionary or wiki lookup request found in a comment.
type Lookup struct {
	Term string
	// Hint is the language the term should be looked up in, either from an
	// inline :xx code or from script detection.
	Hint    language.Identity
	HasHint bool
	Wiki    bool
}
