// Package request holds the translation-request aggregate and its state
// machine.
package request

import (
	"time"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/title"
	apperrors "github.com/kungming2/translator-BOT-reborn/internal/shared/errors"
)

// Request is one translation request post and everything the bot tracks
// about it: direction, lifecycle status, identification history, claim
// state, and who has already been notified.
type Request struct {
	id             string
	author         string
	createdAt      time.Time
	rawTitle       string
	actualTitle    string
	classification title.Classification
	direction      title.Direction

	source         []language.Identity
	target         []language.Identity
	originalSource []language.Identity

	status    Status
	subStatus map[string]Status // per target preferred code, defined-multiple only

	// history records every source language the request has been identified
	// as, in order. It drives notification suppression on re-identification.
	history []string

	notified map[string][]string // language code -> usernames already notified

	claimedBy   string
	claimedAt   time.Time
	claimedCode string // one target language on defined-multiple claims

	longContent bool
}

// NewFromTitle builds a fresh request from a parsed title.
func NewFromTitle(id, author string, createdAt time.Time, rawTitle string, parsed *title.ParsedTitle) (*Request, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("request id is required")
	}
	if parsed == nil {
		return nil, apperrors.NewValidationError("parsed title is required")
	}

	r := &Request{
		id:             id,
		author:         author,
		createdAt:      createdAt,
		rawTitle:       rawTitle,
		actualTitle:    parsed.Actual,
		classification: parsed.Classification,
		direction:      parsed.Direction,
		source:         append([]language.Identity(nil), parsed.Source...),
		target:         append([]language.Identity(nil), parsed.Target...),
		originalSource: append([]language.Identity(nil), parsed.Source...),
		status:         StatusUntranslated,
		notified:       map[string][]string{},
		longContent:    parsed.LongContent,
	}
	for _, src := range parsed.Source {
		r.history = append(r.history, src.PreferredCode())
	}
	r.initSubStatus()
	return r, nil
}

// Reconstruct rebuilds a request from persisted state.
func Reconstruct(
	id, author string,
	createdAt time.Time,
	rawTitle, actualTitle string,
	classification title.Classification,
	direction title.Direction,
	source, target, originalSource []language.Identity,
	status Status,
	subStatus map[string]Status,
	history []string,
	notified map[string][]string,
	claimedBy string,
	claimedAt time.Time,
	claimedCode string,
	longContent bool,
) *Request {
	if subStatus == nil {
		subStatus = map[string]Status{}
	}
	if notified == nil {
		notified = map[string][]string{}
	}
	return &Request{
		id:             id,
		author:         author,
		createdAt:      createdAt,
		rawTitle:       rawTitle,
		actualTitle:    actualTitle,
		classification: classification,
		direction:      direction,
		source:         source,
		target:         target,
		originalSource: originalSource,
		status:         status,
		subStatus:      subStatus,
		history:        history,
		notified:       notified,
		claimedBy:      claimedBy,
		claimedAt:      claimedAt,
		claimedCode:    claimedCode,
		longContent:    longContent,
	}
}

func (r *Request) initSubStatus() {
	r.subStatus = map[string]Status{}
	if r.classification != title.ClassDefinedMultiple {
		return
	}
	for _, tgt := range r.target {
		r.subStatus[tgt.PreferredCode()] = StatusUntranslated
	}
}

func (r *Request) ID() string                            { return r.id }
func (r *Request) Author() string                        { return r.author }
func (r *Request) CreatedAt() time.Time                  { return r.createdAt }
func (r *Request) RawTitle() string                      { return r.rawTitle }
func (r *Request) ActualTitle() string                   { return r.actualTitle }
func (r *Request) Classification() title.Classification  { return r.classification }
func (r *Request) Direction() title.Direction            { return r.direction }
func (r *Request) Source() []language.Identity           { return r.source }
func (r *Request) Target() []language.Identity           { return r.target }
func (r *Request) OriginalSource() []language.Identity   { return r.originalSource }
func (r *Request) Status() Status                        { return r.status }
func (r *Request) History() []string                     { return r.history }
func (r *Request) ClaimedBy() string                     { return r.claimedBy }
func (r *Request) ClaimedAt() time.Time                  { return r.claimedAt }
func (r *Request) ClaimedCode() string                   { return r.claimedCode }
func (r *Request) LongContent() bool                     { return r.longContent }

// ToggleLong flips the long-content flag.
func (r *Request) ToggleLong() {
	r.longContent = !r.longContent
}

// IsMultiple reports whether the request tracks several target languages.
func (r *Request) IsMultiple() bool {
	return r.classification == title.ClassDefinedMultiple ||
		r.classification == title.ClassGeneralMultiple
}

// SubStatus returns the per-language status map of a defined-multiple
// request. The returned map must not be mutated.
func (r *Request) SubStatus() map[string]Status {
	return r.subStatus
}

// NotifiedUsers returns who has been notified for a language so far.
func (r *Request) NotifiedUsers(code string) []string {
	return r.notified[code]
}

// AllNotified returns the whole notified set. The map must not be mutated.
func (r *Request) AllNotified() map[string][]string {
	return r.notified
}

// RecordNotified adds users to the notified set for a language.
func (r *Request) RecordNotified(code string, users []string) {
	r.notified[code] = append(r.notified[code], users...)
}

// NotifyLanguages lists the identities whose subscribers should hear about
// this request: every non-English, non-sentinel side of the direction, plus
// the unknown sentinel for unidentified content.
func (r *Request) NotifyLanguages() []language.Identity {
	var out []language.Identity
	seen := map[string]bool{}
	for _, ident := range append(append([]language.Identity(nil), r.source...), r.target...) {
		code := ident.PreferredCode()
		if code == language.CodeEnglish || code == language.CodeMultiple || code == language.CodeGeneric {
			continue
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, ident)
	}
	return out
}

// ApplyTitleEdit refreshes the request from a re-parsed edited title and
// reports whether anything changed. The notified set and status survive the
// rewrite, so a re-pass over the edited request cannot message the same
// subscribers twice; sub-status progress is kept for languages the edit
// still targets.
func (r *Request) ApplyTitleEdit(rawTitle string, parsed *title.ParsedTitle) bool {
	if parsed == nil || parsed.IsRejected() || parsed.Classification == title.ClassInternal {
		return false
	}
	if rawTitle == r.rawTitle {
		return false
	}

	r.rawTitle = rawTitle
	r.actualTitle = parsed.Actual
	r.classification = parsed.Classification
	r.direction = parsed.Direction
	r.source = append([]language.Identity(nil), parsed.Source...)
	r.target = append([]language.Identity(nil), parsed.Target...)
	r.originalSource = append([]language.Identity(nil), parsed.Source...)
	r.longContent = parsed.LongContent
	for _, src := range parsed.Source {
		code := src.PreferredCode()
		if len(r.history) == 0 || r.history[len(r.history)-1] != code {
			r.history = append(r.history, code)
		}
	}

	previous := r.subStatus
	r.initSubStatus()
	for code := range r.subStatus {
		if st, ok := previous[code]; ok {
			r.subStatus[code] = st
		}
	}
	return true
}

// Identify rewrites the source language and reports whether anything
// changed. Identical consecutive identification is a no-op; identifying a
// translated request is refused.
func (r *Request) Identify(ident language.Identity) (bool, error) {
	if r.status.Terminal() {
		return false, apperrors.NewInvalidTransitionError(string(r.status), "identified")
	}
	code := ident.PreferredCode()
	if len(r.source) == 1 && r.source[0].PreferredCode() == code {
		return false, nil
	}

	r.source = []language.Identity{ident}
	r.history = append(r.history, code)
	r.status = StatusUntranslated
	r.clearClaim()
	return true, nil
}

// ShouldNotifyIdentified reports whether subscribers of the language should
// be notified after an identification. A language that already appears in
// the history is not re-notified, unless it is the most recent entry (the
// request came back to it, e.g. zh -> unknown -> zh).
func (r *Request) ShouldNotifyIdentified(code string) bool {
	if len(r.history) == 0 {
		return true
	}
	for _, past := range r.history[:len(r.history)-1] {
		if past == code {
			return false
		}
	}
	return true
}

// MarkTranslated moves the request (or one language of a defined-multiple)
// to translated. Needs-review resolves into translated through the same
// path.
func (r *Request) MarkTranslated(code string) error {
	if code != "" {
		return r.markSub(code, StatusTranslated)
	}
	if !r.status.canBecome(StatusTranslated) {
		return apperrors.NewInvalidTransitionError(string(r.status), string(StatusTranslated))
	}
	r.status = StatusTranslated
	r.clearClaim()
	return nil
}

// MarkNeedsReview flags a translation as awaiting review.
func (r *Request) MarkNeedsReview(code string) error {
	if code != "" {
		return r.markSub(code, StatusNeedsReview)
	}
	if !r.status.canBecome(StatusNeedsReview) {
		return apperrors.NewInvalidTransitionError(string(r.status), string(StatusNeedsReview))
	}
	r.status = StatusNeedsReview
	r.clearClaim()
	return nil
}

// MarkMissing flags the request (or one language of a defined-multiple) as
// lacking translatable content. Only an untouched scope can be marked
// missing.
func (r *Request) MarkMissing(code string) error {
	if code != "" {
		return r.markSub(code, StatusMissing)
	}
	if r.status != StatusUntranslated {
		return apperrors.NewInvalidTransitionError(string(r.status), string(StatusMissing))
	}
	r.status = StatusMissing
	return nil
}

func (r *Request) markSub(code string, next Status) error {
	if r.classification != title.ClassDefinedMultiple {
		return apperrors.NewMalformedCommandError(
			"language-qualified status commands only apply to defined-multiple requests")
	}
	current, tracked := r.subStatus[code]
	if !tracked {
		return apperrors.NewNotFoundError("language not tracked by this request", code)
	}
	if !current.canBecome(next) {
		return apperrors.NewInvalidTransitionError(string(current), string(next))
	}
	r.subStatus[code] = next

	if next == StatusTranslated && r.allSubTranslated() {
		r.status = StatusTranslated
		r.clearClaim()
	}
	return nil
}

func (r *Request) allSubTranslated() bool {
	for _, status := range r.subStatus {
		if status != StatusTranslated {
			return false
		}
	}
	return len(r.subStatus) > 0
}

// Claim reserves the request for a translator. A non-empty code scopes the
// claim to one target language of a defined-multiple request. A live claim
// by someone else is a conflict until it expires.
func (r *Request) Claim(user string, at time.Time, expiry time.Duration, code string) error {
	if r.claimedBy != "" && r.claimedBy != user && at.Sub(r.claimedAt) < expiry {
		return apperrors.NewConflictError("request already claimed", r.claimedBy)
	}
	if code != "" {
		if r.classification != title.ClassDefinedMultiple {
			return apperrors.NewMalformedCommandError(
				"language-qualified status commands only apply to defined-multiple requests")
		}
		current, tracked := r.subStatus[code]
		if !tracked {
			return apperrors.NewNotFoundError("language not tracked by this request", code)
		}
		if current != StatusUntranslated && current != StatusNeedsReview && current != StatusInProgress {
			return apperrors.NewInvalidTransitionError(string(current), string(StatusInProgress))
		}
		r.subStatus[code] = StatusInProgress
		r.claimedBy = user
		r.claimedAt = at
		r.claimedCode = code
		return nil
	}
	if r.status != StatusUntranslated && r.status != StatusNeedsReview && r.status != StatusInProgress {
		return apperrors.NewInvalidTransitionError(string(r.status), string(StatusInProgress))
	}
	r.status = StatusInProgress
	r.claimedBy = user
	r.claimedAt = at
	r.claimedCode = ""
	return nil
}

// ClaimExpired reports whether an in-progress claim has aged out.
func (r *Request) ClaimExpired(now time.Time, expiry time.Duration) bool {
	if r.claimedBy == "" || now.Sub(r.claimedAt) < expiry {
		return false
	}
	if r.claimedCode != "" {
		return r.subStatus[r.claimedCode] == StatusInProgress
	}
	return r.status == StatusInProgress
}

// ReleaseClaim drops an expired or abandoned claim back to untranslated,
// touching only the claimed language on a scoped claim.
func (r *Request) ReleaseClaim() error {
	if r.claimedCode != "" {
		if r.subStatus[r.claimedCode] != StatusInProgress {
			return apperrors.NewInvalidTransitionError(
				string(r.subStatus[r.claimedCode]), string(StatusUntranslated))
		}
		r.subStatus[r.claimedCode] = StatusUntranslated
		r.clearClaim()
		return nil
	}
	if r.status != StatusInProgress {
		return apperrors.NewInvalidTransitionError(string(r.status), string(StatusUntranslated))
	}
	r.status = StatusUntranslated
	r.clearClaim()
	return nil
}

// Reset restores the original title-derived state. Only the author or a
// moderator may reset.
func (r *Request) Reset(by string, isMod bool) error {
	if by != r.author && !isMod {
		return apperrors.NewForbiddenError("only the author or a moderator can reset a request")
	}
	r.source = append([]language.Identity(nil), r.originalSource...)
	r.status = StatusUntranslated
	r.initSubStatus()
	r.clearClaim()
	if len(r.history) > len(r.originalSource) {
		r.history = r.history[:len(r.originalSource)]
	}
	return nil
}

func (r *Request) clearClaim() {
	r.claimedBy = ""
	r.claimedAt = time.Time{}
	r.claimedCode = ""
}
