package request

// Status is the translation state of a request, or of one language of a
// defined-multiple request.
type Status string

const (
	StatusUntranslated Status = "untranslated"
	StatusInProgress   Status = "inprogress"
	StatusNeedsReview  Status = "doublecheck"
	StatusTranslated   Status = "translated"
	StatusMissing      Status = "missing"
)

// Valid reports whether the value is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusUntranslated, StatusInProgress, StatusNeedsReview, StatusTranslated, StatusMissing:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusTranslated
}

// canBecome encodes the allowed transitions. Translated is terminal, and
// needs-review resolves only by approval into translated.
func (s Status) canBecome(next Status) bool {
	if s == next {
		return false
	}
	switch s {
	case StatusUntranslated:
		return next == StatusInProgress || next == StatusNeedsReview ||
			next == StatusTranslated || next == StatusMissing
	case StatusInProgress:
		return next == StatusUntranslated || next == StatusNeedsReview || next == StatusTranslated
	case StatusNeedsReview:
		return next == StatusTranslated || next == StatusInProgress
	case StatusMissing:
		return next == StatusUntranslated
	}
	return false
}
