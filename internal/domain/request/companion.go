package request

import (
	"regexp"
	"strings"
)

// Companion tracks the bot's own comments on a request. Each bot comment
// carries an invisible markdown anchor ("[](#tag)") so a later pass can find
// and remove or refresh exactly the right comment.
type Companion struct {
	requestID string
	comments  map[string]string // anchor tag -> comment id
}

// Anchor tags the bot embeds in its comments.
const (
	AnchorUnknown   = "unknown"
	AnchorLong      = "longcontent"
	AnchorClaim     = "claim"
	AnchorReference = "reference"
	AnchorMissing   = "missing"
)

var anchorPattern = regexp.MustCompile(`\[\]\(#([a-z]+)\)`)

// NewCompanion creates an empty companion map for a request.
func NewCompanion(requestID string) *Companion {
	return &Companion{
		requestID: requestID,
		comments:  map[string]string{},
	}
}

// ReconstructCompanion rebuilds a companion map from persisted state.
func ReconstructCompanion(requestID string, comments map[string]string) *Companion {
	if comments == nil {
		comments = map[string]string{}
	}
	return &Companion{requestID: requestID, comments: comments}
}

func (c *Companion) RequestID() string {
	return c.requestID
}

// Comments returns the anchor-to-comment map. It must not be mutated.
func (c *Companion) Comments() map[string]string {
	return c.comments
}

// SetComment records the bot comment holding the given anchor.
func (c *Companion) SetComment(tag, commentID string) {
	c.comments[tag] = commentID
}

// Comment returns the bot comment id for an anchor, if one is recorded.
func (c *Companion) Comment(tag string) (string, bool) {
	id, ok := c.comments[tag]
	return id, ok
}

// RemoveComment forgets the comment for an anchor, returning its id.
func (c *Companion) RemoveComment(tag string) (string, bool) {
	id, ok := c.comments[tag]
	if ok {
		delete(c.comments, tag)
	}
	return id, ok
}

// ParseAnchor extracts the anchor tag from a bot comment body.
func ParseAnchor(body string) (string, bool) {
	match := anchorPattern.FindStringSubmatch(body)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// WithAnchor appends the invisible anchor to a comment body.
func WithAnchor(body, tag string) string {
	return strings.TrimRight(body, "\n") + "\n\n[](#" + tag + ")"
}
