package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanionAnchorRoundTrip(t *testing.T) {
	body := WithAnchor("This request appears to be in an unknown language.", AnchorUnknown)

	tag, ok := ParseAnchor(body)
	require.True(t, ok)
	assert.Equal(t, AnchorUnknown, tag)

	_, ok = ParseAnchor("no anchor in this comment")
	assert.False(t, ok)
}

func TestCompanionCommentTracking(t *testing.T) {
	companion := NewCompanion("t3_abc123")
	companion.SetComment(AnchorClaim, "t1_claim01")

	id, ok := companion.Comment(AnchorClaim)
	require.True(t, ok)
	assert.Equal(t, "t1_claim01", id)

	id, ok = companion.RemoveComment(AnchorClaim)
	require.True(t, ok)
	assert.Equal(t, "t1_claim01", id)

	_, ok = companion.Comment(AnchorClaim)
	assert.False(t, ok)
}
