// Package platform defines the ports the bot uses to talk to its host
// community site. Concrete API clients implement these interfaces; the
// processing passes only ever see the port types.
package platform

import (
	"context"
	"time"
)

// Post is a new submission in the watched community.
type Post struct {
	ID           string
	Author       string
	Title        string
	SelfText     string
	VideoURL     string
	VideoSeconds int
	CreatedAt    time.Time
	Permalink    string
}

// Comment is a new comment anywhere in the watched community.
type Comment struct {
	ID        string
	PostID    string
	Author    string
	Body      string
	CreatedAt time.Time
}

// Message is a private message addressed to the bot account.
type Message struct {
	ID        string
	Author    string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// EventSource pulls batches of new activity. Implementations return at
// most limit items, newest last, and are responsible for their own
// pagination state.
type EventSource interface {
	FetchPosts(ctx context.Context, limit int) ([]Post, error)
	// FetchEditedPosts returns recently edited submissions so tracked
	// requests can be re-parsed after a title change.
	FetchEditedPosts(ctx context.Context, limit int) ([]Post, error)
	FetchComments(ctx context.Context, limit int) ([]Comment, error)
	FetchMessages(ctx context.Context, limit int) ([]Message, error)
}

// Actions covers the write half of the platform surface: replies,
// flair labels, post removal and private messages.
type Actions interface {
	Reply(ctx context.Context, parentID, body string) (commentID string, err error)
	EditComment(ctx context.Context, commentID, body string) error
	DeleteComment(ctx context.Context, commentID string) error
	SetLabel(ctx context.Context, postID, label string) error
	RemovePost(ctx context.Context, postID string) error
	SendMessage(ctx context.Context, username, subject, body string) error
}
