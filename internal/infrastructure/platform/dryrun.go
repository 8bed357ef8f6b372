package platform

import (
	"context"

	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

// DryRun is a stand-in platform client: it yields no events and logs
// every write instead of performing it. It keeps the bot runnable while
// a real API client is wired in behind the same ports.
type DryRun struct {
	log logger.Interface
}

func NewDryRun(log logger.Interface) *DryRun {
	return &DryRun{log: log.Named("platform.dryrun")}
}

func (d *DryRun) FetchPosts(context.Context, int) ([]Post, error)       { return nil, nil }
func (d *DryRun) FetchEditedPosts(context.Context, int) ([]Post, error) { return nil, nil }
func (d *DryRun) FetchComments(context.Context, int) ([]Comment, error) { return nil, nil }
func (d *DryRun) FetchMessages(context.Context, int) ([]Message, error) { return nil, nil }

func (d *DryRun) Reply(_ context.Context, parentID, body string) (string, error) {
	d.log.Infow("would reply", "parent", parentID, "chars", len(body))
	return "dryrun-comment", nil
}

func (d *DryRun) EditComment(_ context.Context, commentID, _ string) error {
	d.log.Infow("would edit comment", "comment", commentID)
	return nil
}

func (d *DryRun) DeleteComment(_ context.Context, commentID string) error {
	d.log.Infow("would delete comment", "comment", commentID)
	return nil
}

func (d *DryRun) SetLabel(_ context.Context, postID, label string) error {
	d.log.Infow("would set label", "post", postID, "label", label)
	return nil
}

func (d *DryRun) RemovePost(_ context.Context, postID string) error {
	d.log.Infow("would remove post", "post", postID)
	return nil
}

func (d *DryRun) SendMessage(_ context.Context, username, subject, _ string) error {
	d.log.Infow("would send message", "user", username, "subject", subject)
	return nil
}
