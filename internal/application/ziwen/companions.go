package ziwen

import (
	"context"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/platform"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

// companionPoster posts, replaces and removes the bot's own anchored
// comments, keeping the companion map in sync.
type companionPoster struct {
	actions    platform.Actions
	companions request.CompanionRepository
	logger     logger.Interface
}

// post writes an anchored comment and records it. An existing comment
// with the same anchor is deleted first so each tag appears once.
func (c *companionPoster) post(ctx context.Context, postID, tag, body string) {
	companion, err := c.companions.GetByRequestID(ctx, postID)
	if err != nil {
		c.logger.Warnw("failed to load companion map", "post", postID, "error", err)
		return
	}
	if companion == nil {
		companion = request.NewCompanion(postID)
	}

	if old, ok := companion.RemoveComment(tag); ok {
		if err := c.actions.DeleteComment(ctx, old); err != nil {
			c.logger.Warnw("failed to delete stale companion comment", "comment", old, "error", err)
		}
	}

	commentID, err := c.actions.Reply(ctx, postID, request.WithAnchor(body, tag))
	if err != nil {
		c.logger.Warnw("failed to post companion comment", "post", postID, "tag", tag, "error", err)
		return
	}
	companion.SetComment(tag, commentID)
	if err := c.companions.Save(ctx, companion); err != nil {
		c.logger.Warnw("failed to save companion map", "post", postID, "error", err)
	}
}

// remove deletes the bot comment recorded under an anchor, if any.
func (c *companionPoster) remove(ctx context.Context, postID, tag string) {
	companion, err := c.companions.GetByRequestID(ctx, postID)
	if err != nil || companion == nil {
		return
	}
	if commentID, ok := companion.RemoveComment(tag); ok {
		if err := c.actions.DeleteComment(ctx, commentID); err != nil {
			c.logger.Warnw("failed to delete companion comment", "comment", commentID, "error", err)
		}
		if err := c.companions.Save(ctx, companion); err != nil {
			c.logger.Warnw("failed to save companion map", "post", postID, "error", err)
		}
	}
}

// removeAll deletes every companion comment on a request.
func (c *companionPoster) removeAll(ctx context.Context, postID string) int {
	companion, err := c.companions.GetByRequestID(ctx, postID)
	if err != nil || companion == nil {
		return 0
	}
	removed := 0
	for tag := range companion.Comments() {
		if commentID, ok := companion.RemoveComment(tag); ok {
			if err := c.actions.DeleteComment(ctx, commentID); err != nil {
				c.logger.Warnw("failed to delete companion comment", "comment", commentID, "error", err)
				continue
			}
			removed++
		}
	}
	if err := c.companions.Save(ctx, companion); err != nil {
		c.logger.Warnw("failed to save companion map", "post", postID, "error", err)
	}
	return removed
}
