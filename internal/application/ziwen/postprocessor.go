package ziwen

import (
	"context"
	"time"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/title"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/platform"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

// PostProcessor ingests new submissions: it parses titles, rejects
// malformed posts, creates request records and notifies subscribers.
type PostProcessor struct {
	source        platform.EventSource
	actions       platform.Actions
	marker        EventMarker
	requests      request.Repository
	companions    request.CompanionRepository
	parser        *title.Parser
	notifier      Notifier
	poster        *companionPoster
	batchSize     int
	freshness     time.Duration
	labelMaxRunes int
	logger        logger.Interface
}

func NewPostProcessor(
	source platform.EventSource,
	actions platform.Actions,
	marker EventMarker,
	requests request.Repository,
	companions request.CompanionRepository,
	parser *title.Parser,
	notifier Notifier,
	batchSize int,
	freshness time.Duration,
	labelMaxRunes int,
	log logger.Interface,
) *PostProcessor {
	plog := log.Named("posts")
	return &PostProcessor{
		source:        source,
		actions:       actions,
		marker:        marker,
		requests:      requests,
		companions:    companions,
		parser:        parser,
		notifier:      notifier,
		poster:        &companionPoster{actions: actions, companions: companions, logger: plog},
		batchSize:     batchSize,
		freshness:     freshness,
		labelMaxRunes: labelMaxRunes,
		logger:        plog,
	}
}

func (p *PostProcessor) Name() string { return "posts" }

func (p *PostProcessor) Process(ctx context.Context) error {
	posts, err := p.source.FetchPosts(ctx, p.batchSize)
	if err != nil {
		return err
	}

	for _, post := range posts {
		done, err := p.marker.IsProcessed(ctx, post.ID)
		if err != nil {
			return err
		}
		if done {
			continue
		}
		if err := p.handlePost(ctx, post); err != nil {
			p.logger.Errorw("post intake failed", "post", post.ID, "error", err)
			continue
		}
		if err := p.marker.MarkProcessed(ctx, post.ID, "post"); err != nil {
			return err
		}
	}

	edited, err := p.source.FetchEditedPosts(ctx, p.batchSize)
	if err != nil {
		return err
	}
	for _, post := range edited {
		if err := p.handleEdit(ctx, post); err != nil {
			p.logger.Errorw("post edit pass failed", "post", post.ID, "error", err)
		}
	}
	return nil
}

// handleEdit re-parses an edited title on a tracked request. Unchanged
// titles are a no-op, so re-sightings of the same edit are idempotent; the
// notified set persists through the rewrite and keeps re-dispatch from
// double-messaging.
func (p *PostProcessor) handleEdit(ctx context.Context, post platform.Post) error {
	req, err := p.requests.GetByID(ctx, post.ID)
	if err != nil {
		return err
	}
	if req == nil {
		return nil
	}

	parsed := p.parser.Parse(ctx, post.Title)
	p.parser.FlagLong(parsed, post.SelfText, post.VideoURL, post.VideoSeconds)
	if !req.ApplyTitleEdit(post.Title, parsed) {
		return nil
	}

	if err := p.actions.SetLabel(ctx, post.ID, req.Label(p.labelMaxRunes)); err != nil {
		p.logger.Warnw("failed to update label", "post", post.ID, "error", err)
	}
	if err := p.requests.Save(ctx, req); err != nil {
		return err
	}

	if time.Since(post.CreatedAt) <= p.freshness {
		if err := p.dispatchAndSave(ctx, req, post.ID); err != nil {
			return err
		}
	}
	p.logger.Infow("request re-parsed after edit",
		"post", post.ID,
		"classification", string(req.Classification()))
	return nil
}

// dispatchAndSave fans out notifications and persists the request whether or
// not the dispatch fully succeeded: users messaged before a mid-dispatch
// failure are in the notified set and must not be messaged again on retry.
func (p *PostProcessor) dispatchAndSave(ctx context.Context, req *request.Request, postID string) error {
	if _, err := p.notifier.Dispatch(ctx, req, req.NotifyLanguages()); err != nil {
		p.logger.Errorw("notification dispatch failed", "post", postID, "error", err)
	}
	return p.requests.Save(ctx, req)
}

func (p *PostProcessor) handlePost(ctx context.Context, post platform.Post) error {
	parsed := p.parser.Parse(ctx, post.Title)

	// Meta and community posts are left entirely alone.
	if parsed.Classification == title.ClassInternal {
		return nil
	}

	if parsed.IsRejected() {
		return p.rejectPost(ctx, post, parsed)
	}

	p.parser.FlagLong(parsed, post.SelfText, post.VideoURL, post.VideoSeconds)

	req, err := request.NewFromTitle(post.ID, post.Author, post.CreatedAt, post.Title, parsed)
	if err != nil {
		return err
	}

	if err := p.actions.SetLabel(ctx, post.ID, req.Label(p.labelMaxRunes)); err != nil {
		p.logger.Warnw("failed to set label", "post", post.ID, "error", err)
	}
	if len(parsed.Source) == 1 && parsed.Source[0].PreferredCode() == language.CodeUnknown {
		p.poster.post(ctx, post.ID, request.AnchorUnknown,
			"The source language is unknown. Anyone who recognizes it can tag it with `!identify:` followed by the language name.")
	}
	if req.LongContent() {
		p.poster.post(ctx, post.ID, request.AnchorLong,
			"This request looks long. Translators may only translate part of it; consider splitting very long content into several requests.")
	}

	if err := p.requests.Save(ctx, req); err != nil {
		return err
	}

	// Old posts picked up after downtime are recorded but not fanned out.
	if time.Since(post.CreatedAt) <= p.freshness {
		if err := p.dispatchAndSave(ctx, req, post.ID); err != nil {
			return err
		}
	}

	p.logger.Infow("request recorded",
		"post", post.ID,
		"classification", string(parsed.Classification),
		"label", req.Label(p.labelMaxRunes))
	return nil
}

func (p *PostProcessor) rejectPost(ctx context.Context, post platform.Post, parsed *title.ParsedTitle) error {
	var advisory string
	switch parsed.Reason {
	case title.RejectEnglishOnly:
		advisory = "This community handles translations to or from English, not English-to-English requests."
	case title.RejectNoTarget:
		advisory = "The title must name a language to translate into, for example \"[Unknown > English] old letter\"."
	default:
		advisory = "The title must state the languages involved, for example \"[Japanese > English] shop sign\"."
	}
	if parsed.Suggested != "" {
		advisory += " A title like \"" + parsed.Suggested + "\" would work."
	}

	if _, err := p.actions.Reply(ctx, post.ID, advisory); err != nil {
		p.logger.Warnw("failed to post advisory", "post", post.ID, "error", err)
	}
	if err := p.actions.RemovePost(ctx, post.ID); err != nil {
		return err
	}
	p.logger.Infow("post rejected", "post", post.ID, "reason", string(parsed.Reason))
	return nil
}
