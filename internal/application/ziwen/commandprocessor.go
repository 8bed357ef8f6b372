package ziwen

import (
	"context"
	"strings"
	"time"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/command"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/platform"
	apperrors "github.com/kungming2/translator-BOT-reborn/internal/shared/errors"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

// CommandProcessor applies comment commands against request aggregates.
type CommandProcessor struct {
	source        platform.EventSource
	actions       platform.Actions
	marker        EventMarker
	requests      request.Repository
	parser        *command.Parser
	notifier      Notifier
	poster        *companionPoster
	botUsername   string
	moderators    map[string]bool
	batchSize     int
	claimExpiry   time.Duration
	labelMaxRunes int
	logger        logger.Interface
}

func NewCommandProcessor(
	source platform.EventSource,
	actions platform.Actions,
	marker EventMarker,
	requests request.Repository,
	companions request.CompanionRepository,
	parser *command.Parser,
	notifier Notifier,
	botUsername string,
	moderators []string,
	batchSize int,
	claimExpiry time.Duration,
	labelMaxRunes int,
	log logger.Interface,
) *CommandProcessor {
	clog := log.Named("commands")
	mods := make(map[string]bool, len(moderators))
	for _, m := range moderators {
		mods[strings.ToLower(m)] = true
	}
	return &CommandProcessor{
		source:        source,
		actions:       actions,
		marker:        marker,
		requests:      requests,
		parser:        parser,
		notifier:      notifier,
		poster:        &companionPoster{actions: actions, companions: companions, logger: clog},
		botUsername:   strings.ToLower(botUsername),
		moderators:    mods,
		batchSize:     batchSize,
		claimExpiry:   claimExpiry,
		labelMaxRunes: labelMaxRunes,
		logger:        clog,
	}
}

func (p *CommandProcessor) Name() string { return "commands" }

func (p *CommandProcessor) Process(ctx context.Context) error {
	comments, err := p.source.FetchComments(ctx, p.batchSize)
	if err != nil {
		return err
	}

	for _, comment := range comments {
		if strings.EqualFold(comment.Author, p.botUsername) {
			continue
		}
		done, err := p.marker.IsProcessed(ctx, comment.ID)
		if err != nil {
			return err
		}
		if done {
			continue
		}
		if err := p.handleComment(ctx, comment); err != nil {
			p.logger.Errorw("comment intake failed", "comment", comment.ID, "error", err)
			continue
		}
		if err := p.marker.MarkProcessed(ctx, comment.ID, "comment"); err != nil {
			return err
		}
	}
	return nil
}

func (p *CommandProcessor) handleComment(ctx context.Context, comment platform.Comment) error {
	commands := p.parser.Parse(ctx, comment.Body)
	lookups := p.parser.ParseLookups(ctx, comment.Body)
	if len(commands) == 0 && len(lookups) == 0 {
		return nil
	}

	req, err := p.requests.GetByID(ctx, comment.PostID)
	if err != nil {
		return err
	}
	if req == nil {
		// Commands on posts the bot never tracked are ignored.
		return nil
	}

	oldLabel := req.Label(p.labelMaxRunes)
	for _, cmd := range commands {
		if err := p.apply(ctx, req, cmd, comment); err != nil {
			if apperrors.IsAppError(err) {
				p.logger.Infow("command refused",
					"comment", comment.ID,
					"command", string(cmd.Kind()),
					"reason", err.Error())
				continue
			}
			return err
		}
	}
	if len(lookups) > 0 {
		p.logger.Debugw("lookup terms seen", "comment", comment.ID, "terms", len(lookups))
	}

	if err := p.requests.Save(ctx, req); err != nil {
		return err
	}
	if newLabel := req.Label(p.labelMaxRunes); newLabel != oldLabel {
		if err := p.actions.SetLabel(ctx, req.ID(), newLabel); err != nil {
			p.logger.Warnw("failed to update label", "post", req.ID(), "error", err)
		}
	}
	return nil
}

func (p *CommandProcessor) apply(ctx context.Context, req *request.Request, cmd command.Command, comment platform.Comment) error {
	switch cmd.Kind() {
	case command.KindIdentify, command.KindSet:
		return p.applyIdentify(ctx, req, cmd)
	case command.KindTranslated:
		if err := req.MarkTranslated(firstCode(cmd)); err != nil {
			return err
		}
		// The requester gets a heads-up only when someone else did the work.
		if !strings.EqualFold(comment.Author, req.Author()) {
			if err := p.actions.SendMessage(ctx, req.Author(),
				"Your request has been translated",
				"A translation was posted on your request: "+req.RawTitle()); err != nil {
				p.logger.Warnw("failed to message requester", "post", req.ID(), "error", err)
			}
		}
		return nil
	case command.KindDoubleCheck:
		return req.MarkNeedsReview(firstCode(cmd))
	case command.KindMissing:
		if err := req.MarkMissing(firstCode(cmd)); err != nil {
			return err
		}
		p.poster.post(ctx, req.ID(), request.AnchorMissing,
			"This request appears to have no translatable content. The poster should add the text or image to translate.")
		return nil
	case command.KindClaim:
		if err := req.Claim(comment.Author, comment.CreatedAt, p.claimExpiry, firstCode(cmd)); err != nil {
			return err
		}
		p.poster.post(ctx, req.ID(), request.AnchorClaim,
			"u/"+comment.Author+" is working on this request.")
		return nil
	case command.KindReset:
		return req.Reset(comment.Author, p.moderators[strings.ToLower(comment.Author)])
	case command.KindPage:
		langs, ok := cmd.Languages()
		if !ok || len(langs) == 0 {
			return apperrors.NewMalformedCommandError("page needs at least one language")
		}
		_, err := p.notifier.Dispatch(ctx, req, langs)
		return err
	case command.KindDelete:
		p.poster.removeAll(ctx, req.ID())
		return nil
	case command.KindLong:
		if !p.moderators[strings.ToLower(comment.Author)] {
			return apperrors.NewForbiddenError("long is a moderator command")
		}
		req.ToggleLong()
		return nil
	case command.KindSearch:
		if text, ok := cmd.Text(); ok {
			p.logger.Debugw("search requested", "post", req.ID(), "query", text)
		}
		return nil
	default:
		return nil
	}
}

func (p *CommandProcessor) applyIdentify(ctx context.Context, req *request.Request, cmd command.Command) error {
	langs, ok := cmd.Languages()
	if !ok || len(langs) == 0 {
		return apperrors.NewMalformedCommandError("identify needs a language argument")
	}
	ident := langs[0]

	changed, err := req.Identify(ident)
	if err != nil || !changed {
		return err
	}

	p.poster.remove(ctx, req.ID(), request.AnchorUnknown)

	if cmd.Kind() == command.KindIdentify &&
		!cmd.NotificationSuppressed() &&
		req.ShouldNotifyIdentified(ident.PreferredCode()) {
		if _, err := p.notifier.Dispatch(ctx, req, []language.Identity{ident}); err != nil {
			p.logger.Errorw("identify notification failed", "post", req.ID(), "error", err)
		}
	}
	return nil
}

func firstCode(cmd command.Command) string {
	if langs, ok := cmd.Languages(); ok && len(langs) > 0 {
		return langs[0].PreferredCode()
	}
	return ""
}
