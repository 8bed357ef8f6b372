package ziwen

import (
	"context"
	"strings"
	"time"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/subscription"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/platform"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

// MessageProcessor handles subscription DMs: subscribe, unsubscribe and
// status inquiries.
type MessageProcessor struct {
	source    platform.EventSource
	actions   platform.Actions
	marker    EventMarker
	subs      subscription.Repository
	resolver  *language.Resolver
	batchSize int
	logger    logger.Interface
}

func NewMessageProcessor(
	source platform.EventSource,
	actions platform.Actions,
	marker EventMarker,
	subs subscription.Repository,
	resolver *language.Resolver,
	batchSize int,
	log logger.Interface,
) *MessageProcessor {
	return &MessageProcessor{
		source:    source,
		actions:   actions,
		marker:    marker,
		subs:      subs,
		resolver:  resolver,
		batchSize: batchSize,
		logger:    log.Named("messages"),
	}
}

func (p *MessageProcessor) Name() string { return "messages" }

func (p *MessageProcessor) Process(ctx context.Context) error {
	messages, err := p.source.FetchMessages(ctx, p.batchSize)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		done, err := p.marker.IsProcessed(ctx, msg.ID)
		if err != nil {
			return err
		}
		if done {
			continue
		}
		if err := p.handleMessage(ctx, msg); err != nil {
			p.logger.Errorw("message intake failed", "message", msg.ID, "error", err)
			continue
		}
		if err := p.marker.MarkProcessed(ctx, msg.ID, "message"); err != nil {
			return err
		}
	}
	return nil
}

func (p *MessageProcessor) handleMessage(ctx context.Context, msg platform.Message) error {
	subject := strings.ToLower(strings.TrimSpace(msg.Subject))
	switch {
	case strings.Contains(subject, "unsubscribe"):
		return p.unsubscribe(ctx, msg)
	case strings.Contains(subject, "subscribe"):
		return p.subscribe(ctx, msg)
	case strings.Contains(subject, "status"), strings.Contains(subject, "ping"):
		return p.status(ctx, msg)
	default:
		p.logger.Debugw("ignoring message", "message", msg.ID, "subject", msg.Subject)
		return nil
	}
}

func (p *MessageProcessor) subscribe(ctx context.Context, msg platform.Message) error {
	idents, dropped := p.resolver.ParseLanguageList(ctx, msg.Body)
	if len(idents) == 0 {
		return p.reply(ctx, msg.Author, "Subscription update",
			"No recognizable languages found. Send the language names you want notifications for, separated by commas.")
	}

	var added []string
	for _, ident := range idents {
		code := ident.PreferredCode()
		if ident.Country != "" {
			code += "-" + strings.ToLower(ident.Country)
		}
		sub, err := subscription.New(code, msg.Author, time.Now())
		if err != nil {
			return err
		}
		if err := p.subs.Save(ctx, sub); err != nil {
			return err
		}
		added = append(added, ident.DisplayName())
	}
	p.logger.Infow("subscriptions added", "user", msg.Author, "languages", strings.Join(added, ", "))

	body := "You are now subscribed to: " + strings.Join(added, ", ") + "."
	if len(dropped) > 0 {
		body += " Not recognized: " + strings.Join(dropped, ", ") + "."
	}
	return p.reply(ctx, msg.Author, "Subscription update", body)
}

func (p *MessageProcessor) unsubscribe(ctx context.Context, msg platform.Message) error {
	body := strings.TrimSpace(msg.Body)
	if strings.EqualFold(body, "all") || body == "" {
		n, err := p.subs.DeleteAllForUser(ctx, msg.Author)
		if err != nil {
			return err
		}
		p.logger.Infow("all subscriptions removed", "user", msg.Author, "count", n)
		return p.reply(ctx, msg.Author, "Subscription update",
			"All of your language subscriptions have been removed.")
	}

	idents, _ := p.resolver.ParseLanguageList(ctx, body)
	var removed []string
	for _, ident := range idents {
		code := ident.PreferredCode()
		if ident.Country != "" {
			code += "-" + strings.ToLower(ident.Country)
		}
		if err := p.subs.Delete(ctx, code, msg.Author); err != nil {
			return err
		}
		removed = append(removed, ident.DisplayName())
	}
	if len(removed) == 0 {
		return p.reply(ctx, msg.Author, "Subscription update",
			"No recognizable languages found in your unsubscribe message.")
	}
	return p.reply(ctx, msg.Author, "Subscription update",
		"Unsubscribed from: "+strings.Join(removed, ", ")+".")
}

func (p *MessageProcessor) status(ctx context.Context, msg platform.Message) error {
	codes, err := p.subs.ListLanguagesForUser(ctx, msg.Author)
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		return p.reply(ctx, msg.Author, "Subscription status",
			"You have no language subscriptions.")
	}
	return p.reply(ctx, msg.Author, "Subscription status",
		"You are subscribed to: "+strings.Join(codes, ", ")+".")
}

func (p *MessageProcessor) reply(ctx context.Context, username, subject, body string) error {
	if err := p.actions.SendMessage(ctx, username, subject, body); err != nil {
		p.logger.Warnw("failed to send reply", "user", username, "error", err)
	}
	return nil
}
