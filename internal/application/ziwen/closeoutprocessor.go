package ziwen

import (
	"context"
	"time"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/platform"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

// CloseoutProcessor flags requests that sat untranslated past the
// closeout window with a reference comment, so the community can see
// which requests still need attention before they age out.
type CloseoutProcessor struct {
	requests  request.Repository
	actions   platform.Actions
	poster    *companionPoster
	window    time.Duration
	batchSize int
	logger    logger.Interface
}

func NewCloseoutProcessor(
	requests request.Repository,
	actions platform.Actions,
	companions request.CompanionRepository,
	window time.Duration,
	batchSize int,
	log logger.Interface,
) *CloseoutProcessor {
	clog := log.Named("closeout")
	return &CloseoutProcessor{
		requests:  requests,
		actions:   actions,
		poster:    &companionPoster{actions: actions, companions: companions, logger: clog},
		window:    window,
		batchSize: batchSize,
		logger:    clog,
	}
}

func (p *CloseoutProcessor) Name() string { return "closeout" }

func (p *CloseoutProcessor) Process(ctx context.Context) error {
	cutoff := time.Now().Add(-p.window)
	stale, err := p.requests.ListUntranslatedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	flagged := 0
	for _, req := range stale {
		if p.batchSize > 0 && flagged >= p.batchSize {
			break
		}
		if p.alreadyFlagged(ctx, req.ID()) {
			continue
		}
		p.poster.post(ctx, req.ID(), request.AnchorReference,
			"This request has been waiting a while. If you can translate even part of it, your help is welcome.")
		flagged++
	}
	if flagged > 0 {
		p.logger.Infow("stale requests flagged", "count", flagged)
	}
	return nil
}

func (p *CloseoutProcessor) alreadyFlagged(ctx context.Context, postID string) bool {
	companion, err := p.poster.companions.GetByRequestID(ctx, postID)
	if err != nil || companion == nil {
		return false
	}
	_, ok := companion.Comment(request.AnchorReference)
	return ok
}
