package ziwen

import (
	"context"
	"time"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/platform"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

// ClaimProcessor releases claims whose holder went quiet past the expiry
// window, restoring the request for other translators.
type ClaimProcessor struct {
	requests      request.Repository
	actions       platform.Actions
	poster        *companionPoster
	expiry        time.Duration
	labelMaxRunes int
	logger        logger.Interface
}

func NewClaimProcessor(
	requests request.Repository,
	actions platform.Actions,
	companions request.CompanionRepository,
	expiry time.Duration,
	labelMaxRunes int,
	log logger.Interface,
) *ClaimProcessor {
	clog := log.Named("claims")
	return &ClaimProcessor{
		requests:      requests,
		actions:       actions,
		poster:        &companionPoster{actions: actions, companions: companions, logger: clog},
		expiry:        expiry,
		labelMaxRunes: labelMaxRunes,
		logger:        clog,
	}
}

func (p *ClaimProcessor) Name() string { return "claims" }

func (p *ClaimProcessor) Process(ctx context.Context) error {
	cutoff := time.Now().Add(-p.expiry)
	stale, err := p.requests.ListClaimedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, req := range stale {
		if !req.ClaimExpired(time.Now(), p.expiry) {
			continue
		}
		holder := req.ClaimedBy()
		if err := req.ReleaseClaim(); err != nil {
			p.logger.Warnw("failed to release claim", "post", req.ID(), "error", err)
			continue
		}
		if err := p.requests.Save(ctx, req); err != nil {
			return err
		}
		p.poster.remove(ctx, req.ID(), request.AnchorClaim)
		if err := p.actions.SetLabel(ctx, req.ID(), req.Label(p.labelMaxRunes)); err != nil {
			p.logger.Warnw("failed to update label", "post", req.ID(), "error", err)
		}
		p.logger.Infow("claim expired", "post", req.ID(), "holder", holder)
	}
	return nil
}
