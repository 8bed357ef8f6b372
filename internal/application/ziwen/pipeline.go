package ziwen

import (
	"context"
	"time"

	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

// stage is one step of a polling pass.
type stage interface {
	Name() string
	Process(ctx context.Context) error
}

// Pipeline runs every processor of a polling pass in a fixed order on a
// single goroutine: posts, then comments, then messages, then claim expiry.
// A request loaded by one stage is saved before the next stage starts, so
// two stages can never overwrite each other's writes to the same request.
// The closeout sweep is folded into the same pass on its own cadence rather
// than running concurrently.
type Pipeline struct {
	stages     []stage
	sweeper    stage
	sweepEvery time.Duration
	lastSweep  time.Time
	now        func() time.Time
	logger     logger.Interface
}

func NewPipeline(
	sweeper stage,
	sweepEvery time.Duration,
	log logger.Interface,
	stages ...stage,
) *Pipeline {
	return &Pipeline{
		stages:     stages,
		sweeper:    sweeper,
		sweepEvery: sweepEvery,
		now:        time.Now,
		logger:     log.Named("pipeline"),
	}
}

func (p *Pipeline) Name() string { return "pipeline" }

// Process runs the stages in order. A failing stage is logged and does not
// stop the stages behind it from running.
func (p *Pipeline) Process(ctx context.Context) error {
	for _, s := range p.stages {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.Process(ctx); err != nil {
			p.logger.Errorw("stage failed", "stage", s.Name(), "error", err)
		}
	}
	if p.sweeper != nil && p.now().Sub(p.lastSweep) >= p.sweepEvery {
		if err := p.sweeper.Process(ctx); err != nil {
			p.logger.Errorw("stage failed", "stage", p.sweeper.Name(), "error", err)
		} else {
			p.lastSweep = p.now()
		}
	}
	return nil
}
