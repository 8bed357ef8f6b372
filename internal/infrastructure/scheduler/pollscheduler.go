package scheduler

import (
	"context"
	"time"

	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

// Processor is one periodic pass over new platform activity.
type Processor interface {
	Name() string
	Process(ctx context.Context) error
}

// PollScheduler runs a processor on a fixed interval.
type PollScheduler struct {
	processor Processor
	logger    logger.Interface
	stopChan  chan struct{}
	interval  time.Duration
}

func NewPollScheduler(
	processor Processor,
	interval time.Duration,
	log logger.Interface,
) *PollScheduler {
	return &PollScheduler{
		processor: processor,
		logger:    log.With("processor", processor.Name()),
		stopChan:  make(chan struct{}),
		interval:  interval,
	}
}

// Start starts the scheduler and blocks until stopped.
func (s *PollScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting poll scheduler", "interval", s.interval)

	// Run immediately on start
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("poll scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			s.logger.Infow("poll scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop stops the scheduler
func (s *PollScheduler) Stop() {
	close(s.stopChan)
}

func (s *PollScheduler) runOnce(ctx context.Context) {
	s.logger.Debugw("poll pass started")

	if err := s.processor.Process(ctx); err != nil {
		s.logger.Errorw("poll pass failed", "error", err)
		return
	}

	s.logger.Debugw("poll pass completed")
}
