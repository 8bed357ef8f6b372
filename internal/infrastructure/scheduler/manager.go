package scheduler

import (
	"context"
	"sync"

	"github.com/kungming2/translator-BOT-reborn/internal/shared/goroutine"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

// Manager runs a set of poll schedulers and stops them together.
type Manager struct {
	schedulers []*PollScheduler
	logger     logger.Interface
	wg         sync.WaitGroup
}

func NewManager(log logger.Interface) *Manager {
	return &Manager{logger: log.Named("scheduler")}
}

func (m *Manager) Add(s *PollScheduler) {
	m.schedulers = append(m.schedulers, s)
}

// Start launches every scheduler in its own goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.logger.Infow("starting schedulers", "count", len(m.schedulers))
	for _, s := range m.schedulers {
		m.wg.Add(1)
		s := s
		goroutine.SafeGo(m.logger, s.processor.Name(), func() {
			defer m.wg.Done()
			s.Start(ctx)
		})
	}
}

// Stop signals every scheduler and waits for them to exit.
func (m *Manager) Stop() {
	for _, s := range m.schedulers {
		s.Stop()
	}
	m.wg.Wait()
	m.logger.Infow("all schedulers stopped")
}
