// Package scheduler drives the deferred-settlement hook: a plain ticker that
// asks the settlement service to process due refunds.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackdeal/settlements/internal/service"
)

type Scheduler struct {
	settlements *service.SettlementService
	interval    time.Duration
	log         zerolog.Logger
}

func New(settlements *service.SettlementService, interval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		settlements: settlements,
		interval:    interval,
		log:         log,
	}
}

// Run blocks until ctx is cancelled, triggering a due-settlement pass every
// interval. Intended to run in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("settlement scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("settlement scheduler stopped")
			return
		case now := <-ticker.C:
			settled, err := s.settlements.ProcessDueRefunds(ctx, now)
			if err != nil {
				s.log.Error().Err(err).Msg("due settlement pass failed")
				continue
			}
			if settled > 0 {
				s.log.Info().Int("settled", settled).Msg("due settlement pass finished")
			}
		}
	}
}
