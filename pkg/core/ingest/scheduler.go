package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

// RunSchedule resyncs the backlog on the given RRULE cadence until the
// context is cancelled. A failed run is logged and the schedule continues;
// a run skipped because a manual resync holds the guard is not an error.
func (s *Syncer) RunSchedule(ctx context.Context, rule string) error {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return fmt.Errorf("invalid resync rule %q: %w", rule, err)
	}

	s.logger.Info("Backlog resync schedule started", zap.String("rule", rule))

	for {
		next := r.After(s.now(), false)
		if next.IsZero() {
			s.logger.Info("Backlog resync schedule exhausted")
			return nil
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := s.Resync(ctx); err != nil {
			if errors.Is(err, ErrResyncInFlight) {
				s.logger.Info("Scheduled resync skipped, another resync in flight")
				continue
			}
			s.logger.Error("Scheduled resync failed", zap.Error(err))
		}
	}
}
