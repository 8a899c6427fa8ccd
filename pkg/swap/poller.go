package swap

import (
	"context"
	"time"

	"swapdesk/pkg/types"
)

// backoffFactor caps transient-failure backoff at base * 2^3
const backoffFactor = 8

// poll queries the exchange status on an interval until a terminal
// status is reached or ctx is cancelled. Transient failures keep the
// previous snapshot and reschedule with capped exponential backoff;
// polling never stops itself on error. Any successful poll resets the
// interval to its base.
func (s *Session) poll(ctx context.Context, id string, done chan struct{}) {
	defer close(done)

	base := s.pollInterval
	maxInterval := base * backoffFactor
	interval := base

	timer := time.NewTimer(interval)
	defer timer.Stop()

	log := s.log.WithField("exchange", id)
	log.Debug("status polling started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("status polling cancelled")
			return
		case <-timer.C:
		}

		exchange, err := s.provider.GetExchange(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			interval *= 2
			if interval > maxInterval {
				interval = maxInterval
			}
			log.WithError(err).WithField("retry_in", interval).Warn("status poll failed, keeping last snapshot")
			timer.Reset(interval)
			continue
		}

		interval = base

		s.mu.Lock()
		// A resubmission may have repointed the session at a newer
		// exchange; do not clobber its record.
		current := s.state.Exchange != nil && s.state.Exchange.ID == id
		if current {
			s.state.Exchange = exchange
		}
		terminal := types.IsTerminalStatus(exchange.Status)
		if current && terminal {
			s.state.Phase = PhaseTerminal
		}
		s.mu.Unlock()

		if !current || terminal {
			if terminal {
				log.WithField("status", exchange.Status).Info("exchange reached terminal status")
			}
			return
		}

		timer.Reset(interval)
	}
}
