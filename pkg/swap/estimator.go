package swap

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"swapdesk/pkg/client"
)

// scheduleEstimate asks for a fresh rate estimate after the quiet
// period. The direction follows the driver field: editing the sell
// amount estimates the buy amount, and vice versa.
func (s *Session) scheduleEstimate() {
	s.deb.Trigger(keyEstimate, s.runEstimate)
}

func (s *Session) runEstimate() {
	s.mu.Lock()

	var amount, from, to string
	side := s.state.ActiveSide
	if side == SideSell {
		amount, from, to = s.state.SellAmount, s.state.SellCurrency, s.state.BuyCurrency
	} else {
		amount, from, to = s.state.BuyAmount, s.state.BuyCurrency, s.state.SellCurrency
	}

	// Empty or zero amount and missing currency short-circuit to
	// "no estimate", not an error.
	if !estimable(amount) || from == "" || to == "" {
		s.clearEstimateLocked()
		s.mu.Unlock()
		return
	}

	seq := s.nextSeq(keyEstimate)
	s.state.EstimateLoading = true
	s.state.Err = ""
	query := client.EstimateQuery{
		From:   from,
		To:     to,
		Amount: amount,
		Fixed:  s.state.FixedRate,
	}
	s.mu.Unlock()

	result, err := s.provider.GetEstimated(s.ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isLatest(keyEstimate, seq) {
		// A newer request was issued while this one was in flight;
		// its result is the only one that may be applied.
		s.log.WithField("key", keyEstimate).Debug("discarded stale completion")
		return
	}

	s.state.EstimateLoading = false
	if err != nil {
		s.state.Estimate = nil
		s.state.Err = estimateErrorMessage(err)
		s.log.WithFields(logrus.Fields{"from": from, "to": to}).WithError(err).Warn("estimate failed")
		return
	}

	s.state.Estimate = &result
	// The estimate fills the field the user is not driving
	if side == SideSell {
		s.state.BuyAmount = result.String()
	} else {
		s.state.SellAmount = result.String()
	}
}

func estimable(amount string) bool {
	if amount == "" {
		return false
	}
	d, err := decimal.NewFromString(amount)
	return err == nil && d.IsPositive()
}

func estimateErrorMessage(err error) string {
	switch {
	case errors.Is(err, client.ErrAuthFailed):
		return "Authentication failed. Check your API key."
	case errors.Is(err, client.ErrRateLimited):
		return "Too many requests. Please wait a moment and try again."
	case errors.Is(err, client.ErrBadRequest):
		return "The provider rejected the estimate parameters."
	case errors.Is(err, client.ErrInvalidShape):
		return "The provider returned an unexpected estimate format."
	default:
		return "Failed to estimate exchange. Please try again later."
	}
}
