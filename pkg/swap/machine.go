package swap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"swapdesk/pkg/address"
	"swapdesk/pkg/client"
	"swapdesk/pkg/types"
)

// ValidationError carries field-level messages for a rejected form.
// No network call is made when validation fails.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "form validation failed: " + strings.Join(parts, "; ")
}

// Submit runs the full submission machine:
// Idle -> Validating -> Creating -> Monitoring.
// Validation failure returns to Idle with field errors and touches no
// network. A create failure returns to Idle with a status-specific
// message and no partial exchange record. On success the status
// poller starts and runs until a terminal status or cancellation.
//
// Submission is not deduplicated: submitting the same valid form
// twice creates two distinct exchanges. A resubmission while
// monitoring abandons the previous poller.
func (s *Session) Submit() (*types.Exchange, error) {
	s.mu.Lock()
	s.state.Phase = PhaseValidating

	fieldErrors := validateForm(s.state)
	if len(fieldErrors) > 0 {
		s.state.FieldErrors = fieldErrors
		s.state.Phase = PhaseIdle
		s.mu.Unlock()
		return nil, &ValidationError{Fields: fieldErrors}
	}

	s.state.FieldErrors = nil
	s.state.Err = ""
	s.state.Phase = PhaseCreating
	req := types.SwapRequest{
		Amount:        s.state.SellAmount,
		SellCurrency:  strings.ToLower(s.state.SellCurrency),
		BuyCurrency:   strings.ToLower(s.state.BuyCurrency),
		RecipientAddr: s.state.RecipientAddress,
		RefundAddr:    s.state.RefundAddress,
		Memo:          s.state.Memo,
		Fixed:         s.state.FixedRate,
	}
	s.mu.Unlock()

	exchange, err := s.provider.CreateExchange(s.ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state.Phase = PhaseIdle
		s.state.Err = createErrorMessage(err)
		s.log.WithError(err).Warn("exchange creation failed")
		return nil, err
	}

	s.state.Exchange = exchange
	s.state.Err = ""
	s.log.WithFields(logrus.Fields{
		"id":     exchange.ID,
		"status": exchange.Status,
	}).Info("exchange created")

	if types.IsTerminalStatus(exchange.Status) {
		s.state.Phase = PhaseTerminal
		return exchange, nil
	}

	s.state.Phase = PhaseMonitoring
	s.startPollingLocked(exchange.ID)
	return exchange, nil
}

// validateForm checks the complete form. Amount bounds are inclusive
// on both ends when known.
func validateForm(state State) map[string]string {
	errs := make(map[string]string)

	if state.SellAmount == "" {
		errs["sellAmount"] = "Please enter an amount to sell"
	} else {
		amount, err := decimal.NewFromString(state.SellAmount)
		switch {
		case err != nil || !amount.IsPositive():
			errs["sellAmount"] = "Invalid amount"
		case state.Constraint != nil && amount.Cmp(state.Constraint.Min) < 0:
			errs["sellAmount"] = fmt.Sprintf("Minimum amount is %s %s",
				state.Constraint.Min.String(), state.SellCurrency)
		case state.Constraint != nil && state.Constraint.Max != nil && amount.Cmp(*state.Constraint.Max) > 0:
			errs["sellAmount"] = fmt.Sprintf("Maximum amount is %s %s",
				state.Constraint.Max.String(), state.SellCurrency)
		}
	}

	if state.SellCurrency == "" {
		errs["sellCurrency"] = "Please select a cryptocurrency to sell"
	}
	if state.BuyCurrency == "" {
		errs["buyCurrency"] = "Please select a cryptocurrency to buy"
	}

	if state.RecipientAddress == "" {
		errs["recipientAddress"] = "Please enter a recipient address"
	} else if state.BuyCurrency != "" {
		if status := address.Validate(state.RecipientAddress, state.BuyCurrency); !status.IsValid {
			errs["recipientAddress"] = fmt.Sprintf("Invalid %s address. Expected %s",
				strings.ToUpper(state.BuyCurrency), status.Hint)
		}
	}

	if state.BuyCurrency != "" && address.RequiresMemo(state.BuyCurrency) && state.Memo == "" {
		errs["memo"] = fmt.Sprintf("A %s is required for %s",
			address.MemoName(state.BuyCurrency), strings.ToUpper(state.BuyCurrency))
	}

	return errs
}

func createErrorMessage(err error) string {
	switch {
	case errors.Is(err, client.ErrMissingAPIKey):
		return "Exchange creation is not configured. " + client.ErrMissingAPIKey.Error()
	case errors.Is(err, client.ErrBadRequest):
		return "The provider rejected the exchange parameters. Check the amount and addresses."
	case errors.Is(err, client.ErrAuthFailed):
		return "Authentication failed. Check your API key."
	case errors.Is(err, client.ErrRateLimited):
		return "Too many requests. Please wait a moment and try again."
	default:
		return "Failed to create exchange. Please try again later."
	}
}

// startPollingLocked starts the status poller for an exchange id.
// Callers must hold mu. Any previous poller is cancelled first.
func (s *Session) startPollingLocked(id string) {
	if s.pollCancel != nil {
		s.pollCancel()
	}

	pollCtx, cancel := context.WithCancel(s.ctx)
	s.pollCancel = cancel
	s.pollDone = make(chan struct{})

	go s.poll(pollCtx, id, s.pollDone)
}
