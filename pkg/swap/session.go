// Package swap holds the orchestration core: a session that owns all
// user-editable form state, reacts to edits with the provider fetches
// they require, and drives an exchange from creation to a terminal
// status. All mutation goes through event-named methods on Session so
// update ordering is auditable.
package swap

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"swapdesk/pkg/address"
	"swapdesk/pkg/client"
	"swapdesk/pkg/debounce"
	"swapdesk/pkg/types"
)

// Phase is the submission state of the session
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseCreating   Phase = "creating"
	PhaseMonitoring Phase = "monitoring"
	PhaseTerminal   Phase = "terminal"
)

// InputSide identifies which amount field the user is driving
type InputSide int

const (
	SideSell InputSide = iota
	SideBuy
)

// Provider is the slice of the swap provider API the session needs
type Provider interface {
	GetPairs(ctx context.Context, symbol string, fixed bool) ([]string, error)
	GetRanges(ctx context.Context, from, to string, fixed bool) (*types.PairConstraint, error)
	GetEstimated(ctx context.Context, q client.EstimateQuery) (decimal.Decimal, error)
	CreateExchange(ctx context.Context, req types.SwapRequest) (*types.Exchange, error)
	GetExchange(ctx context.Context, id string) (*types.Exchange, error)
}

// State is the session's complete view of the swap form and the
// exchange, copied out whole by Snapshot.
type State struct {
	SellAmount       string
	BuyAmount        string
	SellCurrency     string
	BuyCurrency      string
	RecipientAddress string
	RefundAddress    string
	Memo             string
	FixedRate        bool
	ActiveSide       InputSide

	AvailablePairs  []string
	Constraint      *types.PairConstraint
	Estimate        *decimal.Decimal
	EstimateLoading bool
	AddressChecking bool
	AddressStatus   address.Status

	Phase       Phase
	FieldErrors map[string]string
	Err         string
	Exchange    *types.Exchange
}

// Options configures a session
type Options struct {
	Provider     Provider
	Debounce     time.Duration
	PollInterval time.Duration
	Logger       *logrus.Entry
}

// Session owns the swap form state for one page/terminal session.
// Nothing is persisted beyond its lifetime.
type Session struct {
	provider     Provider
	log          *logrus.Entry
	deb          *debounce.Debouncer
	pollInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	state      State
	seqs       map[string]uint64
	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// Logical fetch keys for the sequence guard
const (
	keyPairs    = "pairs"
	keyRanges   = "ranges"
	keyEstimate = "estimate"
	keyAddress  = "address"
)

// NewSession creates a session bound to ctx; cancelling ctx stops any
// in-flight fetches and status polling.
func NewSession(ctx context.Context, opts Options) *Session {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logrus.WithField("component", "session")
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	return &Session{
		provider:     opts.Provider,
		log:          log.WithField("session", uuid.NewString()[:8]),
		deb:          debounce.New(opts.Debounce),
		pollInterval: opts.PollInterval,
		ctx:          sessionCtx,
		cancel:       cancel,
		state:        State{Phase: PhaseIdle},
		seqs:         make(map[string]uint64),
	}
}

// Snapshot returns a copy of the current state for rendering
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

func (s *Session) copyState() State {
	snap := s.state

	if s.state.AvailablePairs != nil {
		snap.AvailablePairs = append([]string(nil), s.state.AvailablePairs...)
	}
	if s.state.FieldErrors != nil {
		snap.FieldErrors = make(map[string]string, len(s.state.FieldErrors))
		for field, msg := range s.state.FieldErrors {
			snap.FieldErrors[field] = msg
		}
	}
	return snap
}

// SetSellAmount records a sell-side edit; the buy amount becomes the
// estimated (derived) field.
func (s *Session) SetSellAmount(amount string) {
	s.mu.Lock()
	s.state.SellAmount = amount
	s.state.ActiveSide = SideSell
	s.mu.Unlock()

	s.scheduleEstimate()
}

// SetBuyAmount records a buy-side edit; the sell amount becomes the
// estimated (derived) field.
func (s *Session) SetBuyAmount(amount string) {
	s.mu.Lock()
	s.state.BuyAmount = amount
	s.state.ActiveSide = SideBuy
	s.mu.Unlock()

	s.scheduleEstimate()
}

// SetSellCurrency selects the sell asset. The buy currency is cleared
// immediately, before the new pair list arrives, so a stale choice
// can never survive a sell-currency change.
func (s *Session) SetSellCurrency(symbol string) {
	s.mu.Lock()
	if s.state.SellCurrency == symbol {
		s.mu.Unlock()
		return
	}
	s.state.SellCurrency = symbol
	s.state.BuyCurrency = ""
	s.state.Constraint = nil
	s.clearEstimateLocked()
	s.mu.Unlock()

	s.refreshPairs(false)
	s.scheduleEstimate()
}

// SetBuyCurrency selects the buy asset and refreshes the pair bounds
func (s *Session) SetBuyCurrency(symbol string) {
	s.mu.Lock()
	if s.state.BuyCurrency == symbol {
		s.mu.Unlock()
		return
	}
	s.state.BuyCurrency = symbol
	s.state.Constraint = nil
	s.mu.Unlock()

	s.refreshRanges()
	s.scheduleEstimate()
	s.scheduleAddressCheck()
}

// SetRecipientAddress records the destination address
func (s *Session) SetRecipientAddress(addr string) {
	s.mu.Lock()
	s.state.RecipientAddress = addr
	s.mu.Unlock()

	s.scheduleAddressCheck()
}

// SetMemo records the memo/tag for ledgers that require one
func (s *Session) SetMemo(memo string) {
	s.mu.Lock()
	s.state.Memo = memo
	s.mu.Unlock()
}

// SetRefundAddress records where funds return if the swap fails.
// Empty defaults to the recipient address at creation time.
func (s *Session) SetRefundAddress(addr string) {
	s.mu.Lock()
	s.state.RefundAddress = addr
	s.mu.Unlock()
}

// SetFixedRate toggles fixed vs floating rate mode. The pair list
// depends on the mode, so the buy currency is cleared immediately and
// the pairs refetched, exactly as for a sell-currency change.
func (s *Session) SetFixedRate(fixed bool) {
	s.mu.Lock()
	if s.state.FixedRate == fixed {
		s.mu.Unlock()
		return
	}
	s.state.FixedRate = fixed
	s.state.BuyCurrency = ""
	s.state.Constraint = nil
	s.clearEstimateLocked()
	s.mu.Unlock()

	s.refreshPairs(false)
	s.scheduleEstimate()
}

// InvertDirection swaps the sell and buy sides in place. The buy
// currency is kept if the refreshed pair list still allows it.
func (s *Session) InvertDirection() {
	s.mu.Lock()
	s.state.SellCurrency, s.state.BuyCurrency = s.state.BuyCurrency, s.state.SellCurrency
	s.state.SellAmount, s.state.BuyAmount = s.state.BuyAmount, s.state.SellAmount
	if s.state.ActiveSide == SideSell {
		s.state.ActiveSide = SideBuy
	} else {
		s.state.ActiveSide = SideSell
	}
	s.state.Constraint = nil
	s.mu.Unlock()

	s.refreshPairs(true)
	s.scheduleEstimate()
	s.scheduleAddressCheck()
}

// Reset clears the form and stops any status polling
func (s *Session) Reset() {
	s.mu.Lock()
	if s.pollCancel != nil {
		s.pollCancel()
		s.pollCancel = nil
	}
	// Invalidate every in-flight fetch
	for key := range s.seqs {
		s.seqs[key]++
	}
	s.state = State{Phase: PhaseIdle}
	s.mu.Unlock()

	s.deb.Cancel(keyEstimate)
	s.deb.Cancel(keyAddress)
}

// Close stops the session: cancels fetches, debounce timers, and the
// status poller.
func (s *Session) Close() {
	s.cancel()
	s.deb.Stop()
	s.wg.Wait()

	s.mu.Lock()
	done := s.pollDone
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Settle flushes pending debounced work and waits for in-flight
// fetches. Used by the one-shot command flow and by tests.
func (s *Session) Settle() {
	s.deb.Flush(keyAddress)
	s.deb.Flush(keyEstimate)
	s.wg.Wait()
}

// nextSeq issues a new sequence number for a logical fetch key.
// Callers must hold mu.
func (s *Session) nextSeq(key string) uint64 {
	s.seqs[key]++
	return s.seqs[key]
}

// isLatest reports whether seq is still the newest issued for key.
// Completions with a stale number are discarded: only the result of
// the most recently issued request for a key may be applied.
// Callers must hold mu.
func (s *Session) isLatest(key string, seq uint64) bool {
	return s.seqs[key] == seq
}

func (s *Session) clearEstimateLocked() {
	s.state.Estimate = nil
	s.state.EstimateLoading = false
	if s.state.ActiveSide == SideSell {
		s.state.BuyAmount = ""
	} else {
		s.state.SellAmount = ""
	}
}

// refreshPairs refetches the valid counter-currencies for the current
// sell currency. Unless preserveBuy is set, the buy currency has
// already been cleared by the caller; with preserveBuy, it is kept
// only if it is still in the refreshed list.
func (s *Session) refreshPairs(preserveBuy bool) {
	s.mu.Lock()
	sell := s.state.SellCurrency
	fixed := s.state.FixedRate
	keep := s.state.BuyCurrency
	s.state.AvailablePairs = nil
	if sell == "" {
		// Invalidate any fetch still in flight for the previous sell
		// currency; its result must not repopulate the empty list.
		s.nextSeq(keyPairs)
		s.mu.Unlock()
		return
	}
	seq := s.nextSeq(keyPairs)
	s.state.Err = ""
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		pairs, err := s.provider.GetPairs(s.ctx, sell, fixed)

		s.mu.Lock()
		if !s.isLatest(keyPairs, seq) {
			s.mu.Unlock()
			s.log.WithField("key", keyPairs).Debug("discarded stale completion")
			return
		}

		rangesStale := false
		if err != nil {
			s.state.AvailablePairs = nil
			s.state.BuyCurrency = ""
			s.state.Constraint = nil
			s.state.Err = "No available pairs for the selected currency."
			s.log.WithError(err).Warn("pair fetch failed")
		} else {
			s.state.AvailablePairs = pairs
			if preserveBuy && keep != "" {
				if containsFold(pairs, keep) {
					rangesStale = true
				} else {
					s.state.BuyCurrency = ""
					s.state.Constraint = nil
				}
			}
		}
		s.mu.Unlock()

		if rangesStale {
			s.refreshRanges()
		}
	}()
}

// refreshRanges refetches the min/max bounds for the current pair.
// It only fires when both currencies are set.
func (s *Session) refreshRanges() {
	s.mu.Lock()
	from := s.state.SellCurrency
	to := s.state.BuyCurrency
	fixed := s.state.FixedRate
	if from == "" || to == "" {
		s.state.Constraint = nil
		s.mu.Unlock()
		return
	}
	seq := s.nextSeq(keyRanges)
	s.state.Err = ""
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		constraint, err := s.provider.GetRanges(s.ctx, from, to, fixed)

		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.isLatest(keyRanges, seq) {
			s.log.WithField("key", keyRanges).Debug("discarded stale completion")
			return
		}

		if err != nil {
			s.state.Constraint = nil
			s.state.Err = "Unable to fetch min/max amounts for this pair."
			s.log.WithError(err).Warn("range fetch failed")
			return
		}
		s.state.Constraint = constraint
	}()
}

// scheduleAddressCheck recomputes address validity after the quiet
// period. Validation is local decoding, no network involved.
func (s *Session) scheduleAddressCheck() {
	s.mu.Lock()
	s.state.AddressChecking = true
	s.mu.Unlock()

	s.deb.Trigger(keyAddress, func() {
		s.mu.Lock()
		addr := s.state.RecipientAddress
		currency := s.state.BuyCurrency
		s.mu.Unlock()

		var status address.Status
		if addr != "" && currency != "" {
			status = address.Validate(addr, currency)
		}

		s.mu.Lock()
		s.state.AddressStatus = status
		s.state.AddressChecking = false
		s.mu.Unlock()
	})
}

func containsFold(list []string, want string) bool {
	for _, item := range list {
		if strings.EqualFold(item, want) {
			return true
		}
	}
	return false
}
