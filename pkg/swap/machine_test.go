package swap

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"swapdesk/pkg/client"
	"swapdesk/pkg/types"
)

func TestSubmitEmptyFormFailsValidation(t *testing.T) {
	provider := &fakeProvider{}
	session := newTestSession(t, provider)

	_, err := session.Submit()

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("got %v want ValidationError", err)
	}
	for _, field := range []string{"sellAmount", "sellCurrency", "buyCurrency", "recipientAddress"} {
		if validationErr.Fields[field] == "" {
			t.Errorf("no error for field %s", field)
		}
	}

	if provider.creates() != 0 {
		t.Fatal("validation failure must not reach the network")
	}
	if snap := session.Snapshot(); snap.Phase != PhaseIdle {
		t.Fatalf("phase = %s want idle", snap.Phase)
	}
}

func TestValidateFormAmountBounds(t *testing.T) {
	max := decimal.RequireFromString("10")
	base := State{
		SellCurrency:     "BTC",
		BuyCurrency:      "ETH",
		RecipientAddress: validEthAddress,
		Constraint: &types.PairConstraint{
			Min: decimal.RequireFromString("0.1"),
			Max: &max,
		},
	}

	tests := []struct {
		amount  string
		wantErr string
	}{
		{"", "Please enter an amount to sell"},
		{"abc", "Invalid amount"},
		{"0", "Invalid amount"},
		{"-1", "Invalid amount"},
		{"0.0999", "Minimum amount is 0.1 BTC"},
		{"0.1", ""}, // bounds are inclusive
		{"5", ""},
		{"10", ""},
		{"10.01", "Maximum amount is 10 BTC"},
	}

	for _, tc := range tests {
		state := base
		state.SellAmount = tc.amount
		errs := validateForm(state)

		if tc.wantErr == "" {
			if msg, ok := errs["sellAmount"]; ok {
				t.Errorf("amount %q: unexpected error %q", tc.amount, msg)
			}
			continue
		}
		if errs["sellAmount"] != tc.wantErr {
			t.Errorf("amount %q: got %q want %q", tc.amount, errs["sellAmount"], tc.wantErr)
		}
	}
}

func TestValidateFormNoMaxBound(t *testing.T) {
	state := State{
		SellAmount:       "9999999",
		SellCurrency:     "BTC",
		BuyCurrency:      "ETH",
		RecipientAddress: validEthAddress,
		Constraint:       &types.PairConstraint{Min: decimal.RequireFromString("0.1")},
	}
	if errs := validateForm(state); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidateFormBadAddress(t *testing.T) {
	state := State{
		SellAmount:       "1",
		SellCurrency:     "BTC",
		BuyCurrency:      "ETH",
		RecipientAddress: "definitely-not-an-eth-address",
	}
	errs := validateForm(state)
	if errs["recipientAddress"] == "" {
		t.Fatal("bad address passed validation")
	}
}

func TestValidateFormMemoRequired(t *testing.T) {
	state := State{
		SellAmount:       "100",
		SellCurrency:     "USDT",
		BuyCurrency:      "XRP",
		RecipientAddress: "rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH",
	}

	errs := validateForm(state)
	if errs["memo"] != "A destination tag is required for XRP" {
		t.Fatalf("memo error = %q", errs["memo"])
	}

	state.Memo = "12345"
	if errs = validateForm(state); len(errs) != 0 {
		t.Fatalf("unexpected errors with memo set: %v", errs)
	}
}

func TestSubmitSendsNormalizedRequest(t *testing.T) {
	var got types.SwapRequest
	provider := &fakeProvider{
		createFn: func(ctx context.Context, req types.SwapRequest) (*types.Exchange, error) {
			got = req
			return &types.Exchange{ID: "ex-1", Status: types.StatusWaiting}, nil
		},
	}
	session := newTestSession(t, provider)

	fillValidForm(session)
	session.SetMemo("")
	session.SetRefundAddress("refund-addr")

	if _, err := session.Submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if got.SellCurrency != "btc" || got.BuyCurrency != "eth" {
		t.Fatalf("currencies not lowercased: %+v", got)
	}
	if got.Amount != "1" || got.RecipientAddr != validEthAddress || got.RefundAddr != "refund-addr" {
		t.Fatalf("request fields wrong: %+v", got)
	}
}

func TestSubmitCreateFailureReturnsToIdle(t *testing.T) {
	provider := &fakeProvider{
		createFn: func(ctx context.Context, req types.SwapRequest) (*types.Exchange, error) {
			return nil, client.ErrBadRequest
		},
	}
	session := newTestSession(t, provider)

	fillValidForm(session)
	_, err := session.Submit()
	if !errors.Is(err, client.ErrBadRequest) {
		t.Fatalf("got %v want ErrBadRequest", err)
	}

	snap := session.Snapshot()
	if snap.Phase != PhaseIdle {
		t.Fatalf("phase = %s want idle", snap.Phase)
	}
	if snap.Exchange != nil {
		t.Fatal("partial exchange record kept after create failure")
	}
	if snap.Err != "The provider rejected the exchange parameters. Check the amount and addresses." {
		t.Fatalf("err = %q", snap.Err)
	}
}

func TestSubmitStartsMonitoring(t *testing.T) {
	session := newTestSession(t, &fakeProvider{})

	fillValidForm(session)
	exchange, err := session.Submit()
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if exchange.ID != "ex-1" {
		t.Fatalf("exchange id = %s", exchange.ID)
	}

	snap := session.Snapshot()
	if snap.Phase != PhaseMonitoring {
		t.Fatalf("phase = %s want monitoring", snap.Phase)
	}
	if snap.Exchange == nil || snap.Exchange.ID != "ex-1" {
		t.Fatalf("exchange not recorded: %+v", snap.Exchange)
	}
}

func TestSubmitTerminalOnCreate(t *testing.T) {
	provider := &fakeProvider{
		createFn: func(ctx context.Context, req types.SwapRequest) (*types.Exchange, error) {
			return &types.Exchange{ID: "ex-1", Status: types.StatusFailed}, nil
		},
	}
	session := newTestSession(t, provider)

	fillValidForm(session)
	if _, err := session.Submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if snap := session.Snapshot(); snap.Phase != PhaseTerminal {
		t.Fatalf("phase = %s want terminal", snap.Phase)
	}
}

// Submission is deliberately not deduplicated: each valid submit
// creates a fresh exchange.
func TestDoubleSubmitCreatesTwoExchanges(t *testing.T) {
	ids := []string{"ex-1", "ex-2"}
	provider := &fakeProvider{}
	provider.createFn = func(ctx context.Context, req types.SwapRequest) (*types.Exchange, error) {
		return &types.Exchange{ID: ids[provider.creates()-1], Status: types.StatusWaiting}, nil
	}
	session := newTestSession(t, provider)

	fillValidForm(session)
	first, err := session.Submit()
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	second, err := session.Submit()
	if err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	if provider.creates() != 2 {
		t.Fatalf("create count = %d want 2", provider.creates())
	}
	if first.ID == second.ID {
		t.Fatalf("both submissions returned id %s", first.ID)
	}
	if snap := session.Snapshot(); snap.Exchange.ID != "ex-2" {
		t.Fatalf("session tracks %s want ex-2", snap.Exchange.ID)
	}
}
