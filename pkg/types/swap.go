package types

import "github.com/shopspring/decimal"

// Currency is a single asset in the provider's catalog
type Currency struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	IsFiat bool   `json:"isFiat"`
}

// CurrencyOption is a selectable view of a Currency
type CurrencyOption struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	Icon      string `json:"icon"`
	IsPopular bool   `json:"is_popular"`
}

// OptionGroup groups currency options for display (Popular / Other)
type OptionGroup struct {
	Label   string           `json:"label"`
	Options []CurrencyOption `json:"options"`
}

// PairConstraint holds the transactable bounds for a currency pair.
// Max is nil when the provider does not impose an upper bound.
type PairConstraint struct {
	Min decimal.Decimal
	Max *decimal.Decimal
}

// SwapRequest carries everything needed to create an exchange
type SwapRequest struct {
	Amount        string
	SellCurrency  string
	BuyCurrency   string
	RecipientAddr string
	RefundAddr    string
	Memo          string
	RefundMemo    string
	Fixed         bool
}

// Exchange is the provider's view of a created exchange order.
// The client never mutates one except by replacing it with the
// provider's latest snapshot.
type Exchange struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	CurrencyFrom   string `json:"currency_from"`
	CurrencyTo     string `json:"currency_to"`
	AmountFrom     string `json:"amount_from"`
	AmountTo       string `json:"amount_to"`
	DepositAddress string `json:"address_from"`
	AddressTo      string `json:"address_to"`
	ExtraIDFrom    string `json:"extra_id_from"`
	ExtraIDTo      string `json:"extra_id_to"`
	Rate           string `json:"rate"`
	Timestamp      string `json:"timestamp"`
	UpdatedAt      string `json:"updated_at"`
}

// Exchange statuses reported by the provider
const (
	StatusWaiting    = "waiting"
	StatusConfirming = "confirming"
	StatusExchanging = "exchanging"
	StatusSending    = "sending"
	StatusFinished   = "finished"
	StatusFailed     = "failed"
	StatusRefunded   = "refunded"
	StatusExpired    = "expired"
)

// IsTerminalStatus reports whether no further status change is expected
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusFinished, StatusFailed, StatusRefunded, StatusExpired:
		return true
	}
	return false
}
