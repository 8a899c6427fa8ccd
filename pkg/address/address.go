// Package address performs structural validation of recipient
// addresses per currency. It is intentionally conservative: decoding
// rules cover the well-known address families, and unknown currencies
// fall through to a permissive length check since the swap provider is
// the final authority on whether an address is usable.
package address

import (
	"fmt"
	"strings"
)

// Status is the result of validating an (address, currency) pair.
// It is recomputed whole on every change, never patched.
type Status struct {
	IsValid bool
	Hint    string
	Err     string
}

// Validate checks an address against the format rules for a currency.
// It never panics past this boundary: any internal decode failure is
// captured and reported as an invalid result with a format hint.
func Validate(addr, symbol string) (status Status) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	status.Hint = FormatHint(symbol)

	defer func() {
		if r := recover(); r != nil {
			status.IsValid = false
			status.Err = fmt.Sprintf("address decode failed: %v", r)
		}
	}()

	addr = strings.TrimSpace(addr)
	if addr == "" {
		status.Err = "address is empty"
		return status
	}

	check, known := validators[symbol]
	if !known {
		// Unknown currency: accept anything that looks address-shaped
		status.IsValid = len(addr) >= 10 && !strings.ContainsAny(addr, " \t\n")
		if !status.IsValid {
			status.Err = fmt.Sprintf("does not look like a valid %s address", symbol)
		}
		return status
	}

	status.IsValid = check(addr)
	if !status.IsValid {
		status.Err = fmt.Sprintf("invalid %s address: %s", symbol, status.Hint)
	}
	return status
}

// RequiresMemo reports whether a currency's ledger routes funds with
// an auxiliary memo/tag alongside the address.
func RequiresMemo(symbol string) bool {
	switch strings.ToUpper(strings.TrimSpace(symbol)) {
	case "XRP", "XLM", "ATOM", "EOS", "TON", "HBAR":
		return true
	}
	return false
}

// MemoName returns the ledger's own name for the memo field
func MemoName(symbol string) string {
	if strings.ToUpper(strings.TrimSpace(symbol)) == "XRP" {
		return "destination tag"
	}
	return "memo"
}

// FormatHint returns a human-readable description of the expected
// address format for a currency.
func FormatHint(symbol string) string {
	if hint, ok := hints[strings.ToUpper(symbol)]; ok {
		return hint
	}
	return "a wallet address for " + strings.ToUpper(symbol)
}

var hints = map[string]string{
	"BTC":  "a legacy address starting with 1 or 3, or a bech32 address starting with bc1",
	"LTC":  "a legacy address starting with L or M, or a bech32 address starting with ltc1",
	"DOGE": "an address starting with D",
	"DASH": "an address starting with X",
	"BCH":  "a legacy address or a cashaddr starting with bitcoincash:",
	"ZEC":  "a transparent address starting with t1 or t3",
	"ETH":  "a 0x-prefixed 40-hex-character address",
	"SOL":  "a base58-encoded 32-byte public key",
	"XRP":  "an address starting with r (25-35 characters)",
	"XLM":  "a 56-character address starting with G",
	"ATOM": "a bech32 address starting with cosmos1",
	"TRX":  "an address starting with T",
	"XMR":  "a 95-character address starting with 4 or 8",
	"ADA":  "a Shelley address starting with addr1, or a Byron address starting with DdzFF or Ae2",
	"DOT":  "an SS58 address starting with 1",
	"EOS":  "an account name of 1-12 characters (a-z, 1-5, dot)",
	"TON":  "a 48-character address",
}
