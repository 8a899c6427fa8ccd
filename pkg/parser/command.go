package parser

import (
	"fmt"
	"regexp"
	"strings"

	"swapdesk/pkg/types"
)

// ParseSwapCommand parses a swap/rate command of the form
// "<amount> <sell-currency> to <buy-currency>".
// Examples:
//   - "swap 1 BTC to ETH"
//   - "0.5 ETH to XMR"
//   - "100 USDT to SOL"
func ParseSwapCommand(command string) (*types.SwapRequest, error) {
	command = strings.TrimSpace(strings.ToUpper(command))
	command = strings.TrimPrefix(command, "SWAP ")

	pattern := regexp.MustCompile(`^(\d+\.?\d*)\s+([A-Z0-9]+)\s+TO\s+([A-Z0-9]+)$`)

	matches := pattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: '<amount> <currency> to <currency>' (e.g., '1 BTC to ETH')")
	}

	return &types.SwapRequest{
		Amount:       matches[1],
		SellCurrency: NormalizeSymbol(matches[2]),
		BuyCurrency:  NormalizeSymbol(matches[3]),
	}, nil
}

// NormalizeSymbol normalizes currency symbols to the catalog's form
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	aliases := map[string]string{
		"XBT":     "BTC",
		"BITCOIN": "BTC",
		"ETHER":   "ETH",
	}

	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}

	return symbol
}
