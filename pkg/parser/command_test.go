package parser

import "testing"

func TestParseSwapCommand(t *testing.T) {
	tests := []struct {
		input      string
		wantAmount string
		wantSell   string
		wantBuy    string
		wantErr    bool
	}{
		{"1 BTC to ETH", "1", "BTC", "ETH", false},
		{"swap 1 BTC to ETH", "1", "BTC", "ETH", false},
		{"0.5 eth to xmr", "0.5", "ETH", "XMR", false},
		{"100 USDT to SOL", "100", "USDT", "SOL", false},
		{"2.75 XBT to ETHER", "2.75", "BTC", "ETH", false},
		{"  1 BTC to ETH  ", "1", "BTC", "ETH", false},
		{"BTC to ETH", "", "", "", true},
		{"1 BTC ETH", "", "", "", true},
		{"-1 BTC to ETH", "", "", "", true},
		{"1.2.3 BTC to ETH", "", "", "", true},
		{"", "", "", "", true},
	}

	for _, tc := range tests {
		req, err := ParseSwapCommand(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected an error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.input, err)
			continue
		}
		if req.Amount != tc.wantAmount || req.SellCurrency != tc.wantSell || req.BuyCurrency != tc.wantBuy {
			t.Errorf("%q: got %s %s->%s, want %s %s->%s",
				tc.input, req.Amount, req.SellCurrency, req.BuyCurrency,
				tc.wantAmount, tc.wantSell, tc.wantBuy)
		}
	}
}

func TestNormalizeSymbol(t *testing.T) {
	tests := map[string]string{
		"btc":     "BTC",
		"XBT":     "BTC",
		"bitcoin": "BTC",
		"ether":   "ETH",
		" sol ":   "SOL",
		"DOGE":    "DOGE",
	}

	for input, want := range tests {
		if got := NormalizeSymbol(input); got != want {
			t.Errorf("NormalizeSymbol(%q) = %q want %q", input, got, want)
		}
	}
}
