package catalog

import "strings"

// placeholderIcon is used for any symbol without a bundled icon
const placeholderIcon = "icons/generic.svg"

// popularIcons pins the artwork for the allow-listed assets
var popularIcons = map[string]string{
	"BTC":  "icons/color/btc.svg",
	"ETH":  "icons/color/eth.svg",
	"USDT": "icons/color/usdt.svg",
	"BNB":  "icons/color/bnb.svg",
	"XRP":  "icons/color/xrp.svg",
	"ADA":  "icons/color/ada.svg",
	"DOGE": "icons/color/doge.svg",
	"DOT":  "icons/color/dot.svg",
}

// bundledIcons mirrors the icon set shipped with the application.
// Symbols are matched case-insensitively against the catalog.
var bundledIcons = []string{
	"AAVE", "ALGO", "ATOM", "AVAX", "BAT", "BCH", "COMP", "DAI",
	"DASH", "EOS", "ETC", "FIL", "GRT", "ICX", "KSM", "LINK",
	"LTC", "MANA", "MATIC", "MKR", "NEO", "OMG", "ONT", "QTUM",
	"SAND", "SHIB", "SNX", "SOL", "SUSHI", "TON", "TRX", "UNI",
	"USDC", "VET", "WAVES", "XLM", "XMR", "XTZ", "ZEC", "ZRX",
}

// newIconMap builds the symbol-to-icon index. A missing icon falls
// back to the generic placeholder and never blocks catalog loading.
func newIconMap() map[string]string {
	icons := make(map[string]string, len(popularIcons)+len(bundledIcons))

	for symbol, path := range popularIcons {
		icons[symbol] = path
	}
	for _, symbol := range bundledIcons {
		if _, ok := icons[symbol]; !ok {
			icons[symbol] = "icons/color/" + strings.ToLower(symbol) + ".svg"
		}
	}
	return icons
}
