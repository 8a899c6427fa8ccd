package catalog

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"swapdesk/pkg/types"
)

// PopularSymbols is the fixed allow-list ordered first in the catalog
var PopularSymbols = []string{"BTC", "ETH", "USDT", "BNB", "XRP", "ADA", "DOGE", "DOT"}

// CurrencySource supplies the provider's full asset list
type CurrencySource interface {
	GetAllCurrencies(ctx context.Context) ([]types.Currency, error)
}

// RankSource supplies the market-cap ranking used to cross-filter
type RankSource interface {
	TopSymbols(ctx context.Context, n int) ([]string, error)
}

// Catalog is the loaded, ordered asset list with icon assignments
type Catalog struct {
	Currencies []types.Currency
	icons      map[string]string
	log        *logrus.Entry
}

// Load fetches the provider catalog, cross-filters it against the
// market-cap top-N, and orders popular symbols first. Ranking failures
// are soft: the full provider list is kept. A provider failure returns
// an empty catalog and the error so the caller can surface it without
// terminating.
func Load(ctx context.Context, currencies CurrencySource, ranks RankSource, topN int) (*Catalog, error) {
	cat := &Catalog{
		icons: newIconMap(),
		log:   logrus.WithField("component", "catalog"),
	}

	all, err := currencies.GetAllCurrencies(ctx)
	if err != nil {
		return cat, err
	}

	// Non-fiat only, deduped by upper-cased symbol, provider order kept
	seen := make(map[string]bool, len(all))
	cryptos := make([]types.Currency, 0, len(all))
	for _, currency := range all {
		symbol := strings.ToUpper(currency.Symbol)
		if currency.IsFiat || symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		cryptos = append(cryptos, currency)
	}

	if ranks != nil {
		top, err := ranks.TopSymbols(ctx, topN)
		if err != nil {
			cat.log.WithError(err).Warn("market ranking unavailable, keeping full catalog")
		} else if len(top) > 0 {
			ranked := make(map[string]bool, len(top))
			for _, symbol := range top {
				ranked[strings.ToUpper(symbol)] = true
			}
			filtered := cryptos[:0]
			for _, currency := range cryptos {
				if ranked[strings.ToUpper(currency.Symbol)] {
					filtered = append(filtered, currency)
				}
			}
			cryptos = filtered
		}
	}

	cat.Currencies = orderPopularFirst(cryptos)
	cat.log.WithField("count", len(cat.Currencies)).Debug("catalog loaded")
	return cat, nil
}

// orderPopularFirst puts allow-listed symbols first, in allow-list
// order, and preserves provider order for the rest.
func orderPopularFirst(currencies []types.Currency) []types.Currency {
	bySymbol := make(map[string]types.Currency, len(currencies))
	for _, currency := range currencies {
		bySymbol[strings.ToUpper(currency.Symbol)] = currency
	}

	ordered := make([]types.Currency, 0, len(currencies))
	for _, symbol := range PopularSymbols {
		if currency, ok := bySymbol[symbol]; ok {
			ordered = append(ordered, currency)
		}
	}
	for _, currency := range currencies {
		if !IsPopular(currency.Symbol) {
			ordered = append(ordered, currency)
		}
	}
	return ordered
}

// IsPopular reports whether a symbol is on the popular allow-list
func IsPopular(symbol string) bool {
	symbol = strings.ToUpper(symbol)
	for _, popular := range PopularSymbols {
		if popular == symbol {
			return true
		}
	}
	return false
}

// Icon returns the icon reference for a symbol, falling back to the
// generic placeholder.
func (c *Catalog) Icon(symbol string) string {
	if icon, ok := c.icons[strings.ToUpper(symbol)]; ok {
		return icon
	}
	return placeholderIcon
}

// Options builds the grouped, searchable option list. The search text
// matches label or symbol case-insensitively; empty groups are omitted.
func (c *Catalog) Options(search string) []types.OptionGroup {
	search = strings.ToLower(strings.TrimSpace(search))

	var popular, other []types.CurrencyOption
	for _, currency := range c.Currencies {
		option := types.CurrencyOption{
			Value:     currency.Symbol,
			Label:     currency.Name + " (" + currency.Symbol + ")",
			Icon:      c.Icon(currency.Symbol),
			IsPopular: IsPopular(currency.Symbol),
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(option.Label), search) &&
			!strings.Contains(strings.ToLower(option.Value), search) {
			continue
		}

		if option.IsPopular {
			popular = append(popular, option)
		} else {
			other = append(other, option)
		}
	}

	groups := make([]types.OptionGroup, 0, 2)
	if len(popular) > 0 {
		groups = append(groups, types.OptionGroup{Label: "Popular", Options: popular})
	}
	if len(other) > 0 {
		groups = append(groups, types.OptionGroup{Label: "Other", Options: other})
	}
	return groups
}

// Find returns the catalog entry for a symbol, if present
func (c *Catalog) Find(symbol string) (types.Currency, bool) {
	symbol = strings.ToUpper(symbol)
	for _, currency := range c.Currencies {
		if strings.ToUpper(currency.Symbol) == symbol {
			return currency, true
		}
	}
	return types.Currency{}, false
}
