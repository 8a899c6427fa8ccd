package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// perPageCap is the largest page size the markets endpoint accepts
const perPageCap = 250

// Client fetches market-cap rankings from the market-data provider.
// It is used only to rank and cross-filter the swap catalog, so all
// failures are soft: callers fall back to the unfiltered catalog.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Entry
}

// New creates a market-data client
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logrus.WithField("component", "market"),
	}
}

// TopSymbols returns the upper-cased symbols of the top n assets by
// market capitalization.
func (c *Client) TopSymbols(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		n = perPageCap
	}
	if n > perPageCap {
		n = perPageCap
	}

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(n))
	params.Set("page", "1")

	reqURL := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market data unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data unavailable: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("market data unavailable: %w", err)
	}

	var coins []struct {
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(body, &coins); err != nil {
		return nil, fmt.Errorf("market data unavailable: unexpected payload")
	}

	symbols := make([]string, 0, len(coins))
	for _, coin := range coins {
		if coin.Symbol != "" {
			symbols = append(symbols, strings.ToUpper(coin.Symbol))
		}
	}

	c.log.WithField("count", len(symbols)).Debug("fetched market ranking")
	return symbols, nil
}
