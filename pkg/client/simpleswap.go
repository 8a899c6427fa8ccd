package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"swapdesk/pkg/types"
)

// Client is a thin wrapper over the swap provider's REST API.
// Every call is bound to a context and classified into one of the
// typed errors in errors.go on failure.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logrus.Entry
}

// New creates a provider client. An empty apiKey is allowed: the
// browsing endpoints work without one, and CreateExchange reports
// ErrMissingAPIKey at the point of use.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		log:     logrus.WithField("component", "provider"),
	}
}

// HasAPIKey reports whether an API key is configured
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// EstimateQuery identifies a single estimate request
type EstimateQuery struct {
	From   string
	To     string
	Amount string
	Fixed  bool
}

// GetAllCurrencies fetches the full asset catalog
func (c *Client) GetAllCurrencies(ctx context.Context) ([]types.Currency, error) {
	body, err := c.get(ctx, "get_all_currencies", url.Values{})
	if err != nil {
		return nil, err
	}

	var currencies []types.Currency
	if err := json.Unmarshal(body, &currencies); err != nil {
		return nil, fmt.Errorf("%w: expected a currency array", ErrInvalidShape)
	}
	return currencies, nil
}

// GetPairs fetches the valid counter-currencies for a sell asset
func (c *Client) GetPairs(ctx context.Context, symbol string, fixed bool) ([]string, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToLower(symbol))
	params.Set("fixed", strconv.FormatBool(fixed))

	body, err := c.get(ctx, "get_pairs", params)
	if err != nil {
		return nil, err
	}

	var pairs []string
	if err := json.Unmarshal(body, &pairs); err != nil {
		return nil, fmt.Errorf("%w: expected a symbol array", ErrInvalidShape)
	}
	return pairs, nil
}

// GetRanges fetches the min/max transactable amount for a pair.
// A response without a min field is an invalid-shape error; max is
// optional and may be absent or null.
func (c *Client) GetRanges(ctx context.Context, from, to string, fixed bool) (*types.PairConstraint, error) {
	params := url.Values{}
	params.Set("currency_from", strings.ToLower(from))
	params.Set("currency_to", strings.ToLower(to))
	params.Set("fixed", strconv.FormatBool(fixed))

	body, err := c.get(ctx, "get_ranges", params)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Min flexDecimal `json:"min"`
		Max flexDecimal `json:"max"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidShape, truncate(body))
	}
	if payload.Min.Value == nil {
		return nil, fmt.Errorf("%w: range response is missing min", ErrInvalidShape)
	}

	return &types.PairConstraint{
		Min: *payload.Min.Value,
		Max: payload.Max.Value,
	}, nil
}

// GetEstimated fetches the converted amount for a directional pair
func (c *Client) GetEstimated(ctx context.Context, q EstimateQuery) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("currency_from", strings.ToLower(q.From))
	params.Set("currency_to", strings.ToLower(q.To))
	params.Set("amount", q.Amount)
	params.Set("fixed", strconv.FormatBool(q.Fixed))

	body, err := c.get(ctx, "get_estimated", params)
	if err != nil {
		return decimal.Zero, err
	}
	return decodeEstimate(body)
}

// CreateExchange creates an exchange order with the provider.
// Currency codes are normalized to lower case and the return address
// defaults to the destination address.
func (c *Client) CreateExchange(ctx context.Context, req types.SwapRequest) (*types.Exchange, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	refund := req.RefundAddr
	if refund == "" {
		refund = req.RecipientAddr
	}

	payload := map[string]interface{}{
		"api_key":         c.apiKey,
		"fixed":           req.Fixed,
		"currency_from":   strings.ToLower(req.SellCurrency),
		"currency_to":     strings.ToLower(req.BuyCurrency),
		"amount":          req.Amount,
		"address_to":      req.RecipientAddr,
		"return_address":  refund,
		"extra_id_to":     req.Memo,
		"extra_id_return": req.RefundMemo,
	}

	body, err := c.post(ctx, "create_exchange", payload)
	if err != nil {
		return nil, err
	}

	var exchange types.Exchange
	if err := json.Unmarshal(body, &exchange); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidShape, truncate(body))
	}
	if exchange.ID == "" {
		return nil, fmt.Errorf("%w: create response is missing an exchange id", ErrInvalidShape)
	}

	c.log.WithFields(logrus.Fields{
		"id":     exchange.ID,
		"status": exchange.Status,
	}).Debug("exchange created")

	return &exchange, nil
}

// GetExchange polls the status and detail of an exchange by id
func (c *Client) GetExchange(ctx context.Context, id string) (*types.Exchange, error) {
	params := url.Values{}
	params.Set("id", id)

	body, err := c.get(ctx, "get_exchange", params)
	if err != nil {
		return nil, err
	}

	var exchange types.Exchange
	if err := json.Unmarshal(body, &exchange); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidShape, truncate(body))
	}
	if exchange.ID == "" {
		return nil, fmt.Errorf("%w: status response is missing an exchange id", ErrInvalidShape)
	}
	return &exchange, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	return c.do(req, endpoint)
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	reqURL := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, endpoint)
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	c.log.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"took":     time.Since(started).Round(time.Millisecond),
	}).Debug("provider call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp.StatusCode, body)
	}
	return body, nil
}
