package orderbook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/yiinote/ethereum-sdk/pkg/types"
)

// Client reads orders from the order book HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an order book client against the given base URL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// GetOrderByHash fetches a single order by its hash.
func (c *Client) GetOrderByHash(ctx context.Context, hash string) (*types.Order, error) {
	var dto OrderDTO

	err := c.getJSON(ctx, fmt.Sprintf("%s/v0.1/orders/%s", c.baseURL, url.PathEscape(hash)), &dto)
	if err != nil {
		return nil, err
	}

	order, err := dto.ToOrder()
	if err != nil {
		return nil, fmt.Errorf("convert order %s: %w", hash, err)
	}

	return order, nil
}

// sellOrdersPage is the wire shape of a paginated order listing.
type sellOrdersPage struct {
	Orders       []OrderDTO `json:"orders"`
	Continuation string     `json:"continuation,omitempty"`
}

// GetSellOrdersByItem fetches the active sell orders for one token. The
// returned continuation token pages through large books; empty means done.
func (c *Client) GetSellOrdersByItem(ctx context.Context, contract, tokenID, continuation string) ([]*types.Order, string, error) {
	query := url.Values{}
	query.Set("contract", contract)
	query.Set("tokenId", tokenID)
	if continuation != "" {
		query.Set("continuation", continuation)
	}

	var page sellOrdersPage

	err := c.getJSON(ctx, fmt.Sprintf("%s/v0.1/orders/sell/byItem?%s", c.baseURL, query.Encode()), &page)
	if err != nil {
		return nil, "", err
	}

	orders := make([]*types.Order, 0, len(page.Orders))
	for i := range page.Orders {
		order, err := page.Orders[i].ToOrder()
		if err != nil {
			// Orders from other protocols can carry shapes this client
			// does not model; skip instead of failing the whole page.
			c.logger.Warn("skipping-unconvertible-order",
				zap.String("maker", page.Orders[i].Maker),
				zap.Error(err))
			continue
		}

		orders = append(orders, order)
	}

	return orders, page.Continuation, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)

	RequestDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		RequestErrorsTotal.Inc()
		return fmt.Errorf("%w: %v", types.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("order not found")
	}

	if resp.StatusCode != http.StatusOK {
		RequestErrorsTotal.Inc()
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", types.ErrNetworkError, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		RequestErrorsTotal.Inc()
		return fmt.Errorf("%w: read response body: %v", types.ErrNetworkError, err)
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
