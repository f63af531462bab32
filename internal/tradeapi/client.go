package tradeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"trading-dashboard-go/internal/config"
	"trading-dashboard-go/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ClientInterface defines the interface for the remote trading API client.
type ClientInterface interface {
	ListStocks(ctx context.Context) ([]models.Stock, error)
	GetLastPrice(ctx context.Context, symbol string) (float64, error)
	PlaceBuyOrder(ctx context.Context, symbol string, quantity float64) (*OrderResult, error)
	PlaceSellOrder(ctx context.Context, transactionID int, quantity float64) (*OrderResult, error)
	ListActiveTrades(ctx context.Context) ([]models.ActiveTrade, error)
	ListOptionsTransactions(ctx context.Context) ([]models.OptionsTransaction, error)
	CloseOrder(ctx context.Context, transactionID string) (*OrderResult, error)
	ListFuturesTransactions(ctx context.Context, page, pageSize int) ([]models.FuturesTransaction, error)
	SubmitWebhook(ctx context.Context, cfg models.WebhookConfig) error
	SubmitFuturesWebhook(ctx context.Context, cfg models.FuturesWebhookConfig) error
}

// Client is the single chokepoint for network I/O against the two trading
// backend hosts. Every method performs exactly one attempt: no retry, no
// timeout beyond the caller's context.
type Client struct {
	client            *resty.Client
	routes            routingTable
	webhookURL        string
	futuresWebhookURL string
	quotes            QuoteSource
	logger            *zap.Logger
	limiter           *rate.Limiter
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new trading API client.
func NewClient(cfg *config.Upstream, quotes QuoteSource, logger *zap.Logger) *Client {
	return &Client{
		client:            resty.New(),
		routes:            newRoutingTable(cfg),
		webhookURL:        cfg.WebhookURL,
		futuresWebhookURL: cfg.FuturesWebhookURL,
		quotes:            quotes,
		logger:            logger,
		limiter:           rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
	}
}

// doRequest executes a single request after waiting for the rate limiter.
// Transport errors are logged here and returned; HTTP status handling is
// endpoint-specific and left to the caller.
func (c *Client) doRequest(ctx context.Context, method, fullURL string, req *resty.Request) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", fullURL))
	resp, err := req.SetContext(ctx).Execute(method, fullURL)
	if err != nil {
		c.logger.Error("Request failed", zap.String("method", method), zap.String("url", fullURL), zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// stockData is one instrument record from the stocks listing.
type stockData struct {
	Name   string `json:"name"`
	Token  string `json:"token"`
	Symbol string `json:"symbol"`
}

// stocksResponse is the envelope for the stocks listing.
type stocksResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       []stockData `json:"data"`
	StatusCode int         `json:"statusCode"`
}

// ListStocks fetches all tradable instruments. The backend does not supply
// prices, so price and change come from the quote source.
func (c *Client) ListStocks(ctx context.Context) ([]models.Stock, error) {
	var result stocksResponse
	req := c.client.R().SetResult(&result)

	resp, err := c.doRequest(ctx, "GET", c.routes.urlFor(endpointStocks), req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stocks: %w", err)
	}
	if resp.IsError() {
		return nil, errorFromResponse(resp)
	}
	if !result.Success {
		return nil, errorFromEnvelope(result.Message, "Failed to fetch stocks", result.StatusCode)
	}

	stocks := make([]models.Stock, 0, len(result.Data))
	for _, s := range result.Data {
		price, change := c.quotes.Quote(s.Name)
		stocks = append(stocks, models.Stock{
			Symbol: s.Name, // the listing's name doubles as the display symbol
			Name:   s.Name,
			Token:  s.Token,
			Price:  price,
			Change: change,
		})
	}
	return stocks, nil
}

// ltpResponse is the envelope for the last-traded-price endpoint.
type ltpResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Symbol    string  `json:"symbol"`
		Ltp       float64 `json:"ltp"`
		Timestamp string  `json:"timestamp"`
	} `json:"data"`
	StatusCode int `json:"statusCode"`
}

// GetLastPrice fetches the last traded price for one symbol. The caller must
// already have suffixed the symbol with its exchange segment marker.
func (c *Client) GetLastPrice(ctx context.Context, symbol string) (float64, error) {
	var result ltpResponse
	req := c.client.R().SetResult(&result)

	fullURL := c.routes.urlFor(endpointLTP) + "/" + url.PathEscape(symbol)
	resp, err := c.doRequest(ctx, "GET", fullURL, req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch LTP for %s: %w", symbol, err)
	}
	if resp.IsError() {
		return 0, errorFromResponse(resp)
	}
	if !result.Success {
		return 0, errorFromEnvelope(result.Message, "Failed to fetch LTP", result.StatusCode)
	}
	return result.Data.Ltp, nil
}

// OrderResult is the raw order envelope. It is returned whole because the
// buy endpoint signals failure through the statusCode range rather than the
// success flag, so callers need both fields.
type OrderResult struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data,omitempty"`
	StatusCode int             `json:"statusCode"`
}

// Ok reports whether the embedded status code is in the 2xx range. This is
// the authoritative success signal for the buy endpoint.
func (r *OrderResult) Ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// PlaceBuyOrder places a market buy order for an equity instrument.
//
// Unlike every other endpoint, the backend signals buy failure through the
// envelope's statusCode range, not the success flag. Callers must check
// OrderResult.Ok; the success flag is not consulted here.
func (c *Client) PlaceBuyOrder(ctx context.Context, symbol string, quantity float64) (*OrderResult, error) {
	var result OrderResult
	req := c.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{"symbol": symbol, "quantity": quantity}).
		SetResult(&result)

	resp, err := c.doRequest(ctx, "POST", c.routes.urlFor(endpointBuyOrder), req)
	if err != nil {
		return nil, fmt.Errorf("failed to place buy order for %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, errorFromResponse(resp)
	}
	c.logger.Info("Buy order placed",
		zap.String("symbol", symbol),
		zap.Float64("quantity", quantity),
		zap.Int("status_code", result.StatusCode))
	return &result, nil
}

// PlaceSellOrder sells quantity out of an active equity trade.
func (c *Client) PlaceSellOrder(ctx context.Context, transactionID int, quantity float64) (*OrderResult, error) {
	var result OrderResult
	req := c.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{"transactionId": transactionID, "quantity": quantity}).
		SetResult(&result)

	resp, err := c.doRequest(ctx, "POST", c.routes.urlFor(endpointSellOrder), req)
	if err != nil {
		return nil, fmt.Errorf("failed to place sell order for transaction %d: %w", transactionID, err)
	}
	if resp.IsError() {
		return nil, errorFromResponse(resp)
	}
	if !result.Success {
		return nil, errorFromEnvelope(result.Message, "Failed to place sell order", result.StatusCode)
	}
	c.logger.Info("Sell order placed",
		zap.Int("transaction_id", transactionID),
		zap.Float64("quantity", quantity))
	return &result, nil
}

// activeTradesResponse is the envelope for the active trades listing.
type activeTradesResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Data       []models.ActiveTrade `json:"data"`
	StatusCode int                  `json:"statusCode"`
}

// ListActiveTrades fetches the open equity positions.
func (c *Client) ListActiveTrades(ctx context.Context) ([]models.ActiveTrade, error) {
	var result activeTradesResponse
	req := c.client.R().SetResult(&result)

	resp, err := c.doRequest(ctx, "GET", c.routes.urlFor(endpointActiveTrades), req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active trades: %w", err)
	}
	if resp.IsError() {
		return nil, errorFromResponse(resp)
	}
	if !result.Success {
		return nil, errorFromEnvelope(result.Message, "Failed to fetch active trades", result.StatusCode)
	}
	return result.Data, nil
}

// ListOptionsTransactions fetches the user's options transactions from the
// trading host. This endpoint returns a bare array with no envelope, so a
// non-2xx status is the only failure mode.
func (c *Client) ListOptionsTransactions(ctx context.Context) ([]models.OptionsTransaction, error) {
	var transactions []models.OptionsTransaction
	req := c.client.R().
		SetHeader("Accept", "application/json").
		SetResult(&transactions)

	resp, err := c.doRequest(ctx, "GET", c.routes.urlFor(endpointUserTransactions), req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch options transactions: %w", err)
	}
	if resp.IsError() {
		return nil, errorFromResponse(resp)
	}
	return transactions, nil
}

// CloseOrder closes one options transaction. The id arrives as a string from
// the row but the backend wants an integer; a non-numeric id fails before any
// request is made.
func (c *Client) CloseOrder(ctx context.Context, transactionID string) (*OrderResult, error) {
	id, err := strconv.Atoi(transactionID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %q: %w", transactionID, err)
	}

	var result OrderResult
	req := c.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{"transaction_id": id}).
		SetResult(&result)

	resp, err := c.doRequest(ctx, "POST", c.routes.urlFor(endpointCloseOrder), req)
	if err != nil {
		return nil, fmt.Errorf("failed to close order %s: %w", transactionID, err)
	}
	if resp.IsError() {
		return nil, errorFromResponse(resp)
	}
	if !result.Success {
		return nil, errorFromEnvelope(result.Message, "Failed to close order", result.StatusCode)
	}
	c.logger.Info("Order closed", zap.String("transaction_id", transactionID))
	return &result, nil
}

// ListFuturesTransactions fetches one page of the user's futures
// transactions. Like the options listing, the body is a bare array.
func (c *Client) ListFuturesTransactions(ctx context.Context, page, pageSize int) ([]models.FuturesTransaction, error) {
	var transactions []models.FuturesTransaction
	req := c.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("limit", strconv.Itoa(pageSize)).
		SetResult(&transactions)

	resp, err := c.doRequest(ctx, "GET", c.routes.urlFor(endpointFuturesTransactions), req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch futures transactions: %w", err)
	}
	if resp.IsError() {
		return nil, errorFromResponse(resp)
	}
	return transactions, nil
}

// SubmitWebhook posts the options strategy configuration verbatim.
func (c *Client) SubmitWebhook(ctx context.Context, cfg models.WebhookConfig) error {
	return c.postWebhook(ctx, c.webhookURL, cfg)
}

// SubmitFuturesWebhook posts the futures strategy configuration verbatim.
func (c *Client) SubmitFuturesWebhook(ctx context.Context, cfg models.FuturesWebhookConfig) error {
	return c.postWebhook(ctx, c.futuresWebhookURL, cfg)
}

func (c *Client) postWebhook(ctx context.Context, fullURL string, body interface{}) error {
	req := c.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body)

	resp, err := c.doRequest(ctx, "POST", fullURL, req)
	if err != nil {
		return fmt.Errorf("failed to submit webhook: %w", err)
	}
	if resp.IsError() {
		return errorFromResponse(resp)
	}
	c.logger.Info("Webhook submitted", zap.String("url", fullURL))
	return nil
}
