package bitget

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"

	"garuda/pkg/core"
)

// Spot endpoint paths.
const (
	spotTickersPath        = "/api/v2/spot/market/tickers"
	spotOrderBookPath      = "/api/v2/spot/market/orderbook"
	spotCandlesPath        = "/api/v2/spot/market/candles"
	spotAssetsPath         = "/api/v2/spot/account/assets"
	spotPlaceOrderPath     = "/api/v2/spot/trade/place-order"
	spotCancelOrderPath    = "/api/v2/spot/trade/cancel-order"
	spotUnfilledOrdersPath = "/api/v2/spot/trade/unfilled-orders"
	spotFillsPath          = "/api/v2/spot/trade/fills"
)

// SpotOrderRequest describes a spot order placement.
type SpotOrderRequest struct {
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	OrderType string `json:"orderType"`
	Force     string `json:"force,omitempty"`
	Price     string `json:"price,omitempty"`
	Size      string `json:"size"`
	ClientOid string `json:"clientOid,omitempty"`
}

// SpotCancelRequest identifies the order to cancel, by venue id or
// client id.
type SpotCancelRequest struct {
	Symbol    string `json:"symbol"`
	OrderID   string `json:"orderId,omitempty"`
	ClientOid string `json:"clientOid,omitempty"`
}

// GetSpotTicker retrieves the 24h ticker for one spot symbol.
func (c *Client) GetSpotTicker(ctx context.Context, symbol string) (*Ticker, error) {
	req := core.NewRequest(http.MethodGet, spotTickersPath).
		SetQuery("symbol", symbol)

	env, err := c.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var tickers []Ticker
	if err := decodeData(env, &tickers); err != nil {
		return nil, err
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no ticker returned for %s", symbol)
	}
	return &tickers[0], nil
}

// GetSpotOrderBook retrieves a depth snapshot for one spot symbol.
// limit of 0 uses the venue default.
func (c *Client) GetSpotOrderBook(ctx context.Context, symbol string, limit int) (*OrderBook, error) {
	req := core.NewRequest(http.MethodGet, spotOrderBookPath).
		SetQuery("symbol", symbol)
	if limit > 0 {
		req.SetQuery("limit", fmt.Sprint(limit))
	}

	env, err := c.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var raw rawOrderBook
	if err := decodeData(env, &raw); err != nil {
		return nil, err
	}
	return parseOrderBook(&raw)
}

// GetSpotCandles retrieves OHLCV bars for one spot symbol at the given
// granularity (1min, 5min, 1h, 1day, ...).
func (c *Client) GetSpotCandles(ctx context.Context, symbol, granularity string, limit int) ([]Candle, error) {
	req := core.NewRequest(http.MethodGet, spotCandlesPath).
		SetQuery("symbol", symbol).
		SetQuery("granularity", granularity)
	if limit > 0 {
		req.SetQuery("limit", fmt.Sprint(limit))
	}

	env, err := c.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var raw [][]string
	if err := decodeData(env, &raw); err != nil {
		return nil, err
	}
	return parseCandles(raw)
}

// GetSpotAssets retrieves spot account balances. coin filters to one
// currency when non-empty.
func (c *Client) GetSpotAssets(ctx context.Context, coin string) ([]Asset, error) {
	req := core.NewRequest(http.MethodGet, spotAssetsPath).
		SetAuthenticated(true)
	if coin != "" {
		req.SetQuery("coin", coin)
	}

	env, err := c.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var assets []Asset
	if err := decodeData(env, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// PlaceSpotOrder submits a spot order. Orders carrying a ClientOid are
// retried on transient failures; orders without one are attempted
// exactly once.
func (c *Client) PlaceSpotOrder(ctx context.Context, order *SpotOrderRequest) (*OrderAck, error) {
	body, err := sonic.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req := core.NewRequest(http.MethodPost, spotPlaceOrderPath).
		SetBody(body).
		SetAuthenticated(true).
		SetIdempotencyKey(order.ClientOid)

	env, err := c.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var ack OrderAck
	if err := decodeData(env, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// CancelSpotOrder cancels one spot order. Cancellation is repeat-safe,
// so it always carries an idempotency key.
func (c *Client) CancelSpotOrder(ctx context.Context, cancel *SpotCancelRequest) (*OrderAck, error) {
	body, err := sonic.Marshal(cancel)
	if err != nil {
		return nil, fmt.Errorf("marshal cancel: %w", err)
	}

	key := cancel.OrderID
	if key == "" {
		key = cancel.ClientOid
	}

	req := core.NewRequest(http.MethodPost, spotCancelOrderPath).
		SetBody(body).
		SetAuthenticated(true).
		SetIdempotencyKey(key)

	env, err := c.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var ack OrderAck
	if err := decodeData(env, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// GetSpotOpenOrders retrieves pending spot orders, optionally filtered
// by symbol.
func (c *Client) GetSpotOpenOrders(ctx context.Context, symbol string) ([]Order, error) {
	req := core.NewRequest(http.MethodGet, spotUnfilledOrdersPath).
		SetAuthenticated(true)
	if symbol != "" {
		req.SetQuery("symbol", symbol)
	}

	env, err := c.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var orders []Order
	if err := decodeData(env, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetSpotFills retrieves trade executions for one spot symbol.
func (c *Client) GetSpotFills(ctx context.Context, symbol string, limit int) ([]Fill, error) {
	req := core.NewRequest(http.MethodGet, spotFillsPath).
		SetQuery("symbol", symbol).
		SetAuthenticated(true)
	if limit > 0 {
		req.SetQuery("limit", fmt.Sprint(limit))
	}

	env, err := c.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var fills []Fill
	if err := decodeData(env, &fills); err != nil {
		return nil, err
	}
	return fills, nil
}
