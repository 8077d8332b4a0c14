package bitget

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"

	"garuda/pkg/core"
)

// Futures (mix) endpoint paths.
const (
	mixAccountPath       = "/api/v2/mix/account/account"
	mixSetMarginModePath = "/api/v2/mix/account/set-margin-mode"
	mixAllPositionPath   = "/api/v2/mix/position/all-position"
	mixPlaceOrderPath    = "/api/v2/mix/order/place-order"
	mixCancelOrderPath   = "/api/v2/mix/order/cancel-order"
	mixOrderDetailPath   = "/api/v2/mix/order/detail"
	mixOrdersPendingPath = "/api/v2/mix/order/orders-pending"
)

// Futures product types.
const (
	ProductUSDTFutures = "USDT-FUTURES"
	ProductCoinFutures = "COIN-FUTURES"
)

// MixOrderRequest describes a futures order placement.
type MixOrderRequest struct {
	Symbol      string `json:"symbol"`
	ProductType string `json:"productType"`
	MarginMode  string `json:"marginMode"`
	MarginCoin  string `json:"marginCoin"`
	Side        string `json:"side"`
	TradeSide   string `json:"tradeSide,omitempty"`
	OrderType   string `json:"orderType"`
	Force       string `json:"force,omitempty"`
	Price       string `json:"price,omitempty"`
	Size        string `json:"size"`
	ClientOid   string `json:"clientOid,omitempty"`
}

// MixCancelRequest identifies the futures order to cancel.
type MixCancelRequest struct {
	Symbol      string `json:"symbol"`
	ProductType string `json:"productType"`
	OrderID     string `json:"orderId,omitempty"`
	ClientOid   string `json:"clientOid,omitempty"`
}

// GetFuturesAccount retrieves the account summary for one symbol.
func (c *Client) GetFuturesAccount(ctx context.Context, symbol, productType, marginCoin string) (*FuturesAccount, error) {
	req := core.NewRequest(http.MethodGet, mixAccountPath).
		SetQuery("symbol", symbol).
		SetQuery("productType", productType).
		SetQuery("marginCoin", marginCoin).
		SetAuthenticated(true)

	env, err := c.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var account FuturesAccount
	if err := decodeData(env, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetPositions retrieves all open positions for a product type.
func (c *Client) GetPositions(ctx context.Context, productType, marginCoin string) ([]Position, error) {
	req := core.NewRequest(http.MethodGet, mixAllPositionPath).
		SetQuery("productType", productType).
		SetAuthenticated(true)
	if marginCoin != "" {
		req.SetQuery("marginCoin", marginCoin)
	}

	env, err := c.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var positions []Position
	if err := decodeData(env, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// SetMarginMode switches a symbol between isolated and crossed margin.
// The switch is repeat-safe, so it carries an idempotency key.
func (c *Client) SetMarginMode(ctx context.Context, symbol, productType, marginCoin, marginMode string) error {
	body, err := sonic.Marshal(map[string]string{
		"symbol":      symbol,
		"productType": productType,
		"marginCoin":  marginCoin,
		"marginMode":  marginMode,
	})
	if err != nil {
		return fmt.Errorf("marshal margin mode: %w", err)
	}

	req := core.NewRequest(http.MethodPost, mixSetMarginModePath).
		SetBody(body).
		SetAuthenticated(true).
		SetIdempotencyKey(symbol + "/" + marginMode)

	_, err = c.Dispatch(ctx, req)
	return err
}

// PlaceMixOrder submits a futures order. Orders carrying a ClientOid
// are retried on transient failures; orders without one are attempted
// exactly once.
func (c *Client) PlaceMixOrder(ctx context.Context, order *MixOrderRequest) (*OrderAck, error) {
	body, err := sonic.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req := core.NewRequest(http.MethodPost, mixPlaceOrderPath).
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

// CancelMixOrder cancels one futures order.
func (c *Client) CancelMixOrder(ctx context.Context, cancel *MixCancelRequest) (*OrderAck, error) {
	body, err := sonic.Marshal(cancel)
	if err != nil {
		return nil, fmt.Errorf("marshal cancel: %w", err)
	}

	key := cancel.OrderID
	if key == "" {
		key = cancel.ClientOid
	}

	req := core.NewRequest(http.MethodPost, mixCancelOrderPath).
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

// GetMixOrderDetail retrieves the current state of one futures order.
func (c *Client) GetMixOrderDetail(ctx context.Context, symbol, productType, orderID string) (*Order, error) {
	req := core.NewRequest(http.MethodGet, mixOrderDetailPath).
		SetQuery("symbol", symbol).
		SetQuery("productType", productType).
		SetQuery("orderId", orderID).
		SetAuthenticated(true)

	env, err := c.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var order Order
	if err := decodeData(env, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetMixOpenOrders retrieves pending futures orders for a product type,
// optionally filtered by symbol.
func (c *Client) GetMixOpenOrders(ctx context.Context, productType, symbol string) ([]Order, error) {
	req := core.NewRequest(http.MethodGet, mixOrdersPendingPath).
		SetQuery("productType", productType).
		SetAuthenticated(true)
	if symbol != "" {
		req.SetQuery("symbol", symbol)
	}

	env, err := c.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	// The pending endpoint nests the list under entrustedList.
	var page struct {
		EntrustedList []Order `json:"entrustedList"`
	}
	if err := decodeData(env, &page); err != nil {
		return nil, err
	}
	return page.EntrustedList, nil
}
